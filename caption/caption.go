// Package caption persists caption style preferences. The style is kept
// independently of any source.
package caption

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/metafates/gache"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/util"
	"github.com/vidplay/vidplay/where"
)

// Style is how captions are rendered.
type Style struct {
	TextSize float64 `json:"textSize"`
	// TextColor and BgColor are "r,g,b" triples.
	TextColor string  `json:"textColor"`
	BgColor   string  `json:"bgColor"`
	BgOpacity float64 `json:"bgOpacity"`
}

// Default is used for every field that is missing or invalid.
func Default() Style {
	return Style{
		TextSize:  1,
		TextColor: "255,255,255",
		BgColor:   "0,0,0",
		BgOpacity: 0.75,
	}
}

// RGB is a parsed color triple.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses an "r,g,b" triple.
func ParseRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("color %q: want r,g,b", s)
	}

	var out [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("color %q: %w", s, err)
		}
		out[i] = uint8(n)
	}

	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Normalize replaces invalid fields with defaults and canonicalizes colors.
func (s Style) Normalize() Style {
	d := Default()

	if s.TextSize <= 0 {
		s.TextSize = d.TextSize
	}
	s.TextSize = util.Clamp(s.TextSize, 0.5, 4)

	if c, err := ParseRGB(s.TextColor); err == nil {
		s.TextColor = c.String()
	} else {
		s.TextColor = d.TextColor
	}

	if c, err := ParseRGB(s.BgColor); err == nil {
		s.BgColor = c.String()
	} else {
		s.BgColor = d.BgColor
	}

	s.BgOpacity = util.Clamp(s.BgOpacity, 0, 1)

	return s
}

// Lipgloss renders the style for a terminal. Background opacity has no
// terminal equivalent; a fully transparent background is dropped.
func (s Style) Lipgloss() lipgloss.Style {
	s = s.Normalize()
	style := lipgloss.NewStyle()

	if c, err := ParseRGB(s.TextColor); err == nil {
		style = style.Foreground(lipgloss.Color(c.Hex()))
	}
	if c, err := ParseRGB(s.BgColor); err == nil && s.BgOpacity > 0 {
		style = style.Background(lipgloss.Color(c.Hex()))
	}
	if s.TextSize >= 1.5 {
		style = style.Bold(true)
	}

	return style
}

// Store persists a Style.
type Store struct {
	cacher *gache.Cache[*Style]
}

// New returns a store backed by the file at path.
func New(path string) *Store {
	return &Store{
		cacher: gache.New[*Style](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Durable returns the store in the configuration directory.
func Durable() *Store {
	return New(where.Captions())
}

// Get returns the stored style, or the default when nothing is stored.
func (s *Store) Get() (Style, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return Default(), err
	}
	if expired || cached == nil {
		return Default(), nil
	}
	return cached.Normalize(), nil
}

// Set normalizes and stores style.
func (s *Store) Set(style Style) error {
	normalized := style.Normalize()
	return s.cacher.Set(&normalized)
}
