// Package icon renders the glyphs shown on the player's control buttons.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/key"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns every supported icon style.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a control glyph.
type Icon int

const (
	None Icon = iota
	Play
	Pause
	Replay
	Muted
	VolumeLow
	VolumeHigh
	Forward
	Rewind
	Cast
	Casting
	PIP
	Fullscreen
	ExitFullscreen
	Captions
	Loading
	Error
	Warn
	Success
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

var icons = map[Icon]*iconDef{
	Play:           {emoji: "▶️", nerd: "", plain: ">", kaomoji: "(ง'̀-'́)ง", squares: "▶"},
	Pause:          {emoji: "⏸️", nerd: "", plain: "||", kaomoji: "(－_－) zzZ", squares: "⏸"},
	Replay:         {emoji: "🔁", nerd: "", plain: "<<|", kaomoji: "ヽ(°〇°)ﾉ", squares: "↻"},
	Muted:          {emoji: "🔇", nerd: "婢", plain: "x", kaomoji: "(￣ー￣)", squares: "▫"},
	VolumeLow:      {emoji: "🔉", nerd: "奔", plain: "v", kaomoji: "(・_・)", squares: "▪"},
	VolumeHigh:     {emoji: "🔊", nerd: "墳", plain: "V", kaomoji: "(ﾟoﾟ)", squares: "■"},
	Forward:        {emoji: "⏩", nerd: "", plain: ">>", kaomoji: "ε=ε=┌( >_<)┘", squares: "⏵⏵"},
	Rewind:         {emoji: "⏪", nerd: "", plain: "<<", kaomoji: "└(>_< )┐=з=з", squares: "⏴⏴"},
	Cast:           {emoji: "📺", nerd: "﨓", plain: "[c]", kaomoji: "[¬º-°]¬", squares: "▣"},
	Casting:        {emoji: "📡", nerd: "", plain: "[C]", kaomoji: "(⌐■_■)", squares: "▩"},
	PIP:            {emoji: "🖼️", nerd: "", plain: "[p]", kaomoji: "(□_□)", squares: "◳"},
	Fullscreen:     {emoji: "⛶", nerd: "", plain: "[ ]", kaomoji: "(☞ﾟヮﾟ)☞", squares: "⛶"},
	ExitFullscreen: {emoji: "🗗", nerd: "", plain: "][", kaomoji: "☜(ﾟヮﾟ☜)", squares: "▢"},
	Captions:       {emoji: "💬", nerd: "", plain: "cc", kaomoji: "(・∀・)", squares: "▤"},
	Loading:        {emoji: "⏳", nerd: "", plain: "...", kaomoji: "(´･_･`)", squares: "◌"},
	Error:          {emoji: "❌", nerd: "", plain: "!", kaomoji: "(╥﹏╥)", squares: "▧"},
	Warn:           {emoji: "⚠️", nerd: "", plain: "!!", kaomoji: "(・_・;)", squares: "▨"},
	Success:        {emoji: "✅", nerd: "", plain: "ok", kaomoji: "(ᵔ◡ᵔ)", squares: "◼"},
}

// Get renders d for the configured variant; unknown variants render nothing.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered glyph of i.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.Get()
}

// Volume picks the volume glyph tier: muted, at most half, above half.
func Volume(volume float64, muted bool) Icon {
	switch {
	case muted || volume <= 0:
		return Muted
	case volume <= 0.5:
		return VolumeLow
	default:
		return VolumeHigh
	}
}
