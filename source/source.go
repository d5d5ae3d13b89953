// Package source describes what the player is asked to play.
package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/mo"
)

// ErrNoSource is returned when a source has no usable URL.
var ErrNoSource = errors.New("source has no url")

// DRMType names the key system protecting a stream.
type DRMType string

const (
	DRMNone      DRMType = ""
	DRMWidevine  DRMType = "WIDEVINE"
	DRMFairPlay  DRMType = "FAIRPLAY"
	DRMPlayReady DRMType = "PLAYREADY"
)

// DRM carries the license acquisition parameters for protected content.
type DRM struct {
	Type                  DRMType           `json:"drmType"`
	LicenseURL            string            `json:"licenseUrl"`
	CertificateURL        string            `json:"certificateUrl,omitempty"`
	LicenseHeader         map[string]string `json:"licenseHeader,omitempty"`
	RequireBase64Encoding bool              `json:"requireBase64Encoding,omitempty"`
}

// Source is immutable once accepted by the player; derive changed copies with the With* methods.
type Source struct {
	URL       string             `json:"url"`
	DRM       *DRM               `json:"drm,omitempty"`
	StartTime mo.Option[float64] `json:"startTime"`
	// Type forces the content type; empty means derive it from the URL.
	Type string `json:"type,omitempty"`
}

// New is a convenience constructor for an unprotected source.
func New(rawURL string) Source {
	return Source{URL: strings.TrimSpace(rawURL)}
}

// Validate reports configuration errors; an invalid source is never attached.
func (s Source) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return ErrNoSource
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid source url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https", "file", "":
	default:
		return fmt.Errorf("unsupported source scheme: %s", u.Scheme)
	}

	if s.DRM != nil && s.DRM.Type != DRMNone && s.DRM.LicenseURL == "" {
		return fmt.Errorf("%s source without license url", s.DRM.Type)
	}

	return nil
}

// NeedsDRM reports whether the source requires a DRM-capable engine.
func (s Source) NeedsDRM() bool {
	if s.DRM == nil {
		return false
	}
	return s.DRM.Type == DRMWidevine || s.DRM.Type == DRMFairPlay
}

// WithStartTime returns a copy starting at t seconds.
func (s Source) WithStartTime(t float64) Source {
	s.StartTime = mo.Some(t)
	return s
}

// WithoutStartTime returns a copy without a start position.
func (s Source) WithoutStartTime() Source {
	s.StartTime = mo.None[float64]()
	return s
}

func (s Source) String() string {
	if s.NeedsDRM() {
		return fmt.Sprintf("%s (%s)", s.URL, s.DRM.Type)
	}
	return s.URL
}
