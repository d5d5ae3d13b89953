package source

import (
	"net/url"
	"path"
	"strings"

	"github.com/vidplay/vidplay/constant"
)

var extensions = map[string]string{
	".m3u8": constant.MimeHLS,
	".m3u":  constant.MimeHLS,
	".mpd":  constant.MimeDASH,
	".mp4":  constant.MimeMP4,
	".m4v":  constant.MimeMP4,
	".mov":  constant.MimeMP4,
	".webm": constant.MimeWebM,
	".mp3":  constant.MimeMP3,
}

// ContentType resolves the MIME type of the source. An explicit override
// (the source's own Type first, then the configured one) wins over the URL extension.
func (s Source) ContentType(override string) string {
	for _, t := range []string{s.Type, override} {
		if t = strings.TrimSpace(t); t != "" {
			return normalizeMime(t)
		}
	}

	p := s.URL
	if u, err := url.Parse(s.URL); err == nil {
		p = u.Path
	}

	if mime, ok := extensions[strings.ToLower(path.Ext(p))]; ok {
		return mime
	}

	return constant.MimeMP4
}

// IsHLS reports whether ct is an HLS playlist type.
func IsHLS(ct string) bool {
	return strings.EqualFold(ct, constant.MimeHLS)
}

// IsDASH reports whether ct is a DASH manifest type.
func IsDASH(ct string) bool {
	return strings.EqualFold(ct, constant.MimeDASH)
}

func normalizeMime(t string) string {
	switch strings.ToLower(t) {
	case "hls", "m3u8", "application/vnd.apple.mpegurl", strings.ToLower(constant.MimeHLS):
		return constant.MimeHLS
	case "dash", "mpd", constant.MimeDASH:
		return constant.MimeDASH
	default:
		return t
	}
}
