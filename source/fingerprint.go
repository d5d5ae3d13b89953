package source

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a stable hash of the content-identifying fields.
// StartTime is excluded so reopening the same content at another position still matches.
func (s Source) Fingerprint() string {
	d := xxhash.New()

	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.WriteString("\x00")
		}
	}

	write(strings.TrimSpace(s.URL), normalizeType(s.Type))

	if s.DRM != nil {
		write(string(s.DRM.Type), s.DRM.LicenseURL, s.DRM.CertificateURL, strconv.FormatBool(s.DRM.RequireBase64Encoding))

		keys := make([]string, 0, len(s.DRM.LicenseHeader))
		for k := range s.DRM.LicenseHeader {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			write(k, s.DRM.LicenseHeader[k])
		}
	}

	return strconv.FormatUint(d.Sum64(), 16)
}

func normalizeType(t string) string {
	if t = strings.TrimSpace(t); t == "" {
		return ""
	}
	return normalizeMime(t)
}
