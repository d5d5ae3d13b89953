// Package network provides the HTTP client shared by the CLI's outbound requests.
package network

import (
	"net/http"
	"time"

	"github.com/vidplay/vidplay/constant"
)

// Client is the HTTP client used for release lookups. Media traffic goes
// through mpv and never through this client.
var Client = &http.Client{
	Timeout:   30 * time.Second,
	Transport: userAgent{base: newTransport()},
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 15 * time.Second
	return t
}

// userAgent tags every request with the application name and version.
type userAgent struct {
	base http.RoundTripper
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.App+"/"+constant.Version)
	}
	return u.base.RoundTrip(req)
}
