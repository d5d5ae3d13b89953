package network

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a server echoing the user agent", t, func() {
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.UserAgent()
		}))
		defer server.Close()

		Convey("Requests carry the application user agent", func() {
			resp, err := Client.Get(server.URL)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			So(got, ShouldStartWith, "vidplay/")
		})

		Convey("An explicit user agent is kept", func() {
			req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
			req.Header.Set("User-Agent", "custom")
			resp, err := Client.Do(req)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			So(got, ShouldEqual, "custom")
		})
	})
}
