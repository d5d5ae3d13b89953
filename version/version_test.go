package version

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Compare orders versions", t, func() {
		for _, tc := range []struct {
			a, b string
			want int
		}{
			{"1.0.0", "1.0.0", 0},
			{"v1.2.0", "1.1.9", 1},
			{"0.3.0", "0.10.0", -1},
			{"1.0.0-rc1", "1.0.0", -1},
			{"1.0.0", "1.0.0-rc1", 1},
			{"1.0.0-rc2", "1.0.0-rc1", 1},
		} {
			got, err := Compare(tc.a, tc.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, tc.want)
		}
	})

	Convey("Garbage is an error", t, func() {
		_, err := Compare("latest", "1.0.0")
		So(err, ShouldNotBeNil)
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a release endpoint", t, func() {
		hits := 0
		tag := "v9.9.9"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			_, _ = fmt.Fprintf(w, `{"tag_name": %q}`, tag)
		}))
		defer server.Close()

		old := ReleasesURL
		ReleasesURL = server.URL
		defer func() { ReleasesURL = old }()

		Convey("fetch strips the v prefix", func() {
			got, err := fetch(context.Background(), server.URL)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "9.9.9")
		})

		Convey("An empty tag is an error", func() {
			tag = ""
			_, err := fetch(context.Background(), server.URL)
			So(err, ShouldNotBeNil)
		})

		Convey("Latest caches the answer", func() {
			_ = versionCacher.Set("")

			first, err := Latest(context.Background())
			So(err, ShouldBeNil)
			So(first, ShouldEqual, "9.9.9")

			second, err := Latest(context.Background())
			So(err, ShouldBeNil)
			So(second, ShouldEqual, "9.9.9")
			So(hits, ShouldEqual, 1)
		})

		Convey("Notify mentions a newer release only when enabled", func() {
			_ = versionCacher.Set("")
			var out bytes.Buffer

			viper.Set(key.CliVersionCheck, false)
			Notify(context.Background(), &out)
			So(out.String(), ShouldBeEmpty)

			viper.Set(key.CliVersionCheck, true)
			defer viper.Set(key.CliVersionCheck, false)
			Notify(context.Background(), &out)
			So(out.String(), ShouldContainSubstring, "9.9.9")
			So(out.String(), ShouldContainSubstring, constant.Version)
		})
	})
}
