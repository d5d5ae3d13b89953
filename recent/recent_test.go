package recent

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestRecent(t *testing.T) {
	Convey("Given remembered sources", t, func() {
		viper.Set(key.PlaySuggestRecent, true)
		So(Clear(), ShouldBeNil)

		So(Remember("https://cdn.example.com/live/master.m3u8", 1), ShouldBeNil)
		So(Remember("https://cdn.example.com/vod/manifest.mpd", 1), ShouldBeNil)
		So(Remember("https://cdn.example.com/vod/manifest.mpd", 2), ShouldBeNil)

		Convey("Suggestions are ranked by play count", func() {
			So(SuggestMany("example"), ShouldResemble, []string{
				"https://cdn.example.com/vod/manifest.mpd",
				"https://cdn.example.com/live/master.m3u8",
			})
		})

		Convey("Matching is fuzzy and case insensitive", func() {
			So(Suggest("LIVEm3u8").MustGet(), ShouldEqual, "https://cdn.example.com/live/master.m3u8")
		})

		Convey("Nothing matches an unknown host", func() {
			So(Suggest("other.org").IsAbsent(), ShouldBeTrue)
		})

		Convey("Blank sources are ignored", func() {
			So(Remember("  ", 1), ShouldBeNil)
			So(SuggestMany(""), ShouldHaveLength, 2)
		})

		Convey("Clear forgets everything", func() {
			So(Clear(), ShouldBeNil)
			So(SuggestMany(""), ShouldBeEmpty)
		})

		Convey("Suggestions can be turned off", func() {
			viper.Set(key.PlaySuggestRecent, false)
			So(SuggestMany("example"), ShouldBeEmpty)
		})

		Convey("Only the most played sources are kept", func() {
			for i := 0; i < Limit+5; i++ {
				So(Remember(fmt.Sprintf("https://cdn.example.com/clip-%03d.mp4", i), 1), ShouldBeNil)
			}
			all := SuggestMany("")
			So(all, ShouldHaveLength, Limit)
			So(all[0], ShouldEqual, "https://cdn.example.com/vod/manifest.mpd")
		})
	})
}
