package caption

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay/vidplay/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestParseRGB(t *testing.T) {
	Convey("ParseRGB", t, func() {
		c, err := ParseRGB("0, 0,255")
		So(err, ShouldBeNil)
		So(c, ShouldResemble, RGB{0, 0, 255})
		So(c.Hex(), ShouldEqual, "#0000ff")

		for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c", "256,0,0"} {
			_, err := ParseRGB(bad)
			So(err, ShouldNotBeNil)
		}
	})
}

func TestNormalize(t *testing.T) {
	Convey("Normalize", t, func() {
		So(Style{}.Normalize(), ShouldResemble, Style{TextSize: 1, TextColor: "255,255,255", BgColor: "0,0,0", BgOpacity: 0})
		So(Style{TextSize: 9, BgOpacity: 3}.Normalize().TextSize, ShouldEqual, 4)
		So(Style{BgOpacity: 3}.Normalize().BgOpacity, ShouldEqual, 1)
		So(Style{TextColor: "1, 2 ,3"}.Normalize().TextColor, ShouldEqual, "1,2,3")
	})
}

func TestStore(t *testing.T) {
	Convey("Given a caption store", t, func() {
		path := "/config/captions.json"
		store := New(path)

		Convey("The round trip keeps the effective values", func() {
			So(store.Set(Style{TextSize: 2, TextColor: "0,0,255", BgColor: "255,0,0", BgOpacity: 0.2}), ShouldBeNil)

			got, err := New(path).Get()
			So(err, ShouldBeNil)
			So(got.TextSize, ShouldEqual, 2)
			So(got.BgOpacity, ShouldEqual, 0.2)

			text, _ := ParseRGB(got.TextColor)
			bg, _ := ParseRGB(got.BgColor)
			So(text, ShouldResemble, RGB{0, 0, 255})
			So(bg, ShouldResemble, RGB{255, 0, 0})
		})

		Convey("An empty store yields the default", func() {
			got, err := New("/config/other.json").Get()
			So(err, ShouldBeNil)
			So(got, ShouldResemble, Default())
		})
	})
}
