package open

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay/vidplay/constant"
)

func TestCommand(t *testing.T) {
	Convey("Command", t, func() {
		Convey("Uses xdg-open on linux", func() {
			cmd, err := Command(constant.Linux, "/tmp/vidplay")
			So(err, ShouldBeNil)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", "/tmp/vidplay"})
		})

		Convey("Uses open on darwin", func() {
			cmd, err := Command(constant.Darwin, "/tmp/vidplay")
			So(err, ShouldBeNil)
			So(cmd.Args[0], ShouldEqual, "open")
		})

		Convey("Fails on unknown platforms", func() {
			_, err := Command("plan9", "/tmp/vidplay")
			So(err, ShouldNotBeNil)
		})
	})
}
