package config

import (
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("recovery.reload_grace_ms"), ShouldEqual, "recovery_reload_grace_ms")
		})

		Convey("Sanitize resets values outside their choices", func() {
			_ = Setup()
			viper.Set(key.LogsLevel, "loud")
			viper.Set(key.MaxRetryCount, -2)
			viper.Set(key.MpvPath, "/opt/mpv")

			So(Sanitize(), ShouldContain, key.LogsLevel)
			So(viper.GetString(key.LogsLevel), ShouldEqual, "info")
			So(viper.GetInt(key.MaxRetryCount), ShouldEqual, 3)
			So(viper.GetString(key.MpvPath), ShouldEqual, "/opt/mpv")
			So(Sanitize(), ShouldBeEmpty)

			viper.Set(key.MpvPath, Default[key.MpvPath].Value)
		})

		Convey("Env names carry the application prefix", func() {
			f := Default[key.MaxRetryCount]
			So(f.Env(), ShouldEqual, "VIDPLAY_PLAYER_MAX_RETRY_COUNT")
		})
	})
}

func TestOptions(t *testing.T) {
	Convey("Given the default options", t, func() {
		d := Defaults()

		Convey("Load matches the registry defaults", func() {
			_ = Setup()
			So(Load(), ShouldResemble, d)
		})

		Convey("Merge only overrides present fields", func() {
			o := d.Merge(Patch{
				MaxRetryCount: mo.Some(7),
				StartMuted:    mo.Some(true),
			})
			So(o.MaxRetryCount, ShouldEqual, 7)
			So(o.StartMuted, ShouldBeTrue)
			So(o.ReloadGrace, ShouldEqual, d.ReloadGrace)
			So(o.Type, ShouldEqual, d.Type)
		})

		Convey("Invalid values resolve to defaults", func() {
			o := d.Merge(Patch{
				MaxRetryCount: mo.Some(-1),
				TrackPoll:     mo.Some(time.Duration(0)),
				ReloadTicks:   mo.Some(2),
			})
			So(o.MaxRetryCount, ShouldEqual, d.MaxRetryCount)
			So(o.TrackPoll, ShouldEqual, d.TrackPoll)
			So(o.ReloadTicks, ShouldBeGreaterThan, o.NudgeTicks)
		})

		Convey("Zero grace periods are kept", func() {
			o := d.Merge(Patch{ReloadGrace: mo.Some(time.Duration(0))})
			So(o.ReloadGrace, ShouldEqual, 0)
		})
	})
}
