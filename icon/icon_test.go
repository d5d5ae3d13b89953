package icon

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/key"
)

func TestGet(t *testing.T) {
	Convey("Given every registered icon", t, func() {
		Convey("It renders for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					for i := range icons {
						So(Get(i), ShouldNotBeEmpty)
					}
				})
			}
		})

		Convey("It renders nothing for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Play), ShouldBeEmpty)
		})

		Convey("None renders nothing", func() {
			viper.Set(key.IconsVariant, plain)
			So(Get(None), ShouldBeEmpty)
		})
	})
}

func TestVolume(t *testing.T) {
	Convey("Volume tiers", t, func() {
		So(Volume(1, true), ShouldEqual, Muted)
		So(Volume(0, false), ShouldEqual, Muted)
		So(Volume(0.3, false), ShouldEqual, VolumeLow)
		So(Volume(0.5, false), ShouldEqual, VolumeLow)
		So(Volume(0.51, false), ShouldEqual, VolumeHigh)
	})
}
