package state

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Normalize", t, func() {
		Convey("Should fill defaults into a zero state", func() {
			So(PlayerState{}.Normalize(), ShouldResemble, Default())
		})

		Convey("Should replace an unknown ui state", func() {
			So(PlayerState{UIState: "bogus"}.Normalize().UIState, ShouldEqual, UINone)
		})

		Convey("Should keep set fields", func() {
			s := PlayerState{Engine: EngineDash, IsPlaying: true}.Normalize()
			So(s.Engine, ShouldEqual, EngineDash)
			So(s.IsPlaying, ShouldBeTrue)
		})
	})
}

func TestReset(t *testing.T) {
	Convey("Reset keeps cross-cutting flags only", t, func() {
		s := PlayerState{
			Engine:     EngineAdaptive,
			Loaded:     true,
			IsPlaying:  true,
			IsCasting:  true,
			IsPIP:      true,
			IsAirplay:  true,
			TextTracks: []Track{{ID: "1"}},
		}

		r := s.Reset()
		So(r.Engine, ShouldEqual, EngineNone)
		So(r.Loaded, ShouldBeFalse)
		So(r.IsPlaying, ShouldBeFalse)
		So(r.TextTracks, ShouldBeEmpty)
		So(r.IsCasting, ShouldBeTrue)
		So(r.IsPIP, ShouldBeTrue)
		So(r.IsAirplay, ShouldBeTrue)
	})
}

func TestStore(t *testing.T) {
	Convey("Given a store with a change callback", t, func() {
		store := NewStore()

		var seen []PlayerState
		store.OnChange(func(s PlayerState) {
			seen = append(seen, s)
		})

		Convey("Update merges over the previous state and notifies synchronously", func() {
			store.Update(func(s *PlayerState) { s.IsMuted = true })
			store.Update(func(s *PlayerState) { s.UIState = UILoading })

			So(seen, ShouldHaveLength, 2)
			So(seen[1].IsMuted, ShouldBeTrue)
			So(seen[1].UIState, ShouldEqual, UILoading)
			So(store.Get().IsMuted, ShouldBeTrue)
		})

		Convey("Set never stores a partially initialized state", func() {
			store.Set(PlayerState{IsPlaying: true})

			got := store.Get()
			So(got.IsPlaying, ShouldBeTrue)
			So(got.Engine, ShouldEqual, EngineNone)
			So(got.TextTracks, ShouldNotBeNil)
		})

		Convey("Get returns a copy", func() {
			store.Update(func(s *PlayerState) { s.TextTracks = []Track{{ID: "a"}} })

			got := store.Get()
			got.TextTracks[0].ID = "changed"
			So(store.Get().TextTracks[0].ID, ShouldEqual, "a")
		})
	})
}
