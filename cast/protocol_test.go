package cast

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestProtocol(t *testing.T) {
	Convey("Encode wraps data in an envelope", t, func() {
		payload, err := Encode(TypePlayer, PlayerData{Event: EventPlaying, Value: true})
		So(err, ShouldBeNil)
		So(string(payload), ShouldEqual, `{"type":"player","data":{"event":"playing","value":true}}`)

		env, err := Decode(payload)
		So(err, ShouldBeNil)

		data, err := DecodeData[PlayerData](env)
		So(err, ShouldBeNil)
		playing, ok := data.Bool()
		So(ok, ShouldBeTrue)
		So(playing, ShouldBeTrue)
	})

	Convey("Decode rejects malformed payloads", t, func() {
		for _, bad := range []string{``, `{`, `[]`, `{"data":{}}`, `{"type":""}`} {
			_, err := Decode([]byte(bad))
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		}
	})

	Convey("DecodeData rejects missing or mistyped data", t, func() {
		_, err := DecodeData[InfoData](Envelope{Type: TypeInfo})
		So(errors.Is(err, ErrMalformed), ShouldBeTrue)

		_, err = DecodeData[InfoData](Envelope{Type: TypeInfo, Data: []byte(`{"currentTime":"soon"}`)})
		So(errors.Is(err, ErrMalformed), ShouldBeTrue)
	})

	Convey("Player values are read leniently", t, func() {
		b, ok := PlayerData{Value: "true"}.Bool()
		So(ok && b, ShouldBeTrue)
		_, ok = PlayerData{Value: 3.0}.Bool()
		So(ok, ShouldBeFalse)

		f, ok := PlayerData{Value: "12.5"}.Float()
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, 12.5)
	})

	Convey("Receiver tracks convert to player tracks", t, func() {
		texts, videos := PlayerLoadedData{
			Texts:    []RemoteTrack{{ID: 3, Label: "English", Language: "en", Kind: "subtitle"}},
			Variants: []RemoteVariant{{ID: 7, Bandwidth: 800000, Width: 1280, Height: 720}},
		}.Tracks()

		So(texts[0].ID, ShouldEqual, "3")
		So(texts[0].Language, ShouldEqual, "en")
		So(videos[0].Label, ShouldEqual, "720p")
		So(videos[0].Bitrate, ShouldEqual, 800000)
	})
}

func TestMachine(t *testing.T) {
	Convey("Given a new machine", t, func() {
		m := NewMachine()
		So(m.Phase(), ShouldEqual, NoReceivers)

		Convey("The happy path is legal", func() {
			for _, p := range []Phase{ReceiversAvailable, Connecting, Connected, Disconnected, ReceiversAvailable} {
				So(m.To(p), ShouldBeNil)
			}
		})

		Convey("Skipping a phase is illegal", func() {
			err := m.To(Connected)
			So(errors.Is(err, ErrIllegalTransition), ShouldBeTrue)
			So(m.Phase(), ShouldEqual, NoReceivers)
		})

		Convey("Phases print their names", func() {
			So(Connected.String(), ShouldEqual, "CONNECTED")
			So(Phase(42).String(), ShouldEqual, "Phase(42)")
		})
	})
}
