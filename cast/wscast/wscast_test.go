package wscast

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay/vidplay/cast"
	"golang.org/x/net/websocket"
)

// receiver is a scripted receiver application.
type receiver struct {
	mu       sync.Mutex
	frames   []Frame
	conns    []*websocket.Conn
	reject   bool
	received chan Frame
}

func newReceiver() *receiver {
	return &receiver{received: make(chan Frame, 64)}
}

func (r *receiver) handler() websocket.Handler {
	return func(conn *websocket.Conn) {
		r.mu.Lock()
		r.conns = append(r.conns, conn)
		reject := r.reject
		r.mu.Unlock()

		for {
			var frame Frame
			if err := websocket.JSON.Receive(conn, &frame); err != nil {
				return
			}

			r.mu.Lock()
			r.frames = append(r.frames, frame)
			r.mu.Unlock()
			r.received <- frame

			switch frame.Kind {
			case KindHello:
				status := cast.StatusConnected
				if reject {
					status = cast.StatusStopped
				}
				_ = websocket.JSON.Send(conn, Frame{Kind: KindStatus, Session: frame.Session, Status: status, Name: "Living room"})
			case KindMessage:
				echo := frame
				echo.Payload = json.RawMessage(`{"type":"player_loaded","data":{}}`)
				_ = websocket.JSON.Send(conn, echo)
			case KindBye:
				return
			}
		}
	}
}

// next waits for the next frame of the given kind.
func (r *receiver) next(kind string) (Frame, bool) {
	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame := <-r.received:
			if frame.Kind == kind {
				return frame, true
			}
		case <-deadline:
			return Frame{}, false
		}
	}
}

func (r *receiver) dropAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.conns {
		_ = conn.Close()
	}
}

// statuses collects status updates from a handle.
type statuses struct {
	mu   sync.Mutex
	seen []cast.Status
}

func (s *statuses) add(status cast.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, status)
}

func (s *statuses) has(status cast.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seen := range s.seen {
		if seen == status {
			return true
		}
	}
	return false
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNormalize(t *testing.T) {
	Convey("Receiver URLs are normalized", t, func() {
		u, origin, err := normalize("http://tv.local:8009/cast")
		So(err, ShouldBeNil)
		So(u, ShouldEqual, "ws://tv.local:8009/cast")
		So(origin, ShouldEqual, "http://tv.local:8009")

		u, origin, err = normalize("https://tv.local/cast")
		So(err, ShouldBeNil)
		So(u, ShouldEqual, "wss://tv.local/cast")
		So(origin, ShouldEqual, "https://tv.local")

		_, _, err = normalize("ftp://tv.local")
		So(err, ShouldNotBeNil)

		_, err = New("file:///tmp/socket")
		So(err, ShouldNotBeNil)
	})
}

func TestFramework(t *testing.T) {
	Convey("Given a websocket receiver", t, func() {
		rx := newReceiver()
		server := httptest.NewServer(rx.handler())
		defer server.Close()

		f, err := New(server.URL, WithProbeInterval(20*time.Millisecond))
		So(err, ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Convey("It is not ready before the first probe", func() {
			So(f.Ready(), ShouldBeFalse)
		})

		Convey("Watch reports availability and its changes", func() {
			var mu sync.Mutex
			var seen []bool
			f.OnAvailability(func(available bool) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, available)
			})

			watchCtx, stop := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				defer close(done)
				f.Watch(watchCtx)
			}()

			So(eventually(f.Ready), ShouldBeTrue)

			server.Close()
			So(eventually(func() bool {
				mu.Lock()
				defer mu.Unlock()
				return len(seen) == 2
			}), ShouldBeTrue)

			stop()
			<-done

			mu.Lock()
			So(seen, ShouldResemble, []bool{true, false})
			mu.Unlock()

			Convey("Late listeners learn the current availability", func() {
				var late []bool
				f.OnAvailability(func(available bool) { late = append(late, available) })
				So(late, ShouldResemble, []bool{false})
			})
		})

		Convey("Without a receiver URL Watch reports no receivers", func() {
			empty, err := New("")
			So(err, ShouldBeNil)

			empty.Watch(ctx)
			So(empty.Ready(), ShouldBeTrue)

			_, err = empty.RequestSession(ctx, "")
			So(err, ShouldEqual, ErrNoReceiver)
		})

		Convey("A session says hello and connects", func() {
			handle, err := f.RequestSession(ctx, "")
			So(err, ShouldBeNil)

			updates := &statuses{}
			handle.AddUpdateListener(updates.add)

			hello, ok := rx.next(KindHello)
			So(ok, ShouldBeTrue)
			So(hello.Session, ShouldEqual, handle.ID())

			So(eventually(func() bool { return handle.Status() == cast.StatusConnected }), ShouldBeTrue)
			So(handle.ReceiverName(), ShouldEqual, "Living room")

			Convey("Messages flow both ways on a namespace", func() {
				got := make(chan []byte, 1)
				handle.AddMessageListener("urn:test", func(payload []byte) { got <- payload })

				err := handle.SendMessage(ctx, "urn:test", []byte(`{"type":"player","data":{"event":"playing"}}`))
				So(err, ShouldBeNil)

				sent, ok := rx.next(KindMessage)
				So(ok, ShouldBeTrue)
				So(sent.Namespace, ShouldEqual, "urn:test")
				So(string(sent.Payload), ShouldContainSubstring, "playing")

				select {
				case payload := <-got:
					So(string(payload), ShouldContainSubstring, "player_loaded")
				case <-time.After(2 * time.Second):
					So("no echo", ShouldBeEmpty)
				}
			})

			Convey("Stop says bye and ends the session", func() {
				So(handle.Stop(ctx), ShouldBeNil)

				_, ok := rx.next(KindBye)
				So(ok, ShouldBeTrue)
				So(handle.Status(), ShouldEqual, cast.StatusStopped)
				So(updates.has(cast.StatusStopped), ShouldBeTrue)

				So(handle.SendMessage(ctx, "urn:test", []byte(`{}`)), ShouldEqual, ErrClosed)
				So(handle.Stop(ctx), ShouldBeNil)
			})

			Convey("A dropped connection disconnects the session", func() {
				rx.dropAll()
				So(eventually(func() bool { return handle.Status() == cast.StatusDisconnected }), ShouldBeTrue)
				So(updates.has(cast.StatusDisconnected), ShouldBeTrue)
			})
		})

		Convey("A receiver can refuse the session", func() {
			rx.mu.Lock()
			rx.reject = true
			rx.mu.Unlock()

			handle, err := f.RequestSession(ctx, "")
			So(err, ShouldBeNil)
			So(eventually(func() bool { return handle.Status() == cast.StatusStopped }), ShouldBeTrue)
		})

		Convey("An explicit receiver id overrides the configured URL", func() {
			other := newReceiver()
			otherServer := httptest.NewServer(other.handler())
			defer otherServer.Close()

			handle, err := f.RequestSession(ctx, otherServer.URL)
			So(err, ShouldBeNil)

			hello, ok := other.next(KindHello)
			So(ok, ShouldBeTrue)
			So(hello.Receiver, ShouldEqual, otherServer.URL)
			So(handle.Stop(ctx), ShouldBeNil)
		})

		Convey("Dialing a dead receiver fails", func() {
			server.Close()
			_, err := f.RequestSession(ctx, "")
			So(err, ShouldNotBeNil)
		})
	})
}
