package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given fresh metrics", t, func() {
		m := New()

		Convey("Counters move", func() {
			m.IncRetries()
			m.IncRetries()
			m.IncTerminalErrors()
			m.ObserveAttach("ADAPTIVE_HTTP", nil)
			m.ObserveAttach("ADAPTIVE_HTTP", errors.New("boom"))
			m.IncCastMessages("out", "player")
			m.SetCasting(true)

			So(testutil.ToFloat64(m.retriesTotal), ShouldEqual, 2)
			So(testutil.ToFloat64(m.terminalErrorsTotal), ShouldEqual, 1)
			So(testutil.ToFloat64(m.attachesTotal.WithLabelValues("ADAPTIVE_HTTP", "ok")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.attachesTotal.WithLabelValues("ADAPTIVE_HTTP", "error")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.castMessagesTotal.WithLabelValues("out", "player")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.casting), ShouldEqual, 1)
		})

		Convey("The handler serves the registry", func() {
			m.IncReloads("soft")

			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

			So(rec.Code, ShouldEqual, 200)
			So(rec.Body.String(), ShouldContainSubstring, `vidplay_reloads_total{mode="soft"} 1`)
		})
	})

	Convey("A nil *Metrics records nothing", t, func() {
		var m *Metrics
		So(func() {
			m.IncRetries()
			m.IncDRMErrors()
			m.ObserveAttach("NATIVE", nil)
			m.SetCasting(false)
		}, ShouldNotPanic)
	})
}
