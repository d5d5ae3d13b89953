// Package retry decides whether a playback failure is retried or terminal.
package retry

import (
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/metrics"
	"github.com/vidplay/vidplay/state"
)

// Host is what the policy drives on a failure.
type Host interface {
	SetUIState(ui state.UIState)
	// Retry performs a soft (in-place) retry.
	Retry(hard bool)
}

// Context describes where a failure came from.
type Context struct {
	// Origin names the reporting component, for logs.
	Origin        string
	DRM           bool
	MaxRetryCount int
}

// Outcome is what ClassifyAndHandle did.
type Outcome int

const (
	Retried Outcome = iota
	Terminal
)

func (o Outcome) String() string {
	if o == Terminal {
		return "terminal"
	}
	return "retried"
}

// Policy owns the retry counters of one player.
// It is not safe for concurrent use.
type Policy struct {
	host    Host
	metrics *metrics.Metrics
	log     log.Entry

	retryCount    int
	drmErrorCount int
}

// New returns a policy with zeroed counters.
func New(host Host, m *metrics.Metrics) *Policy {
	return &Policy{
		host:    host,
		metrics: m,
		log:     log.Component("retry"),
	}
}

// ClassifyAndHandle puts the UI into loading and asks for a soft retry
// while the budget lasts. Once retryCount has reached MaxRetryCount every
// further error holds the UI in the error state until Reset.
func (p *Policy) ClassifyAndHandle(err error, c Context) Outcome {
	if c.DRM {
		p.drmErrorCount++
		p.metrics.IncDRMErrors()
	}

	if p.retryCount >= c.MaxRetryCount {
		p.log.Errorf("%s: giving up after %d retries: %v", c.Origin, p.retryCount, err)
		p.metrics.IncTerminalErrors()
		p.host.SetUIState(state.UIError)
		return Terminal
	}

	p.retryCount++
	p.log.Warnf("%s: retry %d/%d after error: %v", c.Origin, p.retryCount, c.MaxRetryCount, err)
	p.metrics.IncRetries()
	p.host.SetUIState(state.UILoading)
	p.host.Retry(false)

	return Retried
}

// Reset zeroes both counters. Called on a confirmed successful load.
func (p *Policy) Reset() {
	p.retryCount = 0
	p.drmErrorCount = 0
}

// RetryCount returns the number of retries since the last Reset.
func (p *Policy) RetryCount() int {
	return p.retryCount
}

// DRMErrorCount returns the number of DRM errors since the last Reset.
func (p *Policy) DRMErrorCount() int {
	return p.drmErrorCount
}
