package config

import (
	"time"

	"github.com/samber/mo"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/key"
)

// Options is the player configuration record. It is never partially invalid:
// every constructor and merge ends with Normalize.
type Options struct {
	Debug           bool
	IsVidgo         bool
	MaxRetryCount   int
	DisableControls bool
	Type            string
	CastReceiverID  string
	StartMuted      bool

	CastSettleDelay  time.Duration
	ReloadGrace      time.Duration
	StallReloadGrace time.Duration
	NudgeTicks       int
	ReloadTicks      int
	TrackPoll        time.Duration
	LiveStallWindow  time.Duration
}

// Defaults returns the factory configuration, independent of viper state.
func Defaults() Options {
	ms := func(k string) time.Duration {
		return time.Duration(Default[k].Value.(int)) * time.Millisecond
	}

	return Options{
		Debug:            Default[key.Debug].Value.(bool),
		IsVidgo:          Default[key.IsVidgo].Value.(bool),
		MaxRetryCount:    Default[key.MaxRetryCount].Value.(int),
		DisableControls:  Default[key.DisableControls].Value.(bool),
		Type:             Default[key.Type].Value.(string),
		CastReceiverID:   Default[key.CastReceiverID].Value.(string),
		StartMuted:       Default[key.StartMuted].Value.(bool),
		CastSettleDelay:  ms(key.CastSettleMs),
		ReloadGrace:      ms(key.ReloadGraceMs),
		StallReloadGrace: ms(key.StallReloadGraceMs),
		NudgeTicks:       Default[key.NudgeTicks].Value.(int),
		ReloadTicks:      Default[key.ReloadTicks].Value.(int),
		TrackPoll:        ms(key.TrackPollMs),
		LiveStallWindow:  ms(key.LiveStallMs),
	}
}

// Load reads the options from viper (file, env and flags layered over the defaults).
func Load() Options {
	ms := func(k string) time.Duration {
		return time.Duration(viper.GetInt(k)) * time.Millisecond
	}

	return Options{
		Debug:            viper.GetBool(key.Debug),
		IsVidgo:          viper.GetBool(key.IsVidgo),
		MaxRetryCount:    viper.GetInt(key.MaxRetryCount),
		DisableControls:  viper.GetBool(key.DisableControls),
		Type:             viper.GetString(key.Type),
		CastReceiverID:   viper.GetString(key.CastReceiverID),
		StartMuted:       viper.GetBool(key.StartMuted),
		CastSettleDelay:  ms(key.CastSettleMs),
		ReloadGrace:      ms(key.ReloadGraceMs),
		StallReloadGrace: ms(key.StallReloadGraceMs),
		NudgeTicks:       viper.GetInt(key.NudgeTicks),
		ReloadTicks:      viper.GetInt(key.ReloadTicks),
		TrackPoll:        ms(key.TrackPollMs),
		LiveStallWindow:  ms(key.LiveStallMs),
	}.Normalize()
}

// Normalize replaces out-of-range values with their defaults.
func (o Options) Normalize() Options {
	d := Defaults()

	if o.MaxRetryCount <= 0 {
		o.MaxRetryCount = d.MaxRetryCount
	}
	if o.NudgeTicks <= 0 {
		o.NudgeTicks = d.NudgeTicks
	}
	if o.ReloadTicks <= o.NudgeTicks {
		o.ReloadTicks = max(d.ReloadTicks, o.NudgeTicks+1)
	}
	if o.TrackPoll <= 0 {
		o.TrackPoll = d.TrackPoll
	}
	if o.LiveStallWindow <= 0 {
		o.LiveStallWindow = d.LiveStallWindow
	}
	// zero grace periods and settle delay are valid: act immediately
	if o.ReloadGrace < 0 {
		o.ReloadGrace = d.ReloadGrace
	}
	if o.StallReloadGrace < 0 {
		o.StallReloadGrace = d.StallReloadGrace
	}
	if o.CastSettleDelay < 0 {
		o.CastSettleDelay = d.CastSettleDelay
	}

	return o
}

// Patch is a partial configuration update. Absent fields keep the value they are merged over.
type Patch struct {
	Debug           mo.Option[bool]
	IsVidgo         mo.Option[bool]
	MaxRetryCount   mo.Option[int]
	DisableControls mo.Option[bool]
	Type            mo.Option[string]
	CastReceiverID  mo.Option[string]
	StartMuted      mo.Option[bool]

	CastSettleDelay  mo.Option[time.Duration]
	ReloadGrace      mo.Option[time.Duration]
	StallReloadGrace mo.Option[time.Duration]
	NudgeTicks       mo.Option[int]
	ReloadTicks      mo.Option[int]
	TrackPoll        mo.Option[time.Duration]
	LiveStallWindow  mo.Option[time.Duration]
}

// Merge overlays the present fields of p shallowly over o.
func (o Options) Merge(p Patch) Options {
	o.Debug = p.Debug.OrElse(o.Debug)
	o.IsVidgo = p.IsVidgo.OrElse(o.IsVidgo)
	o.MaxRetryCount = p.MaxRetryCount.OrElse(o.MaxRetryCount)
	o.DisableControls = p.DisableControls.OrElse(o.DisableControls)
	o.Type = p.Type.OrElse(o.Type)
	o.CastReceiverID = p.CastReceiverID.OrElse(o.CastReceiverID)
	o.StartMuted = p.StartMuted.OrElse(o.StartMuted)
	o.CastSettleDelay = p.CastSettleDelay.OrElse(o.CastSettleDelay)
	o.ReloadGrace = p.ReloadGrace.OrElse(o.ReloadGrace)
	o.StallReloadGrace = p.StallReloadGrace.OrElse(o.StallReloadGrace)
	o.NudgeTicks = p.NudgeTicks.OrElse(o.NudgeTicks)
	o.ReloadTicks = p.ReloadTicks.OrElse(o.ReloadTicks)
	o.TrackPoll = p.TrackPoll.OrElse(o.TrackPoll)
	o.LiveStallWindow = p.LiveStallWindow.OrElse(o.LiveStallWindow)
	return o.Normalize()
}
