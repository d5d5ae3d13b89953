// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Player Configuration - these keys map onto the orchestrator's Options record.
const (
	Debug           = "player.debug"
	IsVidgo         = "player.is_vidgo"
	MaxRetryCount   = "player.max_retry_count"
	DisableControls = "player.disable_controls"
	Type            = "player.type"
	StartMuted      = "player.start_muted"
)

// Play Command - these keys tune the play subcommand itself.
const (
	PlaySuggestRecent = "play.suggest_recent"
)

// Casting - these keys configure the remote receiver session.
const (
	CastReceiverID = "cast.receiver_id"
	CastSettleMs   = "cast.settle_delay_ms"
)

// Recovery Tuning - grace periods and stall heuristics used by the event bridge and reload path.
const (
	ReloadGraceMs      = "recovery.reload_grace_ms"
	StallReloadGraceMs = "recovery.stall_reload_grace_ms"
	NudgeTicks         = "recovery.nudge_ticks"
	ReloadTicks        = "recovery.reload_ticks"
	TrackPollMs        = "recovery.track_poll_ms"
	LiveStallMs        = "recovery.live_stall_ms"
)

// Media Element - these keys configure the mpv process backing the local media element.
const (
	MpvPath = "mpv.path"
)

// Iconography - these keys manage the visual rendering of control glyphs.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
