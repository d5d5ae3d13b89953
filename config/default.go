// Package config provides centralized management for player settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/key"
	"github.com/vidplay/vidplay/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
	// Choices, when set, are the only accepted string values.
	Choices []string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	return strings.ToUpper(constant.App+"_") + env
}

// MarshalJSON includes the current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string   `json:"key"`
		Value       any      `json:"value"`
		Default     any      `json:"default"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Choices     []string `json:"choices,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        reflect.TypeOf(f.Value).String(),
		Choices:     f.Choices,
	})
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}
	restrict := func(k string, choices ...string) {
		f := Default[k]
		f.Choices = choices
		Default[k] = f
	}

	register(key.Debug, false, "Verbose player diagnostics")
	register(key.IsVidgo, false, "Attach the stored vidgo token to cast stream messages")
	register(key.MaxRetryCount, 3, "Soft reloads attempted before the player shows the error state")
	register(key.DisableControls, false, "Hide the transport controls")
	register(key.Type, "", "Force the content type (e.g. application/x-mpegURL).\nEmpty means derive it from the URL")
	register(key.StartMuted, false, "Start playback muted")
	register(key.PlaySuggestRecent, true, "Complete the play command with recently played sources")
	register(key.CastReceiverID, "", "Receiver to connect to when casting (websocket URL)")
	register(key.CastSettleMs, 1500, "Delay before the cast controls appear once a receiver connects, in ms")
	register(key.ReloadGraceMs, 3000, "Grace period before a waiting reload, in ms")
	register(key.StallReloadGraceMs, 1000, "Grace period before a reload triggered by stall recovery, in ms")
	register(key.NudgeTicks, 6, "Idle progress ticks before the playhead is nudged to the buffered edge")
	register(key.ReloadTicks, 11, "Idle progress ticks before the stream is reloaded")
	register(key.TrackPollMs, 500, "Text track discovery poll interval, in ms")
	register(key.LiveStallMs, 3000, "Time without timeupdate after which live playback is restarted at the live edge, in ms")
	register(key.MpvPath, "mpv", "mpv executable used as the local media element")
	register(key.IconsVariant, "plain", "Icons variant, nerd requires a nerd font")
	restrict(key.IconsVariant, icon.AvailableVariants()...)
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Log level, from less to most verbose")
	restrict(key.LogsLevel, "panic", "fatal", "error", "warn", "info", "debug", "trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Check for a newer release before playing")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"accent":   style.Fg(style.Accent),
	"key":      style.Fg(style.Highlight),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"join":     strings.Join,
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(style.Good)(b)
			}
			return style.Fg(style.Bad)(b)
		case string:
			return style.Fg(style.Warn)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ accent "Key:" }}     {{ key .Key }}
{{ accent "Env:" }}     {{ .Env }}
{{ accent "Value:" }}   {{ hl (value .Key) }}
{{ accent "Default:" }} {{ hl (.Value) }}
{{ accent "Type:" }}    {{ typename .Value }}{{ if .Choices }}
{{ accent "Choices:" }} {{ join .Choices ", " }}{{ end }}`))
