package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/auth"
	"github.com/vidplay/vidplay/caption"
	"github.com/vidplay/vidplay/cast/wscast"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/history"
	"github.com/vidplay/vidplay/key"
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/media/mpv"
	"github.com/vidplay/vidplay/metrics"
	"github.com/vidplay/vidplay/player"
	"github.com/vidplay/vidplay/recent"
	"github.com/vidplay/vidplay/sched"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/tui"
	"github.com/vidplay/vidplay/version"
)

const teardownTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.ValidArgsFunction = completeRecent
	addPlayFlags(playCmd)

	lo.Must0(viper.BindPFlag(key.CastReceiverID, playCmd.Flags().Lookup("cast")))
	_ = playCmd.RegisterFlagCompletionFunc("drm-type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(source.DRMWidevine), string(source.DRMFairPlay), string(source.DRMPlayReady)}, cobra.ShellCompDirectiveNoFileComp
	})
}

func addPlayFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("title", "", "Window and TUI title (defaults to the file name)")
	f.String("type", "", "Force the content type, e.g. application/dash+xml")
	f.Float64("start", 0, "Start position in seconds")
	f.Bool("muted", false, "Start muted")
	f.Int("max-retries", 0, "Soft reloads before giving up")
	f.String("subs", "", "Caption track to enable once tracks are known, matched by label")

	f.String("drm-type", "", "Key system: WIDEVINE, FAIRPLAY or PLAYREADY")
	f.String("license-url", "", "License server URL")
	f.String("certificate-url", "", "Server certificate URL")
	f.StringToString("license-header", nil, "License request header as key=value (repeatable)")
	f.Bool("base64", false, "Base64 encode license requests")

	f.String("cast", "", "Cast receiver websocket URL")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
}

var playCmd = &cobra.Command{
	Use:     "play URL",
	Short:   "Play a video",
	Args:    cobra.ExactArgs(1),
	Example: "  vidplay play https://example.com/live/master.m3u8\n  vidplay play --drm-type WIDEVINE --license-url https://lic.example.com manifest.mpd",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(play(cmd, args[0]))
	},
}

func completeRecent(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return recent.SuggestMany(toComplete), cobra.ShellCompDirectiveDefault
}

func sourceFromFlags(cmd *cobra.Command, rawURL string) (source.Source, error) {
	f := cmd.Flags()
	src := source.New(rawURL)
	src.Type = lo.Must(f.GetString("type"))

	if f.Changed("start") {
		src = src.WithStartTime(lo.Must(f.GetFloat64("start")))
	}

	if drmType := lo.Must(f.GetString("drm-type")); drmType != "" {
		src.DRM = &source.DRM{
			Type:                  source.DRMType(strings.ToUpper(drmType)),
			LicenseURL:            lo.Must(f.GetString("license-url")),
			CertificateURL:        lo.Must(f.GetString("certificate-url")),
			LicenseHeader:         lo.Must(f.GetStringToString("license-header")),
			RequireBase64Encoding: lo.Must(f.GetBool("base64")),
		}
	}

	return src, src.Validate()
}

func patchFromFlags(cmd *cobra.Command) config.Patch {
	f := cmd.Flags()
	var patch config.Patch

	if f.Changed("muted") {
		patch.StartMuted = mo.Some(lo.Must(f.GetBool("muted")))
	}
	if f.Changed("max-retries") {
		patch.MaxRetryCount = mo.Some(lo.Must(f.GetInt("max-retries")))
	}
	if f.Changed("type") {
		patch.Type = mo.Some(lo.Must(f.GetString("type")))
	}

	return patch
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) {
	server := &http.Server{Addr: addr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
}

func play(cmd *cobra.Command, rawURL string) error {
	src, err := sourceFromFlags(cmd, rawURL)
	if err != nil {
		return err
	}

	if err := recent.Remember(src.URL, 1); err != nil {
		log.Debugf("remember source: %v", err)
	}

	mpvPath, err := checkDependencies()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	version.Notify(ctx, cmd.OutOrStdout())

	title := lo.Must(cmd.Flags().GetString("title"))
	if title == "" {
		title = path.Base(src.URL)
	}

	proc := mpv.NewProcess(mpvPath)
	if err := proc.Start(ctx, title); err != nil {
		return err
	}
	defer func() { _ = proc.Close() }()

	el := mpv.NewElement(proc)
	if err := el.Listen(); err != nil {
		return err
	}
	defer el.Close()

	captions, err := caption.Durable().Get()
	if err != nil {
		log.Warnf("caption style: %v", err)
	}
	if err := el.ApplyCaptionStyle(captions); err != nil {
		log.Warnf("apply caption style: %v", err)
	}

	loop := sched.NewLoop(256)
	go loop.Run(ctx)

	m := metrics.New()
	if addr := lo.Must(cmd.Flags().GetString("metrics-addr")); addr != "" {
		serveMetrics(ctx, addr, m)
	}

	surface := tui.NewSurface()
	opts := []player.Option{
		player.WithRegistry(mpv.Registry(proc.Wait())),
		player.WithSurface(surface),
		player.WithMetrics(m),
		player.WithPositions(history.Session()),
		player.WithConfig(config.Load()),
		player.WithToken(auth.Token),
	}

	receiver := viper.GetString(key.CastReceiverID)
	if receiver != "" {
		framework, err := wscast.New(receiver)
		if err != nil {
			return err
		}
		go framework.Watch(ctx)
		opts = append(opts, player.WithCast(framework))
	}

	p := player.New(el, loop.Dispatcher(), opts...)

	callbacks := &player.Callbacks{
		OnStateChange: surface.SetState,
		OnEvent:       map[media.Event]func(state.PlayerState){},
	}
	for _, e := range []media.Event{media.LoadedData, media.Playing, media.Pause, media.Waiting, media.Seeked, media.Ended, media.Error} {
		callbacks.OnEvent[e] = func(ps state.PlayerState) { surface.Event(e, ps) }
	}

	// callbacks run under the player lock, so the selection runs on its own goroutine
	if subs := lo.Must(cmd.Flags().GetString("subs")); subs != "" {
		var once sync.Once
		callbacks.OnStateChange = func(ps state.PlayerState) {
			surface.SetState(ps)
			if len(ps.TextTracks) > 0 {
				once.Do(func() {
					go func() {
						if err := p.SelectTextTrack(subs); err != nil {
							log.Warnf("subs: %v", err)
						}
					}()
				})
			}
		}
	}

	patch := patchFromFlags(cmd)
	go p.Init(ctx, src, &patch, callbacks)

	// RemovePlayer rather than Unmount keeps the saved position for the next run
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		p.StopCasting(ctx, false)
		p.RemovePlayer(ctx)
	}()

	return tui.Run(ctx, p, surface, tui.Options{
		Title:    title,
		Captions: captions,
		Casting:  receiver != "",
	})
}
