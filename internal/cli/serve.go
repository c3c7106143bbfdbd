package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobtracker-engine/internal/config"
	"jobtracker-engine/internal/events"
	"jobtracker-engine/internal/httpapi"
	"jobtracker-engine/internal/linkmeta"
	"jobtracker-engine/internal/remote"
	"jobtracker-engine/internal/scheduler"
	"jobtracker-engine/internal/session"
	"jobtracker-engine/internal/tracker"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tracker HTTP engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func runServe(parent context.Context, opts *RootOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	rt, err := prepare(opts.DataDir)
	if err != nil {
		return err
	}

	// One engine per data dir.
	lock := flock.New(filepath.Join(rt.DataDir, "tracker.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return WrapExitError(ExitCommandError, "lock data dir", err)
	}
	if !locked {
		return NewExitError(ExitCommandError, fmt.Sprintf("another engine is running on %s", rt.DataDir))
	}
	defer func() { _ = lock.Unlock() }()

	cfg, vr, err := rt.load()
	if err != nil {
		return WrapExitError(ExitCommandError, "config", err)
	}
	for _, w := range vr.Warnings {
		log.Printf("level=warn msg=\"config\" warning=%q", w)
	}
	if !vr.OK() {
		return NewExitError(ExitFailure, "invalid config: "+strings.Join(vr.Errors, "; "))
	}

	// Keep the config reloadable for the /config handlers.
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)
	loadCfg := func() (config.Config, error) {
		c, v, err := rt.load()
		if err != nil {
			return c, err
		}
		if !v.OK() {
			return c, errors.New(strings.Join(v.Errors, "; "))
		}
		return c, nil
	}

	adapter, closeRemote := openRemote(cfg)
	defer func() { _ = closeRemote() }()

	provider := openSession(cfg)
	hub := events.NewHub()
	app := tracker.New(tracker.Options{
		Session:     provider,
		Adapter:     adapter,
		Notifier:    events.HubNotifier{Hub: hub, RequestID: httpapi.RequestIDFrom},
		SeedSamples: cfg.App.SeedSamples,
		PageSize:    cfg.App.PageSize,
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	startup(ctx, app, adapter, provider)

	var preview *linkmeta.Fetcher
	if cfg.LinkPreview.Enabled {
		preview = linkmeta.NewFetcher(
			&http.Client{Timeout: time.Duration(cfg.LinkPreview.TimeoutSeconds) * time.Second},
			cfg.LinkPreview.RequestsPerSecond, 1,
		)
	}

	token := os.Getenv("TRACKER_SHUTDOWN_TOKEN")
	if token == "" {
		if token, err = randomToken(16); err != nil {
			return err
		}
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		App:           app,
		Hub:           hub,
		CfgVal:        &cfgVal,
		UserCfgPath:   rt.CfgPath,
		LoadCfg:       loadCfg,
		Preview:       preview,
		ShutdownToken: token,
		Shutdown:      stop,
	})

	addr := net.JoinHostPort(cfg.App.Host, fmt.Sprint(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "listen", err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("level=info msg=\"engine listening\" addr=http://%s data_dir=%s remote=%q", addr, rt.DataDir, app.RemoteName())
	// The desktop shell reads the token from stdout.
	fmt.Printf("SHUTDOWN_TOKEN=%s\n", token)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if adapter != nil && cfg.Remote.PingIntervalSeconds > 0 {
		interval := time.Duration(cfg.Remote.PingIntervalSeconds) * time.Second
		g.Go(func() error {
			scheduler.Every(gctx, interval, "remote.ping", adapter.Ping)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("level=info msg=\"engine shutting down\"")
		// Open event streams never go idle on their own.
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// startup probes the remote store and restores the session concurrently,
// then loads records. Probe failures only leave the engine local-only.
func startup(ctx context.Context, app *tracker.App, adapter remote.Adapter, provider session.Provider) {
	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var g errgroup.Group
	if adapter != nil {
		g.Go(func() error {
			if err := adapter.Ping(probeCtx); err != nil {
				log.Printf("level=warn msg=\"remote store unreachable\" remote=%s err=%q", adapter.Name(), err.Error())
			}
			return nil
		})
	}
	g.Go(func() error {
		u, err := provider.CurrentUser(probeCtx)
		switch {
		case err != nil:
			log.Printf("level=warn msg=\"session restore failed\" err=%q", err.Error())
		case u != nil:
			log.Printf("level=info msg=\"session restored\" user=%s", u.Email)
		}
		return nil
	})
	_ = g.Wait()

	if err := app.Start(probeCtx); err != nil {
		log.Printf("level=warn msg=\"initial load failed\" err=%q", err.Error())
	}
}
