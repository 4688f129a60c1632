package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"haloframe/internal/common/fsutil"
	"haloframe/internal/config"
	"haloframe/internal/httpapi"
	"haloframe/internal/lifecycle"
	"haloframe/internal/orchestrator"
	"haloframe/internal/subsystem/assets"
	"haloframe/internal/subsystem/framestats"
	"haloframe/internal/subsystem/remote"
	"haloframe/internal/utility/crypt"
	"haloframe/internal/utility/platform"
	"haloframe/internal/utility/web"
)

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger(), nil
}

// buildOrchestrator registers the subsystems enabled by cfg. Frame stats are
// always on; assets and remote settings need a directory and a URL.
func buildOrchestrator(cfg config.Config, log zerolog.Logger) (*orchestrator.Orchestrator, error) {
	policy, err := orchestrator.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	o := orchestrator.New(orchestrator.Config{
		Policy:        policy,
		PreloadBudget: cfg.PreloadBudget,
		ReleaseBudget: cfg.ReleaseBudget,
		MaxFrames:     cfg.MaxFrames,
		FrameInterval: time.Duration(float64(time.Second) / cfg.FrameRate),
		TimeScale:     cfg.TimeScale,
		Logger:        &log,
		Publisher:     phaseTracer(log),
	})

	if cfg.AssetsDir != "" {
		dir, err := fsutil.ExpandHome(cfg.AssetsDir)
		if err != nil {
			return nil, err
		}
		l := assets.New(assets.Options{
			Dir:         dir,
			Exts:        cfg.AssetsExts,
			PerFrame:    cfg.AssetsPerFrame,
			XORKey:      []byte(cfg.AssetsXORKey),
			AESPassword: cfg.AssetsAESPassword,
			AESIV:       cfg.AssetsAESIV,
		})
		if _, err := o.RegisterHooks(l); err != nil {
			return nil, err
		}
	}
	if cfg.RemoteURL != "" {
		client := &web.Client{HTTP: &http.Client{}, Log: &log}
		s := remote.New(cfg.RemoteURL, time.Duration(cfg.RemoteTimeoutMS)*time.Millisecond, client)
		if _, err := o.RegisterHooks(s); err != nil {
			return nil, err
		}
	}
	if _, err := o.RegisterHooks(&framestats.Stats{LogEvery: int(cfg.FrameRate) * 10}); err != nil {
		return nil, err
	}
	return o, nil
}

// phaseTracer logs manager phase transitions at debug level.
func phaseTracer(log zerolog.Logger) lifecycle.EventPublisher {
	return lifecycle.PublisherFunc(func(e lifecycle.Event) {
		if e.Name == lifecycle.EventPhase {
			log.Debug().Str("manager", e.Manager).Stringer("phase", e.Phase).Msg("phase")
		}
	})
}

func runFrames(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	log, err := newLogger(logOut, cfg.LogLevel)
	if err != nil {
		return err
	}
	crypt.SetLogger(log)
	o, err := buildOrchestrator(cfg, log)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if cfg.Addr != "off" {
		httpapi.SetLogger(log)
		httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins, []string{"GET", "OPTIONS"}, []string{"Content-Type"})
		srv = &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(o), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", cfg.Addr).Msg("http listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server error")
			}
		}()
	}

	log.Info().Str("run_id", o.RunID()).Str("platform", platform.Name()).Int("managers", len(o.Managers())).
		Float64("frame_rate", cfg.FrameRate).Str("policy", cfg.Policy).Msg("haloframe starting")
	runErr := o.Run(ctx)

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown error")
		}
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("run ended with fault")
		return runErr
	}
	log.Info().Msg("haloframe stopped")
	return nil
}
