package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/EducaGame/internal/adapters/http"
	wssignal "github.com/dkeye/EducaGame/internal/adapters/signal"
	"github.com/dkeye/EducaGame/internal/app"
	"github.com/dkeye/EducaGame/internal/app/bots"
	"github.com/dkeye/EducaGame/internal/app/content"
	"github.com/dkeye/EducaGame/internal/app/history"
	"github.com/dkeye/EducaGame/internal/app/orch"
	"github.com/dkeye/EducaGame/internal/app/wheel"
	"github.com/dkeye/EducaGame/internal/config"
	"github.com/dkeye/EducaGame/internal/domain"
	resthttp "github.com/dkeye/EducaGame/internal/transport/http"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cmd := &cli.Command{
		Name:  "educagame",
		Usage: "realtime party game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Usage: "config environment (config/config.<env>.yaml)", Sources: cli.EnvVars("CONFIG_ENV")},
			&cli.IntFlag{Name: "port", Usage: "listen port, overrides config"},
			&cli.StringFlag{Name: "log-level", Usage: "trace|debug|info|warn|error, overrides config"},
		},
		Action: run,
	}
	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return err
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	setupLogger(cfg)

	hist := history.NewService()
	loader := content.New(cfg.DataDir)
	rooms := app.NewRoomManager(cfg.MaxPlayers)
	reg := app.NewRegistry()
	wh := wheel.New(loader, hist, wheel.WithMaxPlayers(rooms.MaxPlayers()))
	sched := bots.NewScheduler(rooms, cfg.BotDelayMin, cfg.BotDelayMax)

	o := &orch.Orchestrator{
		Registry:    reg,
		Rooms:       rooms,
		Engines:     app.NewEngines(append(app.GenericEngines(domain.GameRoletrando), wh)...),
		Wheel:       wh,
		Bots:        sched,
		Broadcaster: app.NewBroadcaster(reg, app.PolicyByName(cfg.Backpressure)),
		History:     hist,
	}

	ctl := wssignal.NewSignalWSController(o, wssignal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
	})
	rest := &resthttp.Handlers{Orch: o, Content: loader, History: hist}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(ctx, cfg, ctl, rest),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("EducaGame server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sched.Run(gctx, o)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}

func setupLogger(cfg *config.Config) {
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
