package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anhtu/notebox/common"
	"github.com/anhtu/notebox/httpserver"
	"github.com/anhtu/notebox/notes"
	"github.com/anhtu/notebox/sessions"
	"github.com/anhtu/notebox/storage"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:3001",
		Usage: "address to listen on for API",
	},
	&cli.StringFlag{
		Name:  "metrics-addr",
		Value: "127.0.0.1:8090",
		Usage: "address to listen on for Prometheus metrics",
	},
	&cli.StringFlag{
		Name:  "data-dir",
		Value: "data",
		Usage: "directory holding the notes and sessions documents",
	},
	&cli.StringFlag{
		Name:  "static-dir",
		Value: "dist",
		Usage: "directory holding the built frontend",
	},
	&cli.BoolFlag{
		Name:  "dev",
		Value: false,
		Usage: "development mode: include error detail in 5xx responses",
	},
	&cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	},
	&cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	},
	&cli.BoolFlag{
		Name:  "log-uid",
		Value: false,
		Usage: "generate a uuid and add to all log messages",
	},
	&cli.StringFlag{
		Name:  "log-service",
		Value: common.PackageName,
		Usage: "add 'service' tag to logs",
	},
	&cli.BoolFlag{
		Name:  "pprof",
		Value: false,
		Usage: "enable pprof debug endpoint",
	},
	&cli.Int64Flag{
		Name:  "drain-seconds",
		Value: 45,
		Usage: "seconds to wait in drain HTTP request",
	},
}

func main() {
	app := &cli.App{
		Name:  "notebox-server",
		Usage: "Serve the notebox note-taking and pastebin API",
		Flags: flags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			metricsAddr := cCtx.String("metrics-addr")
			dataDir := cCtx.String("data-dir")
			staticDir := cCtx.String("static-dir")
			development := cCtx.Bool("dev")
			logJSON := cCtx.Bool("log-json")
			logDebug := cCtx.Bool("log-debug")
			logUID := cCtx.Bool("log-uid")
			logService := cCtx.String("log-service")
			enablePprof := cCtx.Bool("pprof")
			drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

			logger := common.SetupLogger(&common.LoggingOpts{
				Debug:   logDebug,
				JSON:    logJSON,
				Service: logService,
				Version: common.Version,
			})

			if logUID {
				id := uuid.Must(uuid.NewRandom())
				logger = logger.With("uid", id.String())
			}

			// The store seeds the data directory and both documents; this
			// must complete before the HTTP layer starts accepting.
			logger.Info("Initializing store", "dataDir", dataDir)
			store, err := storage.NewFileStore(dataDir, logger)
			if err != nil {
				logger.Error("Failed to initialize store", "err", err)
				return err
			}

			noteSvc := notes.NewService(store, logger)
			sessionSvc := sessions.NewService(store, logger)
			handler := httpserver.NewHandler(noteSvc, sessionSvc, staticDir, development, logger)

			cfg := &httpserver.HTTPServerConfig{
				ListenAddr:               listenAddr,
				MetricsAddr:              metricsAddr,
				Log:                      logger,
				EnablePprof:              enablePprof,
				DrainDuration:            drainDuration,
				GracefulShutdownDuration: 30 * time.Second,
				ReadTimeout:              60 * time.Second,
				WriteTimeout:             30 * time.Second,
			}

			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
