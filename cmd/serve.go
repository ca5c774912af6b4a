package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/server"
	"github.com/spigell/job-change/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions and the analytics snapshot over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default "+server.DefaultAddr+")")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	logger.Info("starting the job-change server", zap.String("version", version))

	provider, predictor := newPredictor(config, logger)

	// Fail closed on startup rather than on the first request.
	if _, err := provider.Load(); err != nil {
		logger.Fatal("loading trained assets", zap.Error(err))
	}

	snapshots, err := store.Open(config.Snapshot.Store, config.Snapshot.Path)
	if err != nil {
		logger.Fatal("opening the snapshot store", zap.Error(err))
	}
	defer snapshots.Close()

	srv, err := server.New(config.Server, logger, predictor, snapshots, provider)
	if err != nil {
		logger.Fatal("creating the http server", zap.Error(err))
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start()
	}()

	select {
	case err := <-errs:
		if err != nil {
			logger.Fatal("serving http", zap.Error(err))
		}
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdown); err != nil {
			logger.Error("stopping the http server", zap.Error(err))
		}
	}
}
