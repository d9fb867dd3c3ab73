package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dialboard/server/config"
	"github.com/dialboard/server/internal/feed"
	"github.com/dialboard/server/internal/http"
	"github.com/dialboard/server/internal/http/handlers"
	"github.com/dialboard/server/pkg/gauge"
	"github.com/dialboard/server/pkg/history"
	"github.com/dialboard/server/pkg/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func buildServerCmd(logger *slog.Logger) *cobra.Command {
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Runs the dashboard HTTP server and the feed pollers",
		Run: func(cmd *cobra.Command, args []string) {
			err := runServer(logger)
			if err != nil {
				logger.Error(err.Error())
				os.Exit(2)
			}

		},
	}
	return serverCmd
}

func runServer(logger *slog.Logger) error {
	file, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("fail to read configuration file: %w", err)
	}
	var config config.Configuration
	if err := yaml.Unmarshal(file, &config); err != nil {
		return fmt.Errorf("fail to parse yaml configuration file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.DefaultRegisterer.(*prometheus.Registry)
	gaugeService := gauge.New(logger)
	historyService := history.New(logger)
	hub := handlers.NewHub(logger)

	feedClient, err := feed.NewClient(logger, config.Feeds)
	if err != nil {
		return err
	}
	onApply := func() {
		hub.Broadcast(render.BuildDashboard(gaugeService.Snapshot(), historyService.All(), time.Now().UTC()))
	}
	poller, err := feed.NewPoller(logger, feedClient, gaugeService, historyService, config.Feeds, registry, onApply)
	if err != nil {
		return err
	}

	handlersBuilder := handlers.NewBuilder(gaugeService, historyService, hub)
	server, err := http.NewServer(logger, config.HTTP, registry, handlersBuilder, config.Tracing.Enabled)
	if err != nil {
		return err
	}

	if config.Tracing.Enabled {
		tracerProvider, err := buildTracerProvider(ctx, config.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.Error(fmt.Sprintf("fail to shutdown tracer provider: %s", err.Error()))
			}
		}()
	}

	signals := make(chan os.Signal, 1)
	errChan := make(chan error)

	signal.Notify(
		signals,
		syscall.SIGINT,
		syscall.SIGTERM)

	poller.Start(ctx)
	server.Start()
	go func() {
		for sig := range signals {
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				logger.Info(fmt.Sprintf("received signal %s, starting shutdown", sig))
				signal.Stop(signals)
				cancel()
				poller.Stop()
				err := server.Stop()
				if err != nil {
					errChan <- err
				}
				errChan <- nil
			}

		}
	}()
	exitErr := <-errChan
	return exitErr
}
