package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"bookchat/internal/app"
	"bookchat/internal/config"
	"bookchat/internal/logger"
)

func main() {
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()
	defer deps.Gemini.Close()
	defer deps.NSQProducer.Stop()

	application, err := app.New(cfg, deps)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := application.AuthService.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			slog.Error("failed to seed admin user", "error", err)
			os.Exit(1)
		}
	}

	taskConsumer, err := startConsumer(cfg, config.TopicIngestTask, "ingester", application.IngestConsumer)
	if err != nil {
		slog.Error("failed to start ingest consumer", "error", err)
		os.Exit(1)
	}
	defer taskConsumer.Stop()

	resultConsumer, err := startConsumer(cfg, config.TopicIngestResult, "backend", application.ResultConsumer)
	if err != nil {
		slog.Error("failed to start result consumer", "error", err)
		os.Exit(1)
	}
	defer resultConsumer.Stop()

	if err := application.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func startConsumer(cfg *config.Config, topic, channel string, handler nsq.Handler) (*nsq.Consumer, error) {
	consumer, err := nsq.NewConsumer(topic, channel, nsq.NewConfig())
	if err != nil {
		return nil, err
	}
	consumer.AddHandler(handler)
	if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		return nil, err
	}
	return consumer, nil
}
