package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nadzzz/kannadavoice/internal/config"
	"github.com/nadzzz/kannadavoice/internal/health"
	"github.com/nadzzz/kannadavoice/internal/speech"
	"github.com/nadzzz/kannadavoice/internal/translator"
	"github.com/nadzzz/kannadavoice/internal/translator/mymemory"
	"github.com/nadzzz/kannadavoice/internal/transport"
	grpctransport "github.com/nadzzz/kannadavoice/internal/transport/grpc"
	httptransport "github.com/nadzzz/kannadavoice/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Watch(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("kannadavoice starting", "version", version)

	// Root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory, err := newFactory(cfg.TTS)
	if err != nil {
		return err
	}
	renderer := speech.New(factory, engineConfig(cfg.TTS), afero.NewOsFs(), cfg.TTS.TempDir)
	slog.Info("using tts backend",
		"backend", cfg.TTS.Backend,
		"language", cfg.TTS.Language,
		"rate", cfg.TTS.Rate,
		"temp_dir", renderer.Dir())

	provider := mymemory.New(cfg.Translation)
	translatorSvc := translator.New(provider)
	slog.Info("using translation provider",
		"provider", provider.Name(),
		"langpair", cfg.Translation.LangPair(),
		"timeout", cfg.Translation.Timeout)

	transports := []transport.Transport{
		httptransport.New(httptransport.Options{
			Port:              cfg.Server.Port,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			CORSOrigins:       cfg.Server.CORSOrigins,
		}, translatorSvc, renderer),
	}

	var grpcHealth *grpctransport.Transport
	if cfg.Server.GRPCHealthPort > 0 {
		grpcHealth = grpctransport.New(cfg.Server.GRPCHealthPort)
		transports = append(transports, grpcHealth)
	}

	healthServer := health.New(cfg.Server.HealthPort, version)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
				cancel()
			}
		}(t)
	}

	healthServer.SetReady(true)
	if grpcHealth != nil {
		grpcHealth.SetServing(true)
	}
	slog.Info("kannadavoice ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort,
		"grpc_health_port", cfg.Server.GRPCHealthPort)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("kannadavoice stopped")
	return nil
}

// interface guards
var (
	_ transport.Transport = (*httptransport.Transport)(nil)
	_ transport.Transport = (*grpctransport.Transport)(nil)
)
