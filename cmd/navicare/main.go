package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kwabenadarko/navicare/internal/archive"
	"github.com/kwabenadarko/navicare/internal/config"
	"github.com/kwabenadarko/navicare/internal/httpapi"
	"github.com/kwabenadarko/navicare/internal/observability"
	"github.com/kwabenadarko/navicare/internal/providers"
	"github.com/kwabenadarko/navicare/internal/reasoning"
	"github.com/kwabenadarko/navicare/internal/store"
	"github.com/kwabenadarko/navicare/internal/triage"
	"github.com/kwabenadarko/navicare/internal/voiceio"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archiveStore, err := archive.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("archive store init failed: %v", err)
	}
	defer archiveStore.Close()
	if cfg.DatabaseURL == "" {
		log.Printf("archive store: in-memory (no DATABASE_URL)")
	} else {
		log.Printf("archive store: postgres")
	}

	records, err := store.NewStore(ctx, cfg.RedisAddr, cfg.UserRecordTTL)
	if err != nil {
		log.Fatalf("record store init failed: %v", err)
	}
	defer records.Close()
	if cfg.RedisAddr == "" {
		log.Printf("record store: in-memory (no REDIS_ADDR)")
	} else {
		log.Printf("record store: redis at %s", cfg.RedisAddr)
	}

	engine, err := reasoning.NewEngine(reasoning.Config{
		Mode:         cfg.ReasoningMode,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
		HTTPURL:      cfg.ReasoningHTTPURL,
	})
	if err != nil {
		log.Fatalf("reasoning engine init failed: %v", err)
	}
	log.Printf("reasoning engine: %T", engine)

	var directory providers.Directory
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		directory = providers.NewLLMDirectory(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Printf("provider directory: llm")
	} else {
		directory = providers.NewMockDirectory()
		log.Printf("provider directory: mock (no OPENAI_API_KEY)")
	}

	var synth voiceio.Synthesizer
	if strings.TrimSpace(cfg.SynthesisURL) != "" {
		synth = voiceio.NewHTTPSynthesizer(cfg.SynthesisURL, cfg.SynthesisVoice, cfg.SynthesisSampleRate, cfg.SynthesisChannels)
		log.Printf("speech synthesis: http at %s", cfg.SynthesisURL)
	} else {
		synth = voiceio.NewMockSynthesizer()
		log.Printf("speech synthesis: mock (no SYNTHESIS_URL)")
	}

	sessions := triage.NewManager(cfg.SessionInactivityTimeout)

	api := httpapi.New(cfg, sessions, engine, archiveStore, records, directory, synth, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 30*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
