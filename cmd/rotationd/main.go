// rotationd — key rotation service for the content pipeline.
//
// Loads pooled credentials from the environment, enforces the daily quota
// on the primary provider, and serves operational endpoints:
//
//   GET /metrics — Prometheus metrics
//   GET /healthz — liveness
//   GET /stats   — per-provider key pool health (JSON)
//
// Environment variables:
//   HTTP_PORT          — HTTP port (default: 9090)
//   PROVIDERS          — comma-separated provider names (default: gemini,perplexity)
//   PRIMARY_PROVIDER   — provider using strict round-robin (default: gemini)
//   DAILY_QUOTA_LIMIT  — daily call ceiling for the primary provider; 0 = unlimited
//   <PROVIDER>_API_KEY, <PROVIDER>_API_KEY_2, … — numbered credentials per provider
//   REDIS_ADDR         — Redis address for the usage log (empty disables it)
//   REDIS_PASSWORD     — Redis password (default: "")
//   REDIS_DB           — Redis database (default: 0)
//   USAGE_LOG_KEY      — Redis list key (default: rotation:usage)
//   USAGE_LOG_MAX_LEN  — usage log cap (default: 10000)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/KAFKA2306/2510youtuber-sub001/pkg/config"
	"github.com/KAFKA2306/2510youtuber-sub001/pkg/rotation"
	"github.com/KAFKA2306/2510youtuber-sub001/pkg/usagelog"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.Info("starting rotationd")

	settings := config.Load()

	// -------------------------------------------------------------------------
	// Usage log sink
	// -------------------------------------------------------------------------
	var sink usagelog.Sink = usagelog.NopSink{}
	if settings.RedisAddr != "" {
		redisSink := usagelog.NewRedisSink(
			settings.RedisAddr, settings.RedisPassword, settings.RedisDB,
			settings.UsageLogKey, int64(settings.UsageLogMaxLen),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisSink.Ping(ctx); err != nil {
			log.WithError(err).Warn("Redis connection failed, usage log disabled")
		} else {
			sink = redisSink
			log.WithField("addr", settings.RedisAddr).Info("usage log enabled")
		}
		cancel()
	}

	// -------------------------------------------------------------------------
	// Rotation manager
	// -------------------------------------------------------------------------
	manager := rotation.NewManager(rotation.Config{
		PrimaryProvider: settings.PrimaryProvider,
		Logger:          log,
		Sink:            sink,
	})

	registered := 0
	for _, provider := range settings.Providers {
		keys := config.KeysFromEnv(provider)
		if len(keys) == 0 {
			log.WithField("provider", provider).Warn("no credentials found in environment")
			continue
		}
		manager.RegisterKeys(provider, keys)
		registered++
	}
	if registered == 0 {
		log.Fatal("no key pools registered, nothing to serve")
	}
	if settings.DailyQuotaLimit > 0 {
		manager.SetDailyQuotaLimit(settings.PrimaryProvider, settings.DailyQuotaLimit)
	}

	// -------------------------------------------------------------------------
	// HTTP server
	// -------------------------------------------------------------------------
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(manager.Stats()); err != nil {
			log.WithError(err).Error("stats encode failed")
		}
	})

	server := &http.Server{
		Addr:         ":" + settings.HTTPPort,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", settings.HTTPPort).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	// -------------------------------------------------------------------------
	// Graceful shutdown
	// -------------------------------------------------------------------------
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}
	if err := sink.Close(); err != nil {
		log.WithError(err).Error("usage log close error")
	}
	log.Info("rotationd stopped")
}
