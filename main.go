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
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/xiaot623/meetagent/internal/adapter/llm"
	"github.com/xiaot623/meetagent/internal/config"
	"github.com/xiaot623/meetagent/internal/logging"
	"github.com/xiaot623/meetagent/internal/repository"
	"github.com/xiaot623/meetagent/internal/service"
	handler "github.com/xiaot623/meetagent/internal/transport/http"
	"github.com/xiaot623/meetagent/internal/transport/ws"
	"github.com/xiaot623/meetagent/policy"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "meetagent: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)
	loc := cfg.Location()

	logger.Info().
		Int("http_port", cfg.HTTPPort).
		Str("database_driver", cfg.DatabaseDriver).
		Str("llm_model", cfg.LLMModel).
		Str("timezone", loc.String()).
		Msg("starting meetagent")

	// Initialize store
	store, err := repository.Open(cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize meeting store")
	}
	defer store.Close()

	// Initialize completion service
	llmClient := llm.NewLLMClient(cfg)
	extract := llm.NewCompleter(llmClient, cfg.LLMModel, llm.WithTemperature(cfg.LLMTemperature))
	chat := llm.NewCompleter(llmClient, cfg.LLMModel,
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithSystemPrompt(service.SystemPrompt),
	)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize policy engine")
	}

	// Initialize service
	svc := service.New(store, extract, chat, policyEngine, loc, logger)

	wsServer := ws.NewServer(svc, ws.Options{
		PingInterval:   cfg.WSPingInterval,
		WriteTimeout:   cfg.WSWriteTimeout,
		ReadTimeout:    cfg.WSReadTimeout,
		MaxMessageSize: cfg.WSMaxMessageSize,
	}, logger)
	server := handler.NewServer(svc, wsServer)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start http server")
		}
	}()

	logger.Info().Int("port", cfg.HTTPPort).Msg("meeting API started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down meetagent")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown http server gracefully")
	}

	logger.Info().Msg("meetagent stopped")
}
