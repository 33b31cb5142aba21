package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hostelgate/hostelgate/internal/alert"
	"github.com/hostelgate/hostelgate/internal/api"
	"github.com/hostelgate/hostelgate/internal/api/handler"
	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/capture"
	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/face"
	"github.com/hostelgate/hostelgate/internal/recognizer"
	"github.com/hostelgate/hostelgate/internal/store"
	"github.com/hostelgate/hostelgate/internal/summary"
	"github.com/hostelgate/hostelgate/internal/voice"
	"github.com/hostelgate/hostelgate/internal/webhook"
	"github.com/hostelgate/hostelgate/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting hostelgated",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("face_provider", cfg.FaceProvider),
	)

	// Open the record store; this takes the single-process lock.
	s, err := store.Open(cfg.DataFile, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("store close error", slog.Any("error", err))
		}
	}()

	auditLogger := audit.NewSlogLogger(logger)

	faceProvider, err := face.NewFaceProvider(context.Background(), cfg, auditLogger)
	if err != nil {
		return fmt.Errorf("failed to create face provider: %w", err)
	}

	// Camera: poll a network snapshot endpoint when one is configured,
	// otherwise run on the scripted camera so the API stays usable in
	// development.
	var camera capture.Camera
	if cfg.CameraURL != "" {
		camera = capture.NewHTTPCamera(cfg.CameraURL)
	} else {
		logger.Warn("CAMERA_URL not set, using fake camera")
		camera = &capture.FakeCamera{HoldOpen: true}
	}

	hub := ws.NewHub()
	go hub.Run()

	coordinator := recognizer.New(recognizer.Options{
		Store:     s,
		Provider:  faceProvider,
		Camera:    camera,
		Audit:     auditLogger,
		Logger:    logger,
		Tolerance: cfg.Tolerance,
		FrameSkip: cfg.FrameSkip,
		Hints: capture.Hints{
			Width:  cfg.CameraWidth,
			Height: cfg.CameraHeight,
			FPS:    cfg.CameraFPS,
		},
		OnResult: func(r recognizer.Result) {
			hub.Broadcast(ws.EventRecognitionUpdated, r)
		},
	})

	var voiceFallback handler.VoiceIdentifier
	if cfg.SpeechURL != "" {
		speech := voice.NewHTTPSpeech(cfg.SpeechURL, logger)
		voiceFallback = voice.NewFallback(s, speech, auditLogger, logger, cfg.VoiceAttempts, cfg.ListenTimeout)
	} else {
		logger.Warn("SPEECH_URL not set, voice fallback disabled")
	}

	notifier := webhook.NewNotifier(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookRetries, logger)

	engine := alert.NewEngine(s, cfg.AlertThreshold, cfg.AlertWindow, cfg.AlertCooldown)
	worker := alert.NewWorker(engine, notifier, logger, cfg.AlertInterval)
	worker.OnAlert = func(a alert.Alert) {
		hub.Broadcast(ws.EventAlertTriggered, a)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go worker.Start(ctx)

	router := api.NewRouter(logger, &api.Dependencies{
		Store:       s,
		Coordinator: coordinator,
		Summarizer:  summary.New(s),
		Voice:       voiceFallback,
		Hub:         hub,
		Audit:       auditLogger,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down...")
	worker.Stop()
	if coordinator.Running() {
		if err := coordinator.StopSession(); err != nil {
			logger.Error("session stop error", slog.Any("error", err))
		}
	}
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return nil
}
