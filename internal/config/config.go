package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8787"`
	Environment string `envconfig:"ENV" default:"development"`

	// Persistence
	DataFile string `envconfig:"DATA_FILE" default:"hostelgate.json"`

	// Recognition
	FaceProvider string  `envconfig:"FACE_PROVIDER" default:"deepface"`
	DeepFaceURL  string  `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	AWSRegion    string  `envconfig:"AWS_REGION" default:"us-east-1"`
	Tolerance    float64 `envconfig:"MATCH_TOLERANCE" default:"0.6"`
	FrameSkip    int     `envconfig:"FRAME_SKIP" default:"3"`

	// Camera hints, passed through to the capture collaborator
	CameraURL    string `envconfig:"CAMERA_URL"`
	CameraWidth  int    `envconfig:"CAMERA_WIDTH" default:"640"`
	CameraHeight int    `envconfig:"CAMERA_HEIGHT" default:"480"`
	CameraFPS    int    `envconfig:"CAMERA_FPS" default:"30"`

	// Voice fallback
	SpeechURL     string        `envconfig:"SPEECH_URL"`
	VoiceAttempts int           `envconfig:"VOICE_ATTEMPTS" default:"3"`
	ListenTimeout time.Duration `envconfig:"LISTEN_TIMEOUT" default:"8s"`

	// Curfew alerts
	AlertInterval  time.Duration `envconfig:"ALERT_INTERVAL" default:"5m"`
	AlertWindow    time.Duration `envconfig:"ALERT_WINDOW" default:"24h"`
	AlertThreshold int           `envconfig:"ALERT_THRESHOLD" default:"1"`
	AlertCooldown  time.Duration `envconfig:"ALERT_COOLDOWN" default:"1h"`
	WebhookURL     string        `envconfig:"WEBHOOK_URL"`
	WebhookSecret  string        `envconfig:"WEBHOOK_SECRET"`
	WebhookRetries int           `envconfig:"WEBHOOK_RETRIES" default:"3"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.FrameSkip < 1 {
		cfg.FrameSkip = 1
	}
	if cfg.VoiceAttempts < 1 {
		cfg.VoiceAttempts = 1
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
