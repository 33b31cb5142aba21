package face

import (
	"context"
	"fmt"

	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/provider"
	"github.com/hostelgate/hostelgate/internal/provider/deepface"
	"github.com/hostelgate/hostelgate/internal/provider/mock"
	"github.com/hostelgate/hostelgate/internal/provider/rekognition"
)

// ProviderType defines supported face recognition provider types
type ProviderType string

const (
	// ProviderTypeDeepFace is the local DeepFace sidecar (detection + embeddings)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition pairs cloud detection with the local embedder
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-memory provider for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewFaceProvider creates a provider.FaceProvider based on configuration.
//
// Environment variables:
//   - FACE_PROVIDER: "deepface", "rekognition" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace sidecar URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: via AWS SDK credential chain
//
// Rekognition does not expose embedding vectors, so the "rekognition" type
// still needs the DeepFace sidecar for embeddings; only detection moves to
// the cloud.
func NewFaceProvider(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.FaceProvider, error) {
	switch ProviderType(cfg.FaceProvider) {
	case ProviderTypeRekognition:
		detector, err := rekognition.NewDetector(ctx,
			rekognition.Config{Region: cfg.AWSRegion},
			rekognition.WithAuditLogger(auditLogger),
		)
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		return provider.Pipeline{
			FaceDetector: detector,
			FaceEmbedder: newDeepFaceProvider(cfg),
		}, nil

	case ProviderTypeDeepFace, "":
		return newDeepFaceProvider(cfg), nil

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.FaceProvider, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func newDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	dfCfg := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		dfCfg.BaseURL = cfg.DeepFaceURL
	}
	return deepface.NewProvider(dfCfg)
}
