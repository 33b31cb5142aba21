package mock

import (
	"context"
	"crypto/sha256"

	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/provider"
)

const embeddingDimension = 128

// minImageSize rejects payloads too small to plausibly be a frame.
const minImageSize = 64

// Provider implements provider.FaceProvider for tests and development. It
// always detects one face and derives a deterministic embedding from the
// image bytes, so the same frame always resolves to the same vector.
type Provider struct{}

// New creates a new mock provider.
func New() *Provider {
	return &Provider{}
}

var _ provider.FaceProvider = (*Provider)(nil)

// DetectFaces reports a single centered face for any plausible image.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	return []provider.DetectedFace{
		{
			BoundingBox: provider.BoundingBox{
				X:      0.1,
				Y:      0.1,
				Width:  0.8,
				Height: 0.8,
			},
			Confidence:   0.99,
			QualityScore: 0.95,
		},
	}, nil
}

// EmbedFace derives a deterministic embedding from the image hash.
func (p *Provider) EmbedFace(ctx context.Context, image []byte, box provider.BoundingBox) ([]float64, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}
	return generateEmbedding(image), nil
}

func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)

	embedding := make([]float64, embeddingDimension)
	for i := range embedding {
		b := hash[i%len(hash)]
		// spread bytes into [-1, 1)
		embedding[i] = float64(int(b)-128) / 128.0
	}
	return embedding
}
