package deepface

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"github.com/hostelgate/hostelgate/internal/provider"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for confidence scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Provider implements provider.FaceProvider against a local DeepFace sidecar.
// One /represent call yields both the face rectangles and the embeddings, so
// detection and embedding share a code path.
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

var _ provider.FaceProvider = (*Provider)(nil)

// DetectFaces detects faces in the image. Boxes come back in relative
// coordinates; DeepFace reports pixels, so the frame dimensions are read
// from the image header.
func (p *Provider) DetectFaces(ctx context.Context, img []byte) ([]provider.DetectedFace, error) {
	resp, w, h, err := p.represent(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		faceArea := float64(result.FacialArea.W * result.FacialArea.H)
		faces = append(faces, provider.DetectedFace{
			BoundingBox:  relativeBox(result.FacialArea, w, h),
			Confidence:   calculateConfidence(faceArea),
			QualityScore: calculateQuality(faceArea),
		})
	}

	return faces, nil
}

// EmbedFace returns the embedding of the detected face that overlaps the box
// the most. A zero box selects the first face, which covers the common
// single-face probe.
func (p *Provider) EmbedFace(ctx context.Context, img []byte, box provider.BoundingBox) ([]float64, error) {
	resp, w, h, err := p.represent(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("embed face: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoFaceInResponse
	}

	best := resp.Results[0]
	if box.Width > 0 && box.Height > 0 {
		bestOverlap := -1.0
		for _, result := range resp.Results {
			overlap := relativeBox(result.FacialArea, w, h).Overlap(box)
			if overlap > bestOverlap {
				bestOverlap = overlap
				best = result
			}
		}
	}

	return best.Embedding, nil
}

func (p *Provider) represent(ctx context.Context, img []byte) (*RepresentResponse, int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrInvalidImageFormat, err)
	}

	resp, err := p.client.Represent(ctx, base64.StdEncoding.EncodeToString(img))
	if err != nil {
		return nil, 0, 0, err
	}
	return resp, cfg.Width, cfg.Height, nil
}

func relativeBox(area FacialArea, imageW, imageH int) provider.BoundingBox {
	if imageW <= 0 || imageH <= 0 {
		return provider.BoundingBox{}
	}
	return provider.BoundingBox{
		X:      float64(area.X) / float64(imageW),
		Y:      float64(area.Y) / float64(imageH),
		Width:  float64(area.W) / float64(imageW),
		Height: float64(area.H) / float64(imageH),
	}
}

// calculateConfidence estimates confidence based on face area.
// DeepFace doesn't return confidence; larger faces are more likely to be
// accurately detected.
func calculateConfidence(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}

// calculateQuality estimates quality score based on face area.
func calculateQuality(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.4
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.6 + (normalized * 0.35)
}
