package rekognition

import (
	"context"
	"fmt"
	"strconv"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Config holds configuration for the AWS Rekognition detector
type Config struct {
	// Region is the AWS region where Rekognition will be used (e.g., "us-east-1")
	Region string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{Region: "us-east-1"}
}

// api is the slice of the Rekognition client the detector needs.
type api interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Detector implements provider.FaceDetector using AWS Rekognition.
// Rekognition does not expose embedding vectors, so deployments pair this
// detector with a local embedder via provider.Pipeline.
type Detector struct {
	client      api
	auditLogger audit.Logger
}

// DetectorOption defines optional configuration for Detector
type DetectorOption func(*Detector)

// WithAuditLogger sets the audit logger for the detector
func WithAuditLogger(logger audit.Logger) DetectorOption {
	return func(d *Detector) {
		d.auditLogger = logger
	}
}

var _ provider.FaceDetector = (*Detector)(nil)

// NewDetector creates a Rekognition-backed detector using the AWS default
// credential chain.
func NewDetector(ctx context.Context, cfg Config, opts ...DetectorOption) (*Detector, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	d := &Detector{
		client: rekognition.NewFromConfig(awsCfg),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// DetectFaces detects faces using the Rekognition DetectFaces API.
// An empty slice means no faces, which is a normal outcome, not an error.
func (d *Detector) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := validateImage(image); err != nil {
		d.logAudit(ctx, audit.EventFaceDetected, false, err, map[string]string{
			"image_size": strconv.Itoa(len(image)),
		})
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeDefault},
	}

	output, err := d.client.DetectFaces(ctx, input)
	if err != nil {
		err = classifyError(err)
		d.logAudit(ctx, audit.EventFaceDetected, false, err, map[string]string{
			"image_size": strconv.Itoa(len(image)),
		})
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(deref(detail.BoundingBox.Left)),
				Y:      float64(deref(detail.BoundingBox.Top)),
				Width:  float64(deref(detail.BoundingBox.Width)),
				Height: float64(deref(detail.BoundingBox.Height)),
			},
			Confidence:   float64(deref(detail.Confidence)) / 100.0,
			QualityScore: qualityScore(detail.Quality),
		})
	}

	d.logAudit(ctx, audit.EventFaceDetected, true, nil, map[string]string{
		"faces_count": strconv.Itoa(len(faces)),
		"image_size":  strconv.Itoa(len(image)),
	})

	return faces, nil
}

// logAudit logs an audit event if an audit logger is configured.
// Audit failure does not affect the operation (fire-and-forget).
func (d *Detector) logAudit(ctx context.Context, eventType audit.EventType, success bool, err error, metadata map[string]string) {
	if d.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: eventType,
		Provider:  "rekognition",
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	_ = d.auditLogger.Log(ctx, event)
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// qualityScore computes an overall quality score from Rekognition quality
// metrics, weighting sharpness more heavily since it dominates embedding
// quality.
func qualityScore(quality *types.ImageQuality) float64 {
	if quality == nil {
		return 0.0
	}

	brightness := 0.0
	sharpness := 0.0
	if quality.Brightness != nil {
		brightness = float64(*quality.Brightness) / 100.0
	}
	if quality.Sharpness != nil {
		sharpness = float64(*quality.Sharpness) / 100.0
	}

	return brightness*0.3 + sharpness*0.7
}

func deref(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}
