package provider

import "context"

// FaceDetector finds faces in a frame. The caller interprets the count:
// zero faces and more than one face are expected outcomes, not errors.
type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)
}

// FaceEmbedder turns one detected face into a fixed-length vector. The box
// selects which face when the frame holds several; implementations pick the
// detected face whose area overlaps it most.
type FaceEmbedder interface {
	EmbedFace(ctx context.Context, image []byte, box BoundingBox) ([]float64, error)
}

// FaceProvider is the full detection/embedding collaborator consumed by the
// recognizer.
type FaceProvider interface {
	FaceDetector
	FaceEmbedder
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox  BoundingBox `json:"bounding_box"`
	Confidence   float64     `json:"confidence"`
	QualityScore float64     `json:"quality_score"`
}

// BoundingBox represents the face area in the image, in relative [0,1]
// coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlap returns the intersection area of two boxes.
func (b BoundingBox) Overlap(o BoundingBox) float64 {
	w := minf(b.X+b.Width, o.X+o.Width) - maxf(b.X, o.X)
	h := minf(b.Y+b.Height, o.Y+o.Height) - maxf(b.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Pipeline pairs a detector with a separate embedder. It exists for
// deployments where detection is delegated to a cloud service that does not
// expose embedding vectors, so the vector comes from a local embedder.
type Pipeline struct {
	FaceDetector
	FaceEmbedder
}
