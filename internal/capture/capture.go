package capture

import (
	"context"
	"time"
)

// Frame is one captured image, encoded (JPEG or PNG) the way providers
// expect it.
type Frame struct {
	Bytes      []byte
	CapturedAt time.Time
}

// Hints carries the preferred capture settings. They are requests, not
// guarantees; the camera hardware decides what it actually delivers.
type Hints struct {
	Width  int
	Height int
	FPS    int
}

// Camera is the capture collaborator. The recognizer never assumes a
// specific resolution or frame rate.
type Camera interface {
	Open(ctx context.Context, hints Hints) error
	// ReadFrame blocks until the next frame is available. A nil frame with
	// a nil error means the stream ended.
	ReadFrame(ctx context.Context) (*Frame, error)
	Release() error
}
