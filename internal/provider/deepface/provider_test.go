package deepface

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelgate/hostelgate/internal/provider"
)

// testImage returns an encoded 200x100 PNG so DecodeConfig has real
// dimensions to work with.
func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 200, 100))))
	return buf.Bytes()
}

func testServer(t *testing.T, resp RepresentResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/represent", r.URL.Path)
		var req RepresentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Img)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(url string) *Provider {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.RetryCount = 0
	cfg.Timeout = 2 * time.Second
	return NewProvider(cfg)
}

func TestProvider_DetectFaces(t *testing.T) {
	srv := testServer(t, RepresentResponse{
		Results: []RepresentResult{
			{Embedding: []float64{1, 2}, FacialArea: FacialArea{X: 20, Y: 10, W: 100, H: 80}},
			{Embedding: []float64{3, 4}, FacialArea: FacialArea{X: 150, Y: 5, W: 40, H: 40}},
		},
	})
	p := newTestProvider(srv.URL)

	faces, err := p.DetectFaces(context.Background(), testImage(t))
	require.NoError(t, err)
	require.Len(t, faces, 2)

	// pixel rectangles are normalized against the 200x100 frame
	assert.InDelta(t, 0.1, faces[0].BoundingBox.X, 1e-9)
	assert.InDelta(t, 0.1, faces[0].BoundingBox.Y, 1e-9)
	assert.InDelta(t, 0.5, faces[0].BoundingBox.Width, 1e-9)
	assert.InDelta(t, 0.8, faces[0].BoundingBox.Height, 1e-9)

	assert.Greater(t, faces[0].Confidence, faces[1].Confidence,
		"the larger face should score higher confidence")
}

func TestProvider_DetectFaces_NoFaces(t *testing.T) {
	srv := testServer(t, RepresentResponse{})
	p := newTestProvider(srv.URL)

	faces, err := p.DetectFaces(context.Background(), testImage(t))
	require.NoError(t, err)
	assert.Empty(t, faces, "zero faces is a normal outcome, not an error")
}

func TestProvider_DetectFaces_InvalidImage(t *testing.T) {
	srv := testServer(t, RepresentResponse{})
	p := newTestProvider(srv.URL)

	_, err := p.DetectFaces(context.Background(), []byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImageFormat)
}

func TestProvider_EmbedFace_PicksOverlappingFace(t *testing.T) {
	srv := testServer(t, RepresentResponse{
		Results: []RepresentResult{
			{Embedding: []float64{1, 1}, FacialArea: FacialArea{X: 0, Y: 0, W: 40, H: 40}},
			{Embedding: []float64{2, 2}, FacialArea: FacialArea{X: 120, Y: 40, W: 60, H: 50}},
		},
	})
	p := newTestProvider(srv.URL)

	// box over the second face (relative to the 200x100 frame)
	box := provider.BoundingBox{X: 0.6, Y: 0.4, Width: 0.3, Height: 0.5}
	embedding, err := p.EmbedFace(context.Background(), testImage(t), box)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, embedding)
}

func TestProvider_EmbedFace_ZeroBoxTakesFirst(t *testing.T) {
	srv := testServer(t, RepresentResponse{
		Results: []RepresentResult{
			{Embedding: []float64{1, 1}, FacialArea: FacialArea{X: 0, Y: 0, W: 40, H: 40}},
		},
	})
	p := newTestProvider(srv.URL)

	embedding, err := p.EmbedFace(context.Background(), testImage(t), provider.BoundingBox{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, embedding)
}

func TestProvider_EmbedFace_NoFace(t *testing.T) {
	srv := testServer(t, RepresentResponse{})
	p := newTestProvider(srv.URL)

	_, err := p.EmbedFace(context.Background(), testImage(t), provider.BoundingBox{})
	assert.ErrorIs(t, err, ErrNoFaceInResponse)
}

func TestClient_ServerErrorExhaustsRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RetryCount = 1
	client := NewClient(cfg)

	_, err := client.Represent(context.Background(), "aGk=")
	assert.ErrorIs(t, err, ErrDeepFaceUnavailable)
	assert.Equal(t, 2, attempts, "a 5xx should be retried")
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RetryCount = 3
	client := NewClient(cfg)

	_, err := client.Represent(context.Background(), "aGk=")
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "a 4xx must not be retried")
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(0))
	assert.Equal(t, time.Second, calculateBackoff(1))
	assert.Equal(t, 2*time.Second, calculateBackoff(2))
	assert.Equal(t, 4*time.Second, calculateBackoff(3))
}
