package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCameraOpenAndRead(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

	var sawWidth, sawHeight string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawWidth = r.URL.Query().Get("width")
		sawHeight = r.URL.Query().Get("height")
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpeg)
	}))
	defer server.Close()

	cam := NewHTTPCamera(server.URL)
	err := cam.Open(context.Background(), Hints{Width: 640, Height: 480, FPS: 30})
	require.NoError(t, err)
	defer func() { _ = cam.Release() }()

	frame, err := cam.ReadFrame(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, jpeg, frame.Bytes)
	assert.False(t, frame.CapturedAt.IsZero())
	assert.Equal(t, "640", sawWidth)
	assert.Equal(t, "480", sawHeight)
}

func TestHTTPCameraOpenRejectsBadEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cam := NewHTTPCamera(server.URL)
	err := cam.Open(context.Background(), Hints{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPCameraReadBeforeOpen(t *testing.T) {
	cam := NewHTTPCamera("http://localhost:0/snapshot")
	_, err := cam.ReadFrame(context.Background())
	assert.Error(t, err)
}

func TestHTTPCameraReadSurfacesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// HEAD probe from Open.
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cam := NewHTTPCamera(server.URL)
	require.NoError(t, cam.Open(context.Background(), Hints{FPS: 100}))

	_, err := cam.ReadFrame(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPCameraRespectsContextDuringPacing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0xFF, 0xD8})
	}))
	defer server.Close()

	cam := NewHTTPCamera(server.URL)
	require.NoError(t, cam.Open(context.Background(), Hints{FPS: 1}))

	_, err := cam.ReadFrame(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The second read must wait close to a second; the context expires first.
	_, err = cam.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
