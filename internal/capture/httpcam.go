package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// HTTPCamera polls JPEG snapshots from an IP camera's snapshot endpoint.
// Kiosk deployments usually run the camera as a separate device on the local
// network, so frames arrive over HTTP rather than through a device driver.
type HTTPCamera struct {
	baseURL    string
	httpClient *http.Client

	mu       sync.Mutex
	open     bool
	snapshot string // full URL including hints, built at Open
	interval time.Duration
	lastRead time.Time
}

// NewHTTPCamera creates a camera that polls snapshotURL.
func NewHTTPCamera(snapshotURL string) *HTTPCamera {
	return &HTTPCamera{
		baseURL: snapshotURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Open verifies the endpoint answers and fixes the polling interval from the
// FPS hint. The resolution hints are forwarded as query parameters; cameras
// that do not understand them ignore them.
func (c *HTTPCamera) Open(ctx context.Context, hints Hints) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	q := u.Query()
	if hints.Width > 0 {
		q.Set("width", strconv.Itoa(hints.Width))
	}
	if hints.Height > 0 {
		q.Set("height", strconv.Itoa(hints.Height))
	}
	u.RawQuery = q.Encode()
	c.snapshot = u.String()

	fps := hints.FPS
	if fps <= 0 {
		fps = 10
	}
	c.interval = time.Second / time.Duration(fps)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.snapshot, nil)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("open camera: endpoint returned status %d", resp.StatusCode)
	}

	c.open = true
	return nil
}

// ReadFrame fetches the next snapshot, pacing requests to the FPS hint.
func (c *HTTPCamera) ReadFrame(ctx context.Context) (*Frame, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return nil, fmt.Errorf("read frame: camera is not open")
	}
	snapshot := c.snapshot
	wait := c.interval - time.Since(c.lastRead)
	c.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, snapshot, nil)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("read frame: endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	c.mu.Lock()
	c.lastRead = time.Now()
	c.mu.Unlock()

	return &Frame{Bytes: body, CapturedAt: time.Now()}, nil
}

// Release marks the camera closed. Outstanding reads finish on their own.
func (c *HTTPCamera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

var _ Camera = (*HTTPCamera)(nil)
