package recognizer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/capture"
	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/match"
	"github.com/hostelgate/hostelgate/internal/provider"
	"github.com/hostelgate/hostelgate/internal/store"
)

// Result is the published outcome of analyzing one frame. Sequence is taken
// when the frame is handed to a worker, so a result produced from an older
// frame can be recognized as stale and discarded at publish time.
type Result struct {
	Sequence int64              `json:"sequence"`
	Match    domain.MatchResult `json:"match"`
	Identity *domain.Identity   `json:"identity,omitempty"`
	At       time.Time          `json:"at"`
}

// Options wires the coordinator's collaborators. Store, Provider and Camera
// are required; the rest default to quiet no-ops.
type Options struct {
	Store    *store.Store
	Provider provider.FaceProvider
	Camera   capture.Camera
	Audit    audit.Logger
	Logger   *slog.Logger

	Tolerance float64
	FrameSkip int
	Hints     capture.Hints

	// OnFrame receives every captured frame, analyzed or not, so the kiosk
	// preview stays smooth regardless of recognition pace.
	OnFrame func(*capture.Frame)
	// OnResult receives each result that wins the publish, in order.
	OnResult func(Result)
}

// Coordinator runs the per-session recognition loop: read frames, analyze
// every Nth one on a single background worker, publish the latest result.
// All session state lives on the instance, so independent coordinators never
// interfere with each other.
type Coordinator struct {
	store    *store.Store
	provider provider.FaceProvider
	camera   capture.Camera
	audit    audit.Logger
	logger   *slog.Logger

	tolerance float64
	frameSkip int
	hints     capture.Hints

	onFrame  func(*capture.Frame)
	onResult func(Result)

	catMu   sync.RWMutex
	catalog match.Catalog

	sessionMu sync.Mutex
	sessionID uuid.UUID
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	busy atomic.Bool
	seq  atomic.Int64

	slotMu sync.Mutex
	slot   Result
}

// New builds a coordinator. The catalog snapshot is taken lazily when a
// session starts and refreshed after every registration or deletion.
func New(opts Options) *Coordinator {
	if opts.Audit == nil {
		opts.Audit = &audit.NoOpLogger{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = match.DefaultTolerance
	}
	if opts.FrameSkip < 1 {
		opts.FrameSkip = 1
	}
	return &Coordinator{
		store:     opts.Store,
		provider:  opts.Provider,
		camera:    opts.Camera,
		audit:     opts.Audit,
		logger:    opts.Logger.With("component", "recognizer"),
		tolerance: opts.Tolerance,
		frameSkip: opts.FrameSkip,
		hints:     opts.Hints,
		onFrame:   opts.OnFrame,
		onResult:  opts.OnResult,
	}
}

// ReloadCatalog replaces the embedding snapshot with the store's current one.
func (c *Coordinator) ReloadCatalog() {
	snapshot := match.Catalog(c.store.Catalog())
	c.catMu.Lock()
	c.catalog = snapshot
	c.catMu.Unlock()
}

// StartSession opens the camera and launches the capture loop. A second call
// while a session runs is refused.
func (c *Coordinator) StartSession(ctx context.Context) (uuid.UUID, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.cancel != nil {
		return uuid.Nil, domain.ErrSessionAlreadyRunning
	}

	if err := c.camera.Open(ctx, c.hints); err != nil {
		return uuid.Nil, domain.ErrCameraUnavailable.WithError(err)
	}

	c.ReloadCatalog()

	sessionCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.sessionID = uuid.New()

	c.wg.Add(1)
	go c.run(sessionCtx)

	c.logger.Info("recognition session started", "session_id", c.sessionID)
	return c.sessionID, nil
}

// StopSession cancels the capture loop and waits for it, and any in-flight
// analysis, to finish.
func (c *Coordinator) StopSession() error {
	c.sessionMu.Lock()
	if c.cancel == nil {
		c.sessionMu.Unlock()
		return domain.ErrNoSession
	}
	cancel := c.cancel
	c.cancel = nil
	id := c.sessionID
	c.sessionMu.Unlock()

	cancel()
	c.wg.Wait()

	c.logger.Info("recognition session stopped", "session_id", id)
	return nil
}

// Running reports whether a session is active.
func (c *Coordinator) Running() bool {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.cancel != nil
}

// Latest returns the most recently published result. A zero Sequence means
// nothing has been published yet.
func (c *Coordinator) Latest() Result {
	c.slotMu.Lock()
	defer c.slotMu.Unlock()
	return c.slot
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()
	defer func() {
		if err := c.camera.Release(); err != nil {
			c.logger.Warn("camera release failed", "error", err)
		}
	}()

	var frameCount int
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := c.camera.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("frame read failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}
		if frame == nil {
			// Stream ended on the camera's side.
			return
		}

		if c.onFrame != nil {
			c.onFrame(frame)
		}

		frameCount++
		if frameCount%c.frameSkip != 0 {
			continue
		}
		if !c.busy.CompareAndSwap(false, true) {
			// Previous analysis still running; this frame only feeds the
			// preview.
			continue
		}

		seq := c.seq.Add(1)
		c.wg.Add(1)
		// The worker outlives session cancellation on purpose: an analysis
		// already underway runs to completion and its result may still land.
		go c.analyze(context.WithoutCancel(ctx), seq, frame.Bytes)
	}
}

func (c *Coordinator) analyze(ctx context.Context, seq int64, image []byte) {
	defer c.wg.Done()
	defer c.busy.Store(false)

	faces, err := c.provider.DetectFaces(ctx, image)
	if err != nil {
		c.logger.Warn("face detection failed", "error", err, "sequence", seq)
		return
	}

	result := Result{Sequence: seq, At: time.Now()}
	switch {
	case len(faces) == 0:
		result.Match = domain.MatchResult{Outcome: domain.OutcomeNoFace}
	case len(faces) > 1:
		result.Match = domain.MatchResult{Outcome: domain.OutcomeAmbiguous}
	default:
		vec, err := c.provider.EmbedFace(ctx, image, faces[0].BoundingBox)
		if err != nil {
			c.logger.Warn("face embedding failed", "error", err, "sequence", seq)
			return
		}

		c.catMu.RLock()
		catalog := c.catalog
		c.catMu.RUnlock()

		result.Match = match.Match(vec, catalog, c.tolerance)
		if result.Match.Matched() {
			if identity, ok := c.store.Get(result.Match.IdentityID); ok {
				result.Identity = identity
			}
			_ = c.audit.Log(ctx, audit.Event{
				EventType:  audit.EventFaceMatched,
				IdentityID: result.Match.IdentityID,
				Success:    true,
				Metadata: map[string]string{
					"distance": result.Match.String(),
				},
			})
		}
	}

	c.publish(result)
}

// publish installs the result unless a newer sequence already landed. Workers
// can finish out of order; the slot only ever moves forward.
func (c *Coordinator) publish(r Result) {
	c.slotMu.Lock()
	if r.Sequence <= c.slot.Sequence {
		c.slotMu.Unlock()
		return
	}
	c.slot = r
	c.slotMu.Unlock()

	if c.onResult != nil {
		c.onResult(r)
	}
}
