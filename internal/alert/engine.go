package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/store"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is one triggered curfew violation report for a resident.
type Alert struct {
	ID          uuid.UUID `json:"id"`
	IdentityID  int64     `json:"identity_id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Hostel      string    `json:"hostel"`
	Room        string    `json:"room"`
	Count       int       `json:"count"`
	Threshold   int       `json:"threshold"`
	Severity    Severity  `json:"severity"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Engine evaluates curfew conditions over the entry/exit log: a resident with
// at least `threshold` late-night movements inside the window trips an alert.
// A per-resident cooldown keeps the same violation from re-alerting every
// scan.
type Engine struct {
	store     *store.Store
	threshold int
	window    time.Duration
	cooldown  time.Duration
	now       func() time.Time

	mu            sync.Mutex
	lastTriggered map[int64]time.Time
}

// NewEngine builds a curfew engine. threshold below 1 is raised to 1.
func NewEngine(s *store.Store, threshold int, window, cooldown time.Duration) *Engine {
	if threshold < 1 {
		threshold = 1
	}
	return &Engine{
		store:         s,
		threshold:     threshold,
		window:        window,
		cooldown:      cooldown,
		now:           time.Now,
		lastTriggered: make(map[int64]time.Time),
	}
}

// Evaluate scans the log once and returns the alerts that trip now. Residents
// still inside their cooldown are skipped without being counted as triggered
// again.
func (e *Engine) Evaluate() []Alert {
	now := e.now()
	windowStart := now.Add(-e.window)

	counts := make(map[int64]int)
	latest := make(map[int64]domain.LogEntry)
	for _, entry := range e.store.LogsAll(0) {
		if entry.Timestamp.Before(windowStart) {
			continue
		}
		if !entry.LateNight() {
			continue
		}
		counts[entry.IdentityID]++
		if entry.Timestamp.After(latest[entry.IdentityID].Timestamp) {
			latest[entry.IdentityID] = entry
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var alerts []Alert
	for identityID, count := range counts {
		if count < e.threshold {
			continue
		}
		if last, ok := e.lastTriggered[identityID]; ok && now.Before(last.Add(e.cooldown)) {
			continue
		}

		severity := SeverityWarning
		if count >= 2*e.threshold {
			severity = SeverityCritical
		}

		sample := latest[identityID]
		alerts = append(alerts, Alert{
			ID:          uuid.New(),
			IdentityID:  identityID,
			Name:        sample.Name,
			Key:         sample.Key,
			Hostel:      sample.Hostel,
			Room:        sample.Room,
			Count:       count,
			Threshold:   e.threshold,
			Severity:    severity,
			WindowStart: windowStart,
			WindowEnd:   now,
			TriggeredAt: now,
		})
		e.lastTriggered[identityID] = now
	}

	return alerts
}
