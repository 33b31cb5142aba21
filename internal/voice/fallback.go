package voice

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/store"
)

// rollNumberPattern matches institutional roll numbers of the form one letter
// followed by seven digits, e.g. "b2021034".
var rollNumberPattern = regexp.MustCompile(`\b[a-zA-Z]\d{7}\b`)

// Fallback identifies a person by voice when face recognition cannot. It asks
// for a roll number or name, resolves the utterance against the registry, and
// requires a spoken confirmation before the identification counts.
type Fallback struct {
	store  *store.Store
	speech Speech
	audit  audit.Logger
	logger *slog.Logger

	attempts      int
	listenTimeout time.Duration
}

// NewFallback builds the voice identification flow. attempts below 1 is
// raised to 1.
func NewFallback(s *store.Store, speech Speech, auditLogger audit.Logger, logger *slog.Logger, attempts int, listenTimeout time.Duration) *Fallback {
	if attempts < 1 {
		attempts = 1
	}
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{
		store:         s,
		speech:        speech,
		audit:         auditLogger,
		logger:        logger.With("component", "voice"),
		attempts:      attempts,
		listenTimeout: listenTimeout,
	}
}

// Identify runs the interactive flow: up to the configured number of
// attempts, each one listening for an utterance, resolving it to a registered
// identity, and asking the speaker to confirm. It never mutates the store;
// the caller decides what to do with the confirmed identity.
func (f *Fallback) Identify(ctx context.Context) (*domain.Identity, error) {
	f.speech.Speak(ctx, "Face not recognized. Please say your roll number or your name.")

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt > 1 {
			f.speech.Speak(ctx, "Let's try again. Say your roll number or your name.")
		}

		heard, ok := f.speech.Listen(ctx, f.listenTimeout, 2*f.listenTimeout)
		if !ok {
			f.logger.Info("voice attempt heard nothing", "attempt", attempt)
			f.speech.Speak(ctx, "I didn't catch that.")
			continue
		}

		identity := f.resolve(heard)
		if identity == nil {
			f.logger.Info("utterance matched nobody", "attempt", attempt, "heard", heard)
			f.speech.Speak(ctx, "I couldn't find anyone by that.")
			continue
		}

		if !f.confirm(ctx, identity) {
			f.logger.Info("identification declined", "attempt", attempt, "identity_id", identity.ID)
			continue
		}

		f.speech.Speak(ctx, "Thank you, "+identity.Name+".")
		_ = f.audit.Log(ctx, audit.Event{
			EventType:   audit.EventVoiceIdentified,
			IdentityID:  identity.ID,
			IdentityKey: identity.Key,
			Success:     true,
		})
		return identity, nil
	}

	f.speech.Speak(ctx, "Sorry, I could not identify you. Please contact the warden.")
	_ = f.audit.Log(ctx, audit.Event{
		EventType: audit.EventVoiceIdentified,
		Success:   false,
		Error:     domain.ErrVoiceFailed.Message,
	})
	return nil, domain.ErrVoiceFailed
}

// resolve maps an utterance to an identity: an embedded roll number wins,
// otherwise the first registered display name (by ascending ID) contained in
// the utterance.
func (f *Fallback) resolve(heard string) *domain.Identity {
	normalized := strings.ToLower(strings.TrimSpace(heard))

	if roll := rollNumberPattern.FindString(normalized); roll != "" {
		if identity, ok := f.store.GetByKey(roll); ok {
			return identity
		}
	}

	for _, identity := range f.store.List() {
		name := strings.ToLower(identity.Name)
		if name != "" && strings.Contains(normalized, name) {
			out := identity
			return &out
		}
	}
	return nil
}

// confirm reads back the resolved identity and listens for assent. Anything
// other than a clear yes cancels.
func (f *Fallback) confirm(ctx context.Context, identity *domain.Identity) bool {
	f.speech.Speak(ctx, "I found "+identity.Name+", roll number "+identity.Key+". Say yes to confirm.")

	answer, ok := f.speech.Listen(ctx, f.listenTimeout, f.listenTimeout)
	if !ok {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return strings.Contains(answer, "yes") || strings.Contains(answer, "confirm")
}
