package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/recognizer"
	"github.com/hostelgate/hostelgate/internal/store"
	"github.com/hostelgate/hostelgate/internal/ws"
)

// VoiceIdentifier runs the spoken fallback flow. Nil when no speech service
// is configured.
type VoiceIdentifier interface {
	Identify(ctx context.Context) (*domain.Identity, error)
}

// RecognitionHandler exposes the live recognition session and action logging
type RecognitionHandler struct {
	coordinator *recognizer.Coordinator
	store       *store.Store
	voice       VoiceIdentifier
	hub         *ws.Hub
	audit       audit.Logger
	logger      *slog.Logger
}

// NewRecognitionHandler creates a new RecognitionHandler instance
func NewRecognitionHandler(coordinator *recognizer.Coordinator, s *store.Store, voice VoiceIdentifier, hub *ws.Hub, auditLogger audit.Logger, logger *slog.Logger) *RecognitionHandler {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &RecognitionHandler{
		coordinator: coordinator,
		store:       s,
		voice:       voice,
		hub:         hub,
		audit:       auditLogger,
		logger:      logger,
	}
}

// StatusResponse is the published recognition state the kiosk polls.
type StatusResponse struct {
	Running bool              `json:"running"`
	Latest  recognizer.Result `json:"latest"`
}

// Status GET /v1/recognition - latest published result
func (h *RecognitionHandler) Status(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Running: h.coordinator.Running(),
		Latest:  h.coordinator.Latest(),
	})
}

// StartSession POST /v1/recognition/session - open the camera and start
// recognizing
func (h *RecognitionHandler) StartSession(c *fiber.Ctx) error {
	sessionID, err := h.coordinator.StartSession(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session_id": sessionID})
}

// StopSession DELETE /v1/recognition/session - stop the running session
func (h *RecognitionHandler) StopSession(c *fiber.Ctx) error {
	if err := h.coordinator.StopSession(); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type logRequest struct {
	IdentityID int64  `json:"identity_id"`
	Action     string `json:"action"`
}

// Log POST /v1/logs - record an entry/exit action for a resident
func (h *RecognitionHandler) Log(c *fiber.Ctx) error {
	var req logRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	action, err := domain.ParseAction(req.Action)
	if err != nil {
		return err
	}

	entry, err := h.store.Log(req.IdentityID, action)
	if err != nil {
		return err
	}

	h.hub.Broadcast(ws.EventLogCreated, entry)
	_ = h.audit.Log(c.Context(), audit.Event{
		EventType:   audit.EventActionLogged,
		IdentityID:  entry.IdentityID,
		IdentityKey: entry.Key,
		Success:     true,
		Metadata:    map[string]string{"action": string(action)},
	})

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// AllLogs GET /v1/logs - entry/exit history across all residents
func (h *RecognitionHandler) AllLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	return c.JSON(fiber.Map{"logs": h.store.LogsAll(limit)})
}

type voiceRequest struct {
	Action string `json:"action,omitempty"`
}

// VoiceIdentify POST /v1/voice/identify - run the spoken fallback. Only
// allowed while the camera has no current match; an optional action in the
// body is logged once the speaker confirms their identity.
func (h *RecognitionHandler) VoiceIdentify(c *fiber.Ctx) error {
	if h.voice == nil {
		return domain.ErrVoiceUnavailable
	}
	if h.coordinator.Latest().Match.Matched() {
		return domain.ErrIdentityRecognized
	}

	var req voiceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}
	var action domain.Action
	if req.Action != "" {
		var err error
		if action, err = domain.ParseAction(req.Action); err != nil {
			return err
		}
	}

	identity, err := h.voice.Identify(c.Context())
	if err != nil {
		return err
	}

	resp := fiber.Map{"identity": toIdentityResponse(*identity)}
	if action != "" {
		entry, err := h.store.Log(identity.ID, action)
		if err != nil {
			return err
		}
		h.hub.Broadcast(ws.EventLogCreated, entry)
		resp["log"] = entry
	}

	return c.JSON(resp)
}
