package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/store"
	"github.com/hostelgate/hostelgate/internal/ws"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Registrar is the enrollment side of the recognition coordinator.
type Registrar interface {
	Register(ctx context.Context, image []byte, identity *domain.Identity) error
	Deregister(ctx context.Context, id int64) error
}

// IdentityHandler handles resident registry requests
type IdentityHandler struct {
	registrar Registrar
	store     *store.Store
	hub       *ws.Hub
	logger    *slog.Logger
}

// NewIdentityHandler creates a new IdentityHandler instance
func NewIdentityHandler(registrar Registrar, s *store.Store, hub *ws.Hub, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		registrar: registrar,
		store:     s,
		hub:       hub,
		logger:    logger,
	}
}

// IdentityResponse is the registry view of a resident. The embedding never
// leaves the process.
type IdentityResponse struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	Hostel    string `json:"hostel"`
	Room      string `json:"room"`
	Contact   string `json:"contact,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:        identity.ID,
		Key:       identity.Key,
		Name:      identity.Name,
		Hostel:    identity.Hostel,
		Room:      identity.Room,
		Contact:   identity.Contact,
		CreatedAt: identity.CreatedAt.Format(time.RFC3339),
	}
}

// Register POST /v1/identities - register a new resident
func (h *IdentityHandler) Register(c *fiber.Ctx) error {
	identity := &domain.Identity{
		Key:     strings.TrimSpace(c.FormValue("key")),
		Name:    strings.TrimSpace(c.FormValue("name")),
		Hostel:  strings.TrimSpace(c.FormValue("hostel")),
		Room:    strings.TrimSpace(c.FormValue("room")),
		Contact: strings.TrimSpace(c.FormValue("contact")),
	}
	if err := identity.Validate(); err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("register identity: %w", err)
	}

	if err := h.registrar.Register(c.Context(), imageBytes, identity); err != nil {
		return err
	}

	h.hub.Broadcast(ws.EventIdentityRegistered, toIdentityResponse(*identity))

	return c.Status(fiber.StatusCreated).JSON(toIdentityResponse(*identity))
}

// List GET /v1/identities - list all residents
func (h *IdentityHandler) List(c *fiber.Ctx) error {
	identities := h.store.List()
	out := make([]IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		out = append(out, toIdentityResponse(identity))
	}
	return c.JSON(fiber.Map{"identities": out})
}

// Get GET /v1/identities/:id - fetch one resident
func (h *IdentityHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	identity, ok := h.store.Get(id)
	if !ok {
		return domain.ErrIdentityNotFound
	}
	return c.JSON(toIdentityResponse(*identity))
}

// Delete DELETE /v1/identities/:id - remove a resident and their log history
func (h *IdentityHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.registrar.Deregister(c.Context(), id); err != nil {
		return err
	}

	h.hub.Broadcast(ws.EventIdentityDeleted, fiber.Map{"id": id})

	return c.SendStatus(fiber.StatusNoContent)
}

// Logs GET /v1/identities/:id/logs - one resident's entry/exit history
func (h *IdentityHandler) Logs(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, ok := h.store.Get(id); !ok {
		return domain.ErrIdentityNotFound
	}

	limit := c.QueryInt("limit", 50)
	return c.JSON(fiber.Map{"logs": h.store.LogsFor(id, limit)})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrBadRequest.WithError(fmt.Errorf("invalid identity id %q", c.Params("id")))
	}
	return id, nil
}

// extractAndValidateImage pulls the uploaded photo out of the multipart form
// and enforces size and content-type limits before any provider sees it.
func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image file is required"))
	}

	if fileHeader.Size > maxImageSize {
		return nil, domain.ErrValidationFailed.WithError(
			fmt.Errorf("image exceeds maximum size of %d bytes", maxImageSize))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(
			fmt.Errorf("unsupported content type %s", contentType))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	defer func() {
		_ = file.Close()
	}()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	if len(imageBytes) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image file is empty"))
	}

	return imageBytes, nil
}
