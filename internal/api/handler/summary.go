package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hostelgate/hostelgate/internal/summary"
)

// SummaryHandler renders activity reports
type SummaryHandler struct {
	summarizer *summary.Summarizer
	logger     *slog.Logger
}

// NewSummaryHandler creates a new SummaryHandler instance
func NewSummaryHandler(summarizer *summary.Summarizer, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{summarizer: summarizer, logger: logger}
}

// SummaryResponse wraps one generated report.
type SummaryResponse struct {
	Summary string `json:"summary"`
	Days    int    `json:"days"`
}

// Identity GET /v1/summary/identity/:id?days= - one resident's report
func (h *SummaryHandler) Identity(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	days := c.QueryInt("days", 7)
	if days < 1 {
		days = 1
	}

	text, err := h.summarizer.Identity(id, days)
	if err != nil {
		return err
	}
	return c.JSON(SummaryResponse{Summary: text, Days: days})
}

// Group GET /v1/summary?days=&group= - hostel-wide report; empty group means
// everyone
func (h *SummaryHandler) Group(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days < 1 {
		days = 1
	}

	text, err := h.summarizer.Group(c.Query("group"), days)
	if err != nil {
		return err
	}
	return c.JSON(SummaryResponse{Summary: text, Days: days})
}
