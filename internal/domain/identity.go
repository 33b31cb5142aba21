package domain

import (
	"strings"
	"time"
)

// Identity represents a registered resident: profile fields plus the face
// embedding produced at registration time.
type Identity struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"` // human-readable roll number, unique
	Name      string    `json:"name"`
	Hostel    string    `json:"hostel"`
	Room      string    `json:"room"`
	Contact   string    `json:"contact"`
	Embedding []float64 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the required profile fields for registration.
func (i *Identity) Validate() error {
	if strings.TrimSpace(i.Key) == "" {
		return ErrValidationFailed.WithError(errRequired("key"))
	}
	if strings.TrimSpace(i.Name) == "" {
		return ErrValidationFailed.WithError(errRequired("name"))
	}
	return nil
}

type requiredFieldError string

func errRequired(field string) error { return requiredFieldError(field) }

func (e requiredFieldError) Error() string { return string(e) + " is required" }
