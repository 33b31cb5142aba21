package recognizer

import (
	"context"

	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/domain"
)

// Register enrolls a new identity from a reference photo. The photo must hold
// exactly one detectable face; the resulting embedding is stored with the
// profile and the live catalog snapshot is refreshed so a running session
// recognizes the person immediately.
func (c *Coordinator) Register(ctx context.Context, image []byte, identity *domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}

	faces, err := c.provider.DetectFaces(ctx, image)
	if err != nil {
		c.auditRegistration(ctx, identity, false, err)
		return domain.ErrInvalidImage.WithError(err)
	}
	if len(faces) == 0 {
		c.auditRegistration(ctx, identity, false, domain.ErrNoFaceDetected)
		return domain.ErrNoFaceDetected
	}
	if len(faces) > 1 {
		c.auditRegistration(ctx, identity, false, domain.ErrMultipleFaces)
		return domain.ErrMultipleFaces
	}

	vec, err := c.provider.EmbedFace(ctx, image, faces[0].BoundingBox)
	if err != nil {
		c.auditRegistration(ctx, identity, false, err)
		return domain.ErrInternal.WithError(err)
	}
	identity.Embedding = vec

	if err := c.store.Add(identity); err != nil {
		c.auditRegistration(ctx, identity, false, err)
		return err
	}

	c.ReloadCatalog()
	c.auditRegistration(ctx, identity, true, nil)

	c.logger.Info("identity registered",
		"identity_id", identity.ID, "key", identity.Key)
	return nil
}

// Deregister removes an identity and its log history, then refreshes the
// catalog snapshot.
func (c *Coordinator) Deregister(ctx context.Context, id int64) error {
	if err := c.store.Delete(id); err != nil {
		return err
	}
	c.ReloadCatalog()

	_ = c.audit.Log(ctx, audit.Event{
		EventType:  audit.EventIdentityDeleted,
		IdentityID: id,
		Success:    true,
	})
	return nil
}

func (c *Coordinator) auditRegistration(ctx context.Context, identity *domain.Identity, ok bool, cause error) {
	event := audit.Event{
		EventType:   audit.EventIdentityRegistered,
		IdentityID:  identity.ID,
		IdentityKey: identity.Key,
		Success:     ok,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	_ = c.audit.Log(ctx, event)
}
