package video

import (
	"context"
	"strings"
	"time"

	"github.com/anujp125/Drishya/cmd/identity"
	"github.com/anujp125/Drishya/cmd/internal/ids"
)

// Service enforces validation and ownership on top of the store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// PublishInput carries the metadata of an already-uploaded video.
type PublishInput struct {
	OwnerID         string
	Title           string
	Description     string
	CategoryID      *string
	VideoURL        string
	ThumbnailURL    string
	DurationSeconds float64
	Now             time.Time
}

// Publish records a new video. New videos start published with zero views.
func (s *Service) Publish(ctx context.Context, in PublishInput) (Video, error) {
	const op = "video.Publish"

	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title is required")
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		missing = append(missing, "video file is required")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		missing = append(missing, "owner is required")
	}
	if len(missing) > 0 {
		return Video{}, identity.ValidationError{Op: op, Fields: missing}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ids.New(now)
	if err != nil {
		return Video{}, err
	}

	v := Video{
		ID:              id,
		OwnerID:         in.OwnerID,
		CategoryID:      in.CategoryID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		VideoURL:        in.VideoURL,
		ThumbnailURL:    in.ThumbnailURL,
		DurationSeconds: in.DurationSeconds,
		IsPublished:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return Video{}, err
	}
	return v, nil
}

// Get returns one video. Drafts are visible to their owner only; everyone
// else sees NotFound rather than a hint that the video exists.
func (s *Service) Get(ctx context.Context, id, viewerID string) (Video, error) {
	const op = "video.Get"

	v, err := s.store.ByID(ctx, id)
	if err != nil {
		return Video{}, err
	}
	if !v.IsPublished && v.OwnerID != viewerID {
		return Video{}, identity.NotFoundError{Op: op, Resource: "video"}
	}
	return v, nil
}

// List returns one page of videos visible to the viewer.
func (s *Service) List(ctx context.Context, in ListInput) (Page, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	page, err := s.store.List(ctx, in)
	if err != nil {
		return Page{}, err
	}
	if page.Items == nil {
		page.Items = []Video{}
	}
	return page, nil
}

// Update edits a video's details. Only the owner may edit.
func (s *Service) Update(ctx context.Context, callerID string, in UpdateInput) (Video, error) {
	const op = "video.Update"

	if err := s.requireOwner(ctx, op, in.ID, callerID); err != nil {
		return Video{}, err
	}
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}
	return s.store.Update(ctx, in)
}

// TogglePublish flips the published flag. Only the owner may toggle.
func (s *Service) TogglePublish(ctx context.Context, callerID, id string) (Video, error) {
	const op = "video.TogglePublish"

	v, err := s.store.ByID(ctx, id)
	if err != nil {
		return Video{}, err
	}
	if v.OwnerID != callerID {
		return Video{}, identity.OpError{Op: op, Kind: identity.ErrUnauthorized, Msg: "not the owner"}
	}
	next := !v.IsPublished
	return s.store.Update(ctx, UpdateInput{ID: id, IsPublished: &next, Now: time.Now().UTC()})
}

// Delete removes a video and returns the deleted record so the caller can
// release its stored media.
func (s *Service) Delete(ctx context.Context, callerID, id string) (Video, error) {
	const op = "video.Delete"

	v, err := s.store.ByID(ctx, id)
	if err != nil {
		return Video{}, err
	}
	if v.OwnerID != callerID {
		return Video{}, identity.OpError{Op: op, Kind: identity.ErrUnauthorized, Msg: "not the owner"}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return Video{}, err
	}
	return v, nil
}

// RecordView bumps the view counter of a published video.
func (s *Service) RecordView(ctx context.Context, id string) (int64, error) {
	const op = "video.RecordView"

	v, err := s.store.ByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !v.IsPublished {
		return 0, identity.NotFoundError{Op: op, Resource: "video"}
	}
	return s.store.IncrementViews(ctx, id)
}

func (s *Service) requireOwner(ctx context.Context, op, id, callerID string) error {
	v, err := s.store.ByID(ctx, id)
	if err != nil {
		return err
	}
	if v.OwnerID != callerID {
		return identity.OpError{Op: op, Kind: identity.ErrUnauthorized, Msg: "not the owner"}
	}
	return nil
}
