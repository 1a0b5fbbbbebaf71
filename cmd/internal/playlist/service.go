package playlist

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

// CreateInput describes a new playlist.
type CreateInput struct {
	OwnerID     string
	Title       string
	Description string
	CategoryID  *string
	Now         time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Playlist, error) {
	const op = "playlist.Create"

	if strings.TrimSpace(in.Title) == "" {
		return Playlist{}, identity.ValidationError{Op: op, Fields: []string{"title is required"}}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ids.New(now)
	if err != nil {
		return Playlist{}, err
	}

	p := Playlist{
		ID:          id,
		OwnerID:     in.OwnerID,
		CategoryID:  in.CategoryID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (Playlist, error) {
	return s.store.ByID(ctx, id)
}

func (s *Service) ListMine(ctx context.Context, ownerID string) ([]Playlist, error) {
	list, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Playlist{}
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, callerID string, in UpdateInput) (Playlist, error) {
	const op = "playlist.Update"

	if err := s.requireOwner(ctx, op, in.ID, callerID); err != nil {
		return Playlist{}, err
	}
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}
	return s.store.Update(ctx, in)
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	const op = "playlist.Delete"

	if err := s.requireOwner(ctx, op, id, callerID); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) AddVideo(ctx context.Context, callerID, playlistID, videoID string) (Playlist, error) {
	const op = "playlist.AddVideo"

	if err := s.requireOwner(ctx, op, playlistID, callerID); err != nil {
		return Playlist{}, err
	}
	if err := s.store.AddVideo(ctx, playlistID, videoID); err != nil {
		return Playlist{}, err
	}
	return s.store.ByID(ctx, playlistID)
}

func (s *Service) RemoveVideo(ctx context.Context, callerID, playlistID, videoID string) (Playlist, error) {
	const op = "playlist.RemoveVideo"

	if err := s.requireOwner(ctx, op, playlistID, callerID); err != nil {
		return Playlist{}, err
	}
	if err := s.store.RemoveVideo(ctx, playlistID, videoID); err != nil {
		return Playlist{}, err
	}
	return s.store.ByID(ctx, playlistID)
}

func (s *Service) requireOwner(ctx context.Context, op, id, callerID string) error {
	p, err := s.store.ByID(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != callerID {
		return identity.OpError{Op: op, Kind: identity.ErrUnauthorized, Msg: "not the owner"}
	}
	return nil
}
