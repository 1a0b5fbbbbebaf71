package video

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anujp125/Drishya/cmd/identity"
)

type memVideoStore struct {
	mu     sync.Mutex
	videos map[string]*Video
}

func newMemVideoStore() *memVideoStore {
	return &memVideoStore{videos: make(map[string]*Video)}
}

func (s *memVideoStore) Create(_ context.Context, v Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := v
	s.videos[v.ID] = &cp
	return nil
}

func (s *memVideoStore) ByID(_ context.Context, id string) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.videos[id]; ok {
		return *v, nil
	}
	return Video{}, identity.NotFoundError{Op: "mem.ByID", Resource: "video"}
}

func (s *memVideoStore) List(_ context.Context, in ListInput) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Video
	for _, v := range s.videos {
		if !v.IsPublished && v.OwnerID != in.ViewerID {
			continue
		}
		if in.OwnerID != "" && v.OwnerID != in.OwnerID {
			continue
		}
		if in.CategoryID != "" && (v.CategoryID == nil || *v.CategoryID != in.CategoryID) {
			continue
		}
		if q := strings.ToLower(in.Search); q != "" {
			if !strings.Contains(strings.ToLower(v.Title), q) &&
				!strings.Contains(strings.ToLower(v.Description), q) {
				continue
			}
		}
		all = append(all, *v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	page := Page{Total: int64(len(all)), Page: in.Page, Limit: in.Limit}
	start := (in.Page - 1) * in.Limit
	if start < len(all) {
		end := start + in.Limit
		if end > len(all) {
			end = len(all)
		}
		page.Items = all[start:end]
	}
	return page, nil
}

func (s *memVideoStore) Update(_ context.Context, in UpdateInput) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[in.ID]
	if !ok {
		return Video{}, identity.NotFoundError{Op: "mem.Update", Resource: "video"}
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		v.Title = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		v.Description = d
	}
	if in.CategoryID != nil {
		v.CategoryID = in.CategoryID
	}
	if in.ThumbnailURL != "" {
		v.ThumbnailURL = in.ThumbnailURL
	}
	if in.IsPublished != nil {
		v.IsPublished = *in.IsPublished
	}
	v.UpdatedAt = in.Now
	return *v, nil
}

func (s *memVideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return identity.NotFoundError{Op: "mem.Delete", Resource: "video"}
	}
	delete(s.videos, id)
	return nil
}

func (s *memVideoStore) IncrementViews(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return 0, identity.NotFoundError{Op: "mem.IncrementViews", Resource: "video"}
	}
	v.Views++
	return v.Views, nil
}

func publishOne(t *testing.T, svc *Service, owner, title string, at time.Time) Video {
	t.Helper()
	v, err := svc.Publish(context.Background(), PublishInput{
		OwnerID:  owner,
		Title:    title,
		VideoURL: "https://cdn.test/videos/" + title + ".mp4",
		Now:      at,
	})
	require.NoError(t, err)
	return v
}

func TestPublishValidation(t *testing.T) {
	svc := NewService(newMemVideoStore())

	_, err := svc.Publish(context.Background(), PublishInput{OwnerID: "a"})
	var vErr identity.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
}

func TestGetHidesDraftsFromStrangers(t *testing.T) {
	store := newMemVideoStore()
	svc := NewService(store)
	ctx := context.Background()

	v := publishOne(t, svc, "owner-1", "draft", time.Now().UTC())
	hidden := false
	_, err := store.Update(ctx, UpdateInput{ID: v.ID, IsPublished: &hidden, Now: time.Now().UTC()})
	require.NoError(t, err)

	_, err = svc.Get(ctx, v.ID, "owner-1")
	assert.NoError(t, err)

	_, err = svc.Get(ctx, v.ID, "stranger")
	assert.True(t, identity.IsNotFound(err))

	_, err = svc.Get(ctx, v.ID, "")
	assert.True(t, identity.IsNotFound(err))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc := NewService(newMemVideoStore())
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		publishOne(t, svc, "owner-1", "video-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour))
	}

	page, err := svc.List(context.Background(), ListInput{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "video-e", page.Items[0].Title)
	assert.Equal(t, "video-d", page.Items[1].Title)

	page, err = svc.List(context.Background(), ListInput{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "video-a", page.Items[0].Title)
}

func TestListSearchFilter(t *testing.T) {
	svc := NewService(newMemVideoStore())
	now := time.Now().UTC()
	publishOne(t, svc, "owner-1", "Gopher tutorial", now)
	publishOne(t, svc, "owner-2", "Cooking show", now.Add(time.Minute))

	page, err := svc.List(context.Background(), ListInput{Search: "gopher", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Gopher tutorial", page.Items[0].Title)

	page, err = svc.List(context.Background(), ListInput{OwnerID: "owner-2", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Cooking show", page.Items[0].Title)
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	svc := NewService(newMemVideoStore())
	page, err := svc.List(context.Background(), ListInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	svc := NewService(newMemVideoStore())
	v := publishOne(t, svc, "owner-1", "mine", time.Now().UTC())
	ctx := context.Background()

	_, err := svc.Update(ctx, "stranger", UpdateInput{ID: v.ID, Title: "stolen"})
	assert.True(t, identity.IsUnauthorized(err))

	updated, err := svc.Update(ctx, "owner-1", UpdateInput{ID: v.ID, Title: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
}

func TestTogglePublish(t *testing.T) {
	svc := NewService(newMemVideoStore())
	v := publishOne(t, svc, "owner-1", "mine", time.Now().UTC())
	ctx := context.Background()

	toggled, err := svc.TogglePublish(ctx, "owner-1", v.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsPublished)

	toggled, err = svc.TogglePublish(ctx, "owner-1", v.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsPublished)

	_, err = svc.TogglePublish(ctx, "stranger", v.ID)
	assert.True(t, identity.IsUnauthorized(err))
}

func TestDeleteRequiresOwnershipAndReturnsRecord(t *testing.T) {
	svc := NewService(newMemVideoStore())
	v := publishOne(t, svc, "owner-1", "mine", time.Now().UTC())
	ctx := context.Background()

	_, err := svc.Delete(ctx, "stranger", v.ID)
	assert.True(t, identity.IsUnauthorized(err))

	deleted, err := svc.Delete(ctx, "owner-1", v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.VideoURL, deleted.VideoURL)

	_, err = svc.Get(ctx, v.ID, "owner-1")
	assert.True(t, identity.IsNotFound(err))
}

func TestRecordViewCountsOnlyPublished(t *testing.T) {
	store := newMemVideoStore()
	svc := NewService(store)
	v := publishOne(t, svc, "owner-1", "mine", time.Now().UTC())
	ctx := context.Background()

	views, err := svc.RecordView(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	views, err = svc.RecordView(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)

	hidden := false
	_, err = store.Update(ctx, UpdateInput{ID: v.ID, IsPublished: &hidden, Now: time.Now().UTC()})
	require.NoError(t, err)

	_, err = svc.RecordView(ctx, v.ID)
	assert.True(t, identity.IsNotFound(err))
}
