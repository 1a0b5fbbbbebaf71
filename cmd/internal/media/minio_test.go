package media

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	buckets map[string]bool
	objects map[string][]byte
	puts    []string
	removed []string
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{
		buckets: make(map[string]bool),
		objects: make(map[string][]byte),
	}
}

func (f *fakeObjectAPI) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeObjectAPI) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

func (f *fakeObjectAPI) PutObject(_ context.Context, _, key string, r io.Reader, size int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[key] = data
	f.puts = append(f.puts, key)
	return minio.UploadInfo{Key: key, Size: size}, nil
}

func (f *fakeObjectAPI) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func newTestStore(t *testing.T, cfg Config) (*ObjectStore, *fakeObjectAPI) {
	t.Helper()
	api := newFakeObjectAPI()
	s, err := newObjectStore(context.Background(), api, cfg)
	require.NoError(t, err)
	return s, api
}

func TestNewObjectStoreCreatesMissingBucket(t *testing.T) {
	_, api := newTestStore(t, Config{Bucket: "drishya-media"})
	assert.True(t, api.buckets["drishya-media"])
}

func TestUploadAvatar(t *testing.T) {
	s, api := newTestStore(t, Config{Bucket: "m", PublicBaseURL: "https://cdn.example.com/"})

	payload := []byte("fake-png-bytes")
	obj, err := s.Upload(context.Background(), UploadInput{
		Category:    CategoryAvatar,
		Reader:      bytes.NewReader(payload),
		Size:        int64(len(payload)),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Key, "avatars/"))
	assert.True(t, strings.HasSuffix(obj.Key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+obj.Key, obj.URL)
	assert.Equal(t, payload, api.objects[obj.Key])
}

func TestUploadRejectsBadInput(t *testing.T) {
	s, _ := newTestStore(t, Config{Bucket: "m"})
	ctx := context.Background()

	_, err := s.Upload(ctx, UploadInput{Category: CategoryAvatar, Reader: strings.NewReader("x"), Size: 1, ContentType: "application/zip"})
	assert.ErrorIs(t, err, ErrContentTypeBlocked)

	_, err = s.Upload(ctx, UploadInput{Category: CategoryAvatar, Reader: strings.NewReader(""), Size: 0, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = s.Upload(ctx, UploadInput{Category: CategoryAvatar, Reader: strings.NewReader("x"), Size: maxAvatarBytes + 1, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.Upload(ctx, UploadInput{Category: Category("docs"), Reader: strings.NewReader("x"), Size: 1, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestUploadVideoContentTypes(t *testing.T) {
	s, _ := newTestStore(t, Config{Bucket: "m"})
	ctx := context.Background()

	_, err := s.Upload(ctx, UploadInput{Category: CategoryVideo, Reader: strings.NewReader("v"), Size: 1, ContentType: "video/mp4"})
	assert.NoError(t, err)

	_, err = s.Upload(ctx, UploadInput{Category: CategoryVideo, Reader: strings.NewReader("v"), Size: 1, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrContentTypeBlocked)
}

func TestRemoveAndKeyFromURL(t *testing.T) {
	s, api := newTestStore(t, Config{Bucket: "m", PublicBaseURL: "https://cdn.example.com"})

	obj, err := s.Upload(context.Background(), UploadInput{
		Category:    CategoryCover,
		Reader:      strings.NewReader("img"),
		Size:        3,
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	key := s.KeyFromURL(obj.URL)
	assert.Equal(t, obj.Key, key)
	assert.Equal(t, "", s.KeyFromURL("https://elsewhere.example.com/x.jpg"))

	require.NoError(t, s.Remove(context.Background(), key))
	_, ok := api.objects[key]
	assert.False(t, ok)

	// Blank keys are a no-op.
	require.NoError(t, s.Remove(context.Background(), ""))
}

func TestPublicURLFallsBackToBucketPath(t *testing.T) {
	s, _ := newTestStore(t, Config{Bucket: "m"})
	obj, err := s.Upload(context.Background(), UploadInput{
		Category:    CategoryThumbnail,
		Reader:      strings.NewReader("t"),
		Size:        1,
		ContentType: "image/webp",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.URL, "/m/thumbnails/"))
}
