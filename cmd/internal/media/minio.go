package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the object store connection settings.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// objectAPI is the slice of the minio client the store uses. Narrowed so
// tests can substitute a fake without a running server.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

type ObjectStore struct {
	api           objectAPI
	bucket        string
	publicBaseURL string
}

var _ Store = (*ObjectStore)(nil)

// NewObjectStore connects to the object store and makes sure the bucket
// exists. The endpoint may carry a scheme; it wins over cfg.UseSSL.
func NewObjectStore(ctx context.Context, cfg Config) (*ObjectStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	secure := cfg.UseSSL
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("media: connect %q: %w", endpoint, err)
	}
	return newObjectStore(ctx, client, cfg)
}

func newObjectStore(ctx context.Context, api objectAPI, cfg Config) (*ObjectStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("media: bucket name is required")
	}
	s := &ObjectStore{
		api:           api,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("media: check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("media: create bucket %q: %w", s.bucket, err)
	}
	return nil
}

// Upload validates the file against its category limits and stores it
// under "<category>/<uuid><ext>".
func (s *ObjectStore) Upload(ctx context.Context, in UploadInput) (Object, error) {
	if err := validateUpload(in); err != nil {
		return Object{}, err
	}

	key := path.Join(string(in.Category), uuid.NewString()+extensionFor(in.ContentType))
	info, err := s.api.PutObject(ctx, s.bucket, key, in.Reader, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("media: put %q: %w", key, err)
	}

	return Object{
		Key:         key,
		URL:         s.publicURL(key),
		Size:        info.Size,
		ContentType: in.ContentType,
	}, nil
}

// Remove deletes a stored object. Unknown keys are not an error.
func (s *ObjectStore) Remove(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("media: remove %q: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) publicURL(key string) string {
	if s.publicBaseURL == "" {
		return "/" + path.Join(s.bucket, key)
	}
	return s.publicBaseURL + "/" + key
}

// KeyFromURL recovers the object key from a URL produced by this store.
// Returns "" when the URL does not belong to it.
func (s *ObjectStore) KeyFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if s.publicBaseURL != "" && strings.HasPrefix(rawURL, s.publicBaseURL+"/") {
		return strings.TrimPrefix(rawURL, s.publicBaseURL+"/")
	}
	local := "/" + s.bucket + "/"
	if strings.HasPrefix(rawURL, local) {
		return strings.TrimPrefix(rawURL, local)
	}
	return ""
}
