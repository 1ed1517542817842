package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// ErrInvalidImage marks a payload that could not be decoded as an image.
var ErrInvalidImage = errors.New("invalid image data")

// MediaStore holds uploaded avatars. Upload accepts a raw image (a
// base64 data URL, as submitted by clients) and returns the stored object's
// id and public URL; Destroy removes a previously uploaded object.
type MediaStore interface {
	Upload(ctx context.Context, rawImage string) (Media, error)
	Destroy(ctx context.Context, id string) error
}

type Media struct {
	ID  string
	URL string
}

type gcsMediaStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSMediaStore(ctx context.Context) (MediaStore, error) {
	bucket := os.Getenv("GCS_BUCKET")
	credentialsPath := os.Getenv("CREDENTIALS_FILE_LOCATION")
	if bucket == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET env var")
	}

	var opts []option.ClientOption
	if credentialsPath != "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsPath)))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &gcsMediaStore{client: client, bucket: bucket}, nil
}

func (s *gcsMediaStore) Upload(ctx context.Context, rawImage string) (Media, error) {
	data, contentType, err := decodeDataURL(rawImage)
	if err != nil {
		return Media{}, err
	}

	ext := extensionFor(contentType)
	objectName := fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Media{}, fmt.Errorf("upload write: %w", err)
	}
	if err := w.Close(); err != nil {
		return Media{}, fmt.Errorf("upload close: %w", err)
	}

	return Media{
		ID:  objectName,
		URL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName),
	}, nil
}

func (s *gcsMediaStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Bucket(s.bucket).Object(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// decodeDataURL splits "data:image/png;base64,...." into bytes and mime type.
// Bare base64 payloads are accepted and treated as PNG.
func decodeDataURL(raw string) ([]byte, string, error) {
	contentType := "image/png"
	payload := raw

	if strings.HasPrefix(raw, "data:") {
		meta, rest, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
		if !ok {
			return nil, "", fmt.Errorf("%w: malformed data url", ErrInvalidImage)
		}
		payload = rest
		if ct, _, found := strings.Cut(meta, ";"); found || ct != "" {
			contentType = ct
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
