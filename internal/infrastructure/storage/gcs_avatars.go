package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
)

// GCSAvatars stores avatar images in a Google Cloud Storage bucket.
type GCSAvatars struct {
	Client *gcs.Client
	Bucket string
}

func NewGCSAvatars(client *gcs.Client, bucket string) *GCSAvatars {
	return &GCSAvatars{Client: client, Bucket: bucket}
}

func (g *GCSAvatars) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	url, err := helpers.UploadObject(ctx, g.Client, g.Bucket, objectPath, contentType, r)
	if err != nil {
		return "", fmt.Errorf("gcs upload %s: %w", objectPath, err)
	}
	return url, nil
}
