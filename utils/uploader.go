// utils/uploader.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// AssetUploader stores an image in the external asset service and returns its
// public URL. The upload is at-most-once: a failure is returned to the caller
// and never retried.
type AssetUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

// CloudinaryUploader uploads product images to Cloudinary
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader initializes the uploader from CLOUDINARY_URL
func NewCloudinaryUploader() (*CloudinaryUploader, error) {
	url := os.Getenv("CLOUDINARY_URL")
	if url == "" {
		return nil, errors.New("CLOUDINARY_URL is not set in environment variables")
	}
	client, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryUploader{client: client, folder: "products"}, nil
}

// Upload sends the file to Cloudinary and returns the secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	result, err := u.client.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   u.folder,
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload %s: %s", filename, result.Error.Message)
	}
	return result.SecureURL, nil
}
