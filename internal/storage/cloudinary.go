// Package storage implements evidence-file persistence on Cloudinary.
// Uploaded proofs (ID cards, payment slips) are write-once: the booking
// row stores the returned URL and the file is never rewritten.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStore uploads evidence files to Cloudinary, one folder per
// logical bucket.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a store from explicit credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("storage: cloudinary credentials not set")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload stores the file content under the bucket's folder and returns
// the canonical URL.  The stored name is a fresh UUID with the caller's
// file extension preserved, so two applicants uploading "slip.jpg"
// never collide.
func (s *CloudinaryStore) Upload(ctx context.Context, bucket, filename string, content io.Reader) (string, error) {
	publicID := uuid.NewString()
	if ext := strings.TrimPrefix(path.Ext(filename), "."); ext != "" {
		publicID += "_" + ext
	}
	res, err := s.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder:       bucket,
		PublicID:     publicID,
		ResourceType: "auto",
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload to %s: %w", bucket, err)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("storage: upload to %s: no URL returned", bucket)
	}
	return res.SecureURL, nil
}
