// Package files uploads product images to an external asset store.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type UploadResult struct {
	ImageURL        string
	AssetExternalID string
}

// Storage is the asset-store contract: an upload yields a public URL
// plus an external id, and deletion removes assets by id.
type Storage interface {
	UploadImage(ctx context.Context, image io.Reader) (UploadResult, error)
	DeleteAssets(ctx context.Context, assetExternalIDs []string) error
}

// Cloudinary stores assets in a configured Cloudinary folder.
type Cloudinary struct {
	client *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("internal/files: failed to init cloudinary: %w", err)
	}

	return &Cloudinary{client: client, folder: folder}, nil
}

func (c *Cloudinary) UploadImage(ctx context.Context, image io.Reader) (UploadResult, error) {
	resp, err := c.client.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder: c.folder,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("internal/files: upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("internal/files: upload failed: %s", resp.Error.Message)
	}

	return UploadResult{
		ImageURL:        resp.SecureURL,
		AssetExternalID: resp.PublicID,
	}, nil
}

func (c *Cloudinary) DeleteAssets(ctx context.Context, assetExternalIDs []string) error {
	var errs []error
	for _, id := range assetExternalIDs {
		_, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
		if err != nil {
			errs = append(errs, fmt.Errorf("internal/files: failed to delete asset %s: %w", id, err))
		}
	}

	return errors.Join(errs...)
}
