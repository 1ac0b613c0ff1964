package service

import (
	"context"
	"fmt"
	"log"
)

type ImageStore interface {
	Upload(ctx context.Context, data, folder string) (string, error)
	Delete(ctx context.Context, assetURL string) error
}

// replaceImage applies the image replacement protocol shared by product and
// settings updates. The old asset is deleted before the new one is uploaded
// (a short window with no stored image, never one with two); deletion is
// best-effort while an upload failure aborts the whole mutation, so the
// caller must not persist anything when an error is returned.
//
// Returns the reference the record should carry afterwards:
//   - newImage set   -> the freshly uploaded URL
//   - remove only    -> ""
//   - neither        -> existing, untouched
func replaceImage(ctx context.Context, images ImageStore, existing, newImage, folder string, remove bool) (string, error) {
	if newImage == "" && !remove {
		return existing, nil
	}

	deleteAsset(ctx, images, existing)

	if newImage != "" {
		uploaded, err := images.Upload(ctx, newImage, folder)
		if err != nil {
			return "", wrapUpload(err)
		}
		return uploaded, nil
	}

	return "", nil
}

func wrapUpload(err error) error {
	return fmt.Errorf("%w: %v", ErrUploadFailed, err)
}

// deleteAsset removes a stored asset, logging and swallowing any failure.
// An orphaned asset costs storage; a failed record mutation costs
// correctness, so deletion never propagates errors.
func deleteAsset(ctx context.Context, images ImageStore, assetURL string) {
	if assetURL == "" {
		return
	}
	if err := images.Delete(ctx, assetURL); err != nil {
		log.Printf("[Assets] best-effort delete of %s failed: %v", assetURL, err)
	}
}
