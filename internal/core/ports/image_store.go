package ports

import (
	"context"
	"io"
)

// ImageStore keeps payment and pickup proof images.
type ImageStore interface {
	// Upload stores the image and returns its public URL.
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	// Delete removes an image by URL. Unknown URLs are ignored.
	Delete(ctx context.Context, url string) error
}
