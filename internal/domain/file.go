package domain

import "context"

// FileRepository stores serialized artifacts (training history exports) in an
// object store and returns the stored location.
type FileRepository interface {
	Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error)
}
