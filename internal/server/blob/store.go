// Package blob stores uploaded post images in an S3-compatible backend and
// hands back the storage key the post records as its image reference.
package blob

import "context"

// Store is the collaborator post handlers use for image uploads. Save
// persists data and returns the storage key; the caller treats the key as
// opaque.
type Store interface {
	Save(ctx context.Context, fieldName string, data []byte) (string, error)
}
