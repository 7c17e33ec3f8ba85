package gallery

import (
	"context"
	"io"
)

// Store defines the persistence operations for the photo catalog and the
// per-photo click counters. Implementations sit on a key-value store; the
// store itself is the only arbiter of counter mutation ordering, so
// implementations must not cache counter values between calls.
type Store interface {
	// GetCatalog returns the full catalog. A catalog that has never been
	// written yields an empty slice, not an error.
	GetCatalog(ctx context.Context) ([]Photo, error)

	// PutCatalog replaces the catalog document.
	PutCatalog(ctx context.Context, photos []Photo) error

	// GetCounter returns the click count for one photo id. An absent
	// counter is zero.
	GetCounter(ctx context.Context, photoID string) (int64, error)

	// GetCounters returns click counts for a batch of photo ids. Absent
	// counters map to zero. The reads are independent; callers must not
	// assume they reflect a single instant.
	GetCounters(ctx context.Context, photoIDs []string) (map[string]int64, error)

	// IncrementCounter atomically increments the counter for one photo id
	// and returns the post-increment value. Concurrent increments for the
	// same id must all be observed; increments for different ids proceed
	// in parallel.
	IncrementCounter(ctx context.Context, photoID string) (int64, error)
}

// BlobStore defines the read side of the image object store.
type BlobStore interface {
	// Get fetches one object by key. Missing objects surface as a
	// NotFound kind, not a nil object.
	Get(ctx context.Context, key string) (Object, error)
}

// Object is a blob fetched from the image store. Callers own Body and must
// close it.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}
