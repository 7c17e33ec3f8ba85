package gallery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lumapix/photogallery/internal/errx"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 30

	// CategoryAll is the sentinel category matching every photo.
	CategoryAll = "all"

	// Image kinds, doubling as the top-level prefix of blob keys.
	KindThumbnails = "thumbnails"
	KindPhotos     = "photos"
)

// ListPhotosRequest represents the parameters for listing a ranked page.
type ListPhotosRequest struct {
	Category string // optional; empty or "all" matches everything
	Page     int
	PerPage  int
}

// Service defines the business logic operations for the gallery.
type Service interface {
	// ListPhotos returns one page of the catalog ranked by click count
	// descending, ties broken by ascending id.
	ListPhotos(ctx context.Context, req ListPhotosRequest) (RankedPage, error)

	// RecordClick increments the click counter for a photo and returns
	// the post-increment count.
	RecordClick(ctx context.Context, photoID string) (int64, error)

	// FetchImage streams one image from the blob store.
	FetchImage(ctx context.Context, kind, filename string) (Object, error)
}

// service implements the Service interface.
type service struct {
	store             Store
	blobs             BlobStore
	defaultPerPage    int
	requireKnownPhoto bool
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	DefaultPerPage int

	// RequireKnownPhoto rejects clicks for ids missing from the catalog.
	// Off by default: the write path stays a single round trip, and an
	// unknown id simply grows a counter nothing ever reads.
	RequireKnownPhoto bool
}

// NewService creates a new service instance.
func NewService(store Store, blobs BlobStore, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	perPage := config.DefaultPerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	return &service{
		store:             store,
		blobs:             blobs,
		defaultPerPage:    perPage,
		requireKnownPhoto: config.RequireKnownPhoto,
	}
}

// ListPhotos fetches the catalog, annotates it with current click counts,
// sorts, and slices out the requested page.
//
// The counter reads are not a snapshot: clicks landing mid-request may show
// a mix of old and new values across different photos. Per-page stability
// comes from the deterministic sort, not from read isolation.
func (s *service) ListPhotos(ctx context.Context, req ListPhotosRequest) (RankedPage, error) {
	const op = "gallery.service.ListPhotos"

	page := req.Page
	if page < 1 {
		page = DefaultPage
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = s.defaultPerPage
	}

	catalog, err := s.store.GetCatalog(ctx)
	if err != nil {
		return RankedPage{}, errx.E(op, errx.KindOf(err), err)
	}

	if req.Category != "" && req.Category != CategoryAll {
		filtered := catalog[:0:0]
		for _, p := range catalog {
			if p.Category == req.Category {
				filtered = append(filtered, p)
			}
		}
		catalog = filtered
	}

	ids := make([]string, len(catalog))
	for i, p := range catalog {
		ids[i] = p.ID
	}

	counts, err := s.store.GetCounters(ctx, ids)
	if err != nil {
		return RankedPage{}, errx.E(op, errx.KindOf(err), err)
	}

	ranked := make([]RankedPhoto, len(catalog))
	for i, p := range catalog {
		ranked[i] = RankedPhoto{Photo: p, Clicks: counts[p.ID]}
	}

	// Clicks descending, ids ascending on ties. The tie-break keeps
	// consecutive page requests disjoint and gap-free over an unchanged
	// counter snapshot. Fresh photos all sit at zero clicks, so ties are
	// the common case, not the edge case.
	slices.SortFunc(ranked, func(a, b RankedPhoto) int {
		if a.Clicks != b.Clicks {
			if a.Clicks > b.Clicks {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Photo.ID, b.Photo.ID)
	})

	totalCount := len(ranked)
	totalPages := (totalCount + perPage - 1) / perPage

	start := (page - 1) * perPage
	end := start + perPage
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return RankedPage{
		Photos:     ranked[start:end],
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// RecordClick increments the click counter for photoID.
func (s *service) RecordClick(ctx context.Context, photoID string) (int64, error) {
	const op = "gallery.service.RecordClick"

	if photoID == "" {
		return 0, errx.E(op, errx.Invalid, errors.New("photoId cannot be empty"))
	}

	if s.requireKnownPhoto {
		known, err := s.photoExists(ctx, photoID)
		if err != nil {
			return 0, errx.E(op, errx.KindOf(err), err)
		}
		if !known {
			return 0, errx.E(op, errx.NotFound, fmt.Errorf("photo %q not in catalog", photoID))
		}
	}

	count, err := s.store.IncrementCounter(ctx, photoID)
	if err != nil {
		return 0, errx.E(op, errx.KindOf(err), err)
	}
	return count, nil
}

// FetchImage streams one image from the blob store. The blob key is derived
// from the kind and filename; objects are content-addressed by photo id and
// never change in place.
func (s *service) FetchImage(ctx context.Context, kind, filename string) (Object, error) {
	const op = "gallery.service.FetchImage"

	if kind != KindThumbnails && kind != KindPhotos {
		return Object{}, errx.E(op, errx.Invalid,
			fmt.Errorf("invalid image kind %q (must be %s or %s)", kind, KindThumbnails, KindPhotos))
	}
	if filename == "" {
		return Object{}, errx.E(op, errx.Invalid, errors.New("filename cannot be empty"))
	}
	if strings.ContainsAny(filename, "/\\") {
		return Object{}, errx.E(op, errx.Invalid, errors.New("filename cannot contain path separators"))
	}

	obj, err := s.blobs.Get(ctx, kind+"/"+filename)
	if err != nil {
		return Object{}, errx.E(op, errx.KindOf(err), err)
	}
	return obj, nil
}

func (s *service) photoExists(ctx context.Context, photoID string) (bool, error) {
	catalog, err := s.store.GetCatalog(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range catalog {
		if p.ID == photoID {
			return true, nil
		}
	}
	return false, nil
}
