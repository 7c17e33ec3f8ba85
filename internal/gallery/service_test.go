package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/lumapix/photogallery/internal/errx"
)

/***************
 * Mocks
 ***************/

// mockStore implements the Store interface for testing. Unset function
// fields fall back to serving from the catalog/counts maps.
type mockStore struct {
	catalog []Photo
	counts  map[string]int64

	getCatalogFunc       func(ctx context.Context) ([]Photo, error)
	getCountersFunc      func(ctx context.Context, ids []string) (map[string]int64, error)
	incrementCounterFunc func(ctx context.Context, id string) (int64, error)
}

func (m *mockStore) GetCatalog(ctx context.Context) ([]Photo, error) {
	if m.getCatalogFunc != nil {
		return m.getCatalogFunc(ctx)
	}
	return m.catalog, nil
}

func (m *mockStore) PutCatalog(ctx context.Context, photos []Photo) error {
	m.catalog = photos
	return nil
}

func (m *mockStore) GetCounter(ctx context.Context, id string) (int64, error) {
	return m.counts[id], nil
}

func (m *mockStore) GetCounters(ctx context.Context, ids []string) (map[string]int64, error) {
	if m.getCountersFunc != nil {
		return m.getCountersFunc(ctx, ids)
	}
	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		out[id] = m.counts[id]
	}
	return out, nil
}

func (m *mockStore) IncrementCounter(ctx context.Context, id string) (int64, error) {
	if m.incrementCounterFunc != nil {
		return m.incrementCounterFunc(ctx, id)
	}
	if m.counts == nil {
		m.counts = make(map[string]int64)
	}
	m.counts[id]++
	return m.counts[id], nil
}

// mockBlobStore implements the BlobStore interface for testing.
type mockBlobStore struct {
	getFunc func(ctx context.Context, key string) (Object, error)
}

func (m *mockBlobStore) Get(ctx context.Context, key string) (Object, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return Object{}, errx.E("blobstore.Get", errx.NotFound, errors.New("not found"))
}

func testCatalog() []Photo {
	return []Photo{
		{ID: "travel-a", Category: "travel"},
		{ID: "travel-b", Category: "travel"},
		{ID: "theatre-c", Category: "theatre"},
	}
}

func newTestService(store Store) Service {
	return NewService(store, &mockBlobStore{}, nil)
}

/***************
 * ListPhotos
 ***************/

func TestListPhotos_RankingOrder(t *testing.T) {
	store := &mockStore{
		catalog: testCatalog(),
		counts:  map[string]int64{"travel-a": 5, "travel-b": 5, "theatre-c": 9},
	}
	svc := newTestService(store)

	page, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListPhotos() unexpected error: %v", err)
	}

	wantOrder := []string{"theatre-c", "travel-a", "travel-b"}
	if len(page.Photos) != len(wantOrder) {
		t.Fatalf("got %d photos, want %d", len(page.Photos), len(wantOrder))
	}
	for i, want := range wantOrder {
		if page.Photos[i].ID != want {
			t.Errorf("photos[%d].ID = %q, want %q", i, page.Photos[i].ID, want)
		}
	}

	// Adjacent-pair ordering invariant: clicks strictly descending, or
	// equal clicks with ids ascending.
	for i := 1; i < len(page.Photos); i++ {
		prev, cur := page.Photos[i-1], page.Photos[i]
		if prev.Clicks < cur.Clicks {
			t.Errorf("photos[%d] clicks %d < photos[%d] clicks %d", i-1, prev.Clicks, i, cur.Clicks)
		}
		if prev.Clicks == cur.Clicks && prev.ID > cur.ID {
			t.Errorf("tie at %d clicks broken wrong: %q before %q", cur.Clicks, prev.ID, cur.ID)
		}
	}
}

func TestListPhotos_CategoryFilter(t *testing.T) {
	store := &mockStore{
		catalog: testCatalog(),
		counts:  map[string]int64{"travel-a": 5, "travel-b": 5, "theatre-c": 9},
	}
	svc := newTestService(store)

	t.Run("filters exact category", func(t *testing.T) {
		page, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Category: "travel", Page: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}

		if page.TotalCount != 2 {
			t.Errorf("TotalCount = %d, want 2", page.TotalCount)
		}
		if page.TotalPages != 1 {
			t.Errorf("TotalPages = %d, want 1", page.TotalPages)
		}
		// Equal counts, tie broken by id
		if page.Photos[0].ID != "travel-a" || page.Photos[1].ID != "travel-b" {
			t.Errorf("photos = [%s, %s], want [travel-a, travel-b]", page.Photos[0].ID, page.Photos[1].ID)
		}
	})

	t.Run("category all matches everything", func(t *testing.T) {
		page, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Category: "all", Page: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if page.TotalCount != 3 {
			t.Errorf("TotalCount = %d, want 3", page.TotalCount)
		}
	})

	t.Run("filter is case-sensitive", func(t *testing.T) {
		page, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Category: "Travel", Page: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if page.TotalCount != 0 {
			t.Errorf("TotalCount = %d, want 0 for mismatched case", page.TotalCount)
		}
		if page.TotalPages != 0 {
			t.Errorf("TotalPages = %d, want 0 when TotalCount is 0", page.TotalPages)
		}
	})
}

func TestListPhotos_Pagination(t *testing.T) {
	// 7 photos, all zero clicks: order is purely id-based, so pages are
	// fully deterministic.
	var catalog []Photo
	for i := range 7 {
		catalog = append(catalog, Photo{ID: fmt.Sprintf("photo-%02d", i), Category: "travel"})
	}
	store := &mockStore{catalog: catalog}
	svc := newTestService(store)
	ctx := context.Background()

	t.Run("pages partition the sequence", func(t *testing.T) {
		perPage := 3
		var seen []string

		first, err := svc.ListPhotos(ctx, ListPhotosRequest{Page: 1, PerPage: perPage})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if first.TotalPages != 3 {
			t.Fatalf("TotalPages = %d, want 3", first.TotalPages)
		}

		for p := 1; p <= first.TotalPages; p++ {
			page, err := svc.ListPhotos(ctx, ListPhotosRequest{Page: p, PerPage: perPage})
			if err != nil {
				t.Fatalf("ListPhotos(page=%d) unexpected error: %v", p, err)
			}
			for _, photo := range page.Photos {
				seen = append(seen, photo.ID)
			}
		}

		if len(seen) != len(catalog) {
			t.Fatalf("concatenated pages hold %d photos, want %d", len(seen), len(catalog))
		}
		for i, id := range seen {
			want := fmt.Sprintf("photo-%02d", i)
			if id != want {
				t.Errorf("seen[%d] = %q, want %q (gap or duplicate)", i, id, want)
			}
		}
	})

	t.Run("totalPages is ceil of totalCount over perPage", func(t *testing.T) {
		tests := []struct {
			perPage    int
			wantPages  int
			wantOnLast int
		}{
			{1, 7, 1},
			{2, 4, 1},
			{3, 3, 1},
			{7, 1, 7},
			{10, 1, 7},
		}

		for _, tt := range tests {
			page, err := svc.ListPhotos(ctx, ListPhotosRequest{Page: tt.wantPages, PerPage: tt.perPage})
			if err != nil {
				t.Fatalf("ListPhotos() unexpected error: %v", err)
			}
			if page.TotalPages != tt.wantPages {
				t.Errorf("perPage=%d: TotalPages = %d, want %d", tt.perPage, page.TotalPages, tt.wantPages)
			}
			if len(page.Photos) != tt.wantOnLast {
				t.Errorf("perPage=%d: last page holds %d, want %d", tt.perPage, len(page.Photos), tt.wantOnLast)
			}
		}
	})

	t.Run("out-of-range page yields empty slice not error", func(t *testing.T) {
		page, err := svc.ListPhotos(ctx, ListPhotosRequest{Page: 99, PerPage: 3})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if len(page.Photos) != 0 {
			t.Errorf("got %d photos on out-of-range page, want 0", len(page.Photos))
		}
		if page.TotalCount != 7 {
			t.Errorf("TotalCount = %d, want 7", page.TotalCount)
		}
	})

	t.Run("invalid page and perPage fall back to defaults", func(t *testing.T) {
		page, err := svc.ListPhotos(ctx, ListPhotosRequest{Page: 0, PerPage: -5})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if page.Page != DefaultPage {
			t.Errorf("Page = %d, want default %d", page.Page, DefaultPage)
		}
		if page.PerPage != DefaultPerPage {
			t.Errorf("PerPage = %d, want default %d", page.PerPage, DefaultPerPage)
		}
	})
}

func TestListPhotos_EmptyCatalog(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store)

	page, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Page: 1, PerPage: 30})
	if err != nil {
		t.Fatalf("ListPhotos() unexpected error: %v", err)
	}

	if len(page.Photos) != 0 {
		t.Errorf("got %d photos, want 0", len(page.Photos))
	}
	if page.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", page.TotalCount)
	}
	if page.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", page.TotalPages)
	}
}

func TestListPhotos_WorkedExample(t *testing.T) {
	// catalog = [a:travel:5, b:travel:5, c:theatre:9]
	store := &mockStore{
		catalog: []Photo{
			{ID: "a", Category: "travel"},
			{ID: "b", Category: "travel"},
			{ID: "c", Category: "theatre"},
		},
		counts: map[string]int64{"a": 5, "b": 5, "c": 9},
	}
	svc := newTestService(store)
	ctx := context.Background()

	t.Run("travel page", func(t *testing.T) {
		page, err := svc.ListPhotos(ctx, ListPhotosRequest{Category: "travel", Page: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if page.TotalCount != 2 || page.TotalPages != 1 {
			t.Errorf("TotalCount=%d TotalPages=%d, want 2 and 1", page.TotalCount, page.TotalPages)
		}
		if page.Photos[0].ID != "a" || page.Photos[1].ID != "b" {
			t.Errorf("order = [%s, %s], want [a, b]", page.Photos[0].ID, page.Photos[1].ID)
		}
	})

	t.Run("single-item first page over all categories", func(t *testing.T) {
		page, err := svc.ListPhotos(ctx, ListPhotosRequest{Page: 1, PerPage: 1})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if len(page.Photos) != 1 || page.Photos[0].ID != "c" {
			t.Fatalf("first page = %v, want [c]", page.Photos)
		}
		if page.Photos[0].Clicks != 9 {
			t.Errorf("clicks = %d, want 9", page.Photos[0].Clicks)
		}
		if page.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", page.TotalPages)
		}
	})

	t.Run("click reorders subsequent listing", func(t *testing.T) {
		for range 5 {
			if _, err := svc.RecordClick(ctx, "b"); err != nil {
				t.Fatalf("RecordClick() unexpected error: %v", err)
			}
		}

		page, err := svc.ListPhotos(ctx, ListPhotosRequest{Category: "travel", Page: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("ListPhotos() unexpected error: %v", err)
		}
		if page.Photos[0].ID != "b" {
			t.Errorf("photos[0].ID = %q, want b after clicks", page.Photos[0].ID)
		}
		if page.Photos[0].Clicks != 10 {
			t.Errorf("clicks = %d, want 10", page.Photos[0].Clicks)
		}
	})
}

func TestListPhotos_StoreErrors(t *testing.T) {
	t.Run("catalog fetch failure surfaces unavailable", func(t *testing.T) {
		store := &mockStore{
			getCatalogFunc: func(ctx context.Context) ([]Photo, error) {
				return nil, errx.E("redisstore.GetCatalog", errx.Unavailable, errors.New("connection refused"))
			},
		}
		svc := newTestService(store)

		_, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Page: 1, PerPage: 10})
		if err == nil {
			t.Fatal("ListPhotos() expected error, got nil")
		}
		if errx.KindOf(err) != errx.Unavailable {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.Unavailable)
		}
	})

	t.Run("counter fetch failure surfaces unavailable", func(t *testing.T) {
		store := &mockStore{
			catalog: testCatalog(),
			getCountersFunc: func(ctx context.Context, ids []string) (map[string]int64, error) {
				return nil, errx.E("redisstore.GetCounters", errx.Unavailable, errors.New("timeout"))
			},
		}
		svc := newTestService(store)

		_, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Page: 1, PerPage: 10})
		if err == nil {
			t.Fatal("ListPhotos() expected error, got nil")
		}
		if errx.KindOf(err) != errx.Unavailable {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.Unavailable)
		}
	})
}

func TestListPhotos_DoesNotMutateCatalog(t *testing.T) {
	catalog := testCatalog()
	store := &mockStore{
		catalog: catalog,
		counts:  map[string]int64{"theatre-c": 9},
	}
	svc := newTestService(store)

	if _, err := svc.ListPhotos(context.Background(), ListPhotosRequest{Page: 1, PerPage: 10}); err != nil {
		t.Fatalf("ListPhotos() unexpected error: %v", err)
	}

	// The store's catalog order must be untouched by the sort.
	want := []string{"travel-a", "travel-b", "theatre-c"}
	for i, p := range store.catalog {
		if p.ID != want[i] {
			t.Errorf("catalog[%d].ID = %q, want %q (listing mutated the catalog)", i, p.ID, want[i])
		}
	}
}

/***************
 * RecordClick
 ***************/

func TestRecordClick(t *testing.T) {
	t.Run("empty photo id is invalid", func(t *testing.T) {
		svc := newTestService(&mockStore{})

		_, err := svc.RecordClick(context.Background(), "")
		if err == nil {
			t.Fatal("RecordClick() expected error, got nil")
		}
		if errx.KindOf(err) != errx.Invalid {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.Invalid)
		}
	})

	t.Run("returns post-increment count", func(t *testing.T) {
		store := &mockStore{counts: map[string]int64{"a": 5}}
		svc := newTestService(store)

		clicks, err := svc.RecordClick(context.Background(), "a")
		if err != nil {
			t.Fatalf("RecordClick() unexpected error: %v", err)
		}
		if clicks != 6 {
			t.Errorf("clicks = %d, want 6", clicks)
		}
	})

	t.Run("unknown id creates a counter at 1", func(t *testing.T) {
		store := &mockStore{catalog: testCatalog()}
		svc := newTestService(store)

		clicks, err := svc.RecordClick(context.Background(), "never-seen")
		if err != nil {
			t.Fatalf("RecordClick() unexpected error: %v", err)
		}
		if clicks != 1 {
			t.Errorf("clicks = %d, want 1", clicks)
		}
	})

	t.Run("sequential clicks accumulate", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		var last int64
		for i := range 5 {
			clicks, err := svc.RecordClick(context.Background(), "a")
			if err != nil {
				t.Fatalf("RecordClick() #%d unexpected error: %v", i+1, err)
			}
			if clicks != last+1 {
				t.Errorf("clicks = %d, want %d", clicks, last+1)
			}
			last = clicks
		}
	})

	t.Run("store failure surfaces unavailable", func(t *testing.T) {
		store := &mockStore{
			incrementCounterFunc: func(ctx context.Context, id string) (int64, error) {
				return 0, errx.E("redisstore.IncrementCounter", errx.Unavailable, errors.New("connection reset"))
			},
		}
		svc := newTestService(store)

		_, err := svc.RecordClick(context.Background(), "a")
		if err == nil {
			t.Fatal("RecordClick() expected error, got nil")
		}
		if errx.KindOf(err) != errx.Unavailable {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.Unavailable)
		}
	})
}

func TestRecordClick_RequireKnownPhoto(t *testing.T) {
	newStrictService := func(store Store) Service {
		return NewService(store, &mockBlobStore{}, &ServiceConfig{RequireKnownPhoto: true})
	}

	t.Run("known id increments", func(t *testing.T) {
		store := &mockStore{catalog: testCatalog()}
		svc := newStrictService(store)

		clicks, err := svc.RecordClick(context.Background(), "travel-a")
		if err != nil {
			t.Fatalf("RecordClick() unexpected error: %v", err)
		}
		if clicks != 1 {
			t.Errorf("clicks = %d, want 1", clicks)
		}
	})

	t.Run("unknown id rejected", func(t *testing.T) {
		store := &mockStore{catalog: testCatalog()}
		svc := newStrictService(store)

		_, err := svc.RecordClick(context.Background(), "never-seen")
		if err == nil {
			t.Fatal("RecordClick() expected error, got nil")
		}
		if errx.KindOf(err) != errx.NotFound {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.NotFound)
		}
		if store.counts["never-seen"] != 0 {
			t.Errorf("counter was created for rejected id: %d", store.counts["never-seen"])
		}
	})
}

/***************
 * FetchImage
 ***************/

func TestFetchImage(t *testing.T) {
	t.Run("valid kinds build the blob key", func(t *testing.T) {
		var gotKey string
		blobs := &mockBlobStore{
			getFunc: func(ctx context.Context, key string) (Object, error) {
				gotKey = key
				return Object{
					Body:        io.NopCloser(strings.NewReader("jpeg bytes")),
					ContentType: "image/jpeg",
					Size:        10,
				}, nil
			},
		}
		svc := NewService(&mockStore{}, blobs, nil)

		obj, err := svc.FetchImage(context.Background(), KindThumbnails, "travel-a.jpg")
		if err != nil {
			t.Fatalf("FetchImage() unexpected error: %v", err)
		}
		defer obj.Body.Close()

		if gotKey != "thumbnails/travel-a.jpg" {
			t.Errorf("blob key = %q, want thumbnails/travel-a.jpg", gotKey)
		}
		if obj.ContentType != "image/jpeg" {
			t.Errorf("ContentType = %q, want image/jpeg", obj.ContentType)
		}
	})

	t.Run("invalid kind rejected", func(t *testing.T) {
		svc := NewService(&mockStore{}, &mockBlobStore{}, nil)

		_, err := svc.FetchImage(context.Background(), "originals", "travel-a.jpg")
		if err == nil {
			t.Fatal("FetchImage() expected error, got nil")
		}
		if errx.KindOf(err) != errx.Invalid {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.Invalid)
		}
	})

	t.Run("empty filename rejected", func(t *testing.T) {
		svc := NewService(&mockStore{}, &mockBlobStore{}, nil)

		_, err := svc.FetchImage(context.Background(), KindPhotos, "")
		if errx.KindOf(err) != errx.Invalid {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.Invalid)
		}
	})

	t.Run("filename with path separator rejected", func(t *testing.T) {
		svc := NewService(&mockStore{}, &mockBlobStore{}, nil)

		_, err := svc.FetchImage(context.Background(), KindPhotos, "../photo-metadata")
		if errx.KindOf(err) != errx.Invalid {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.Invalid)
		}
	})

	t.Run("missing object surfaces not found", func(t *testing.T) {
		svc := NewService(&mockStore{}, &mockBlobStore{}, nil)

		_, err := svc.FetchImage(context.Background(), KindPhotos, "nope.jpg")
		if err == nil {
			t.Fatal("FetchImage() expected error, got nil")
		}
		if errx.KindOf(err) != errx.NotFound {
			t.Errorf("error kind = %v, want %v", errx.KindOf(err), errx.NotFound)
		}
	})
}
