package gallery

import "time"

// Photo is a catalog entry. Records are written by the upload pipeline and
// are immutable here; the gallery only reads them.
type Photo struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Filename     string    `json:"filename,omitempty"`
	UploadDate   time.Time `json:"uploadDate,omitzero"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	FullURL      string    `json:"fullUrl"`
}

// RankedPhoto is a Photo annotated with its click count at read time.
type RankedPhoto struct {
	Photo
	Clicks int64 `json:"clicks"`
}

// RankedPage is one page of the ranked photo sequence. It is derived on
// every request and never persisted.
type RankedPage struct {
	Photos     []RankedPhoto `json:"photos"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PerPage    int           `json:"perPage"`
	TotalPages int           `json:"totalPages"`
}
