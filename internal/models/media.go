package models

import (
	"time"

	"github.com/lib/pq"
)

// MediaType classifies an uploaded asset.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
	MediaAudio    MediaType = "audio"
	MediaOther    MediaType = "other"
)

// Valid reports whether t is a known type.
func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaVideo, MediaDocument, MediaAudio, MediaOther:
		return true
	}
	return false
}

// MediaStatus marks whether the blob behind a row has been confirmed.
type MediaStatus string

const (
	MediaPending MediaStatus = "pending"
	MediaReady   MediaStatus = "ready"
)

// MediaAsset is a row in the media library.
type MediaAsset struct {
	ID           int64          `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	FileName     string         `db:"file_name" json:"fileName"`
	StorageKey   string         `db:"storage_key" json:"-"`
	FileURL      string         `db:"file_url" json:"fileUrl"`
	ThumbnailURL *string        `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	MimeType     string         `db:"mime_type" json:"mimeType"`
	SizeBytes    int64          `db:"size_bytes" json:"sizeBytes"`
	Type         MediaType      `db:"type" json:"type"`
	Folder       string         `db:"folder" json:"folder"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	Status       MediaStatus    `db:"status" json:"status"`
	UploadedBy   string         `db:"uploaded_by" json:"uploadedBy"`
	ProgramID    *int64         `db:"program_id" json:"programId,omitempty"`
	DivisionID   *int64         `db:"division_id" json:"divisionId,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
	DeletedAt    *time.Time     `db:"deleted_at" json:"deletedAt,omitempty"`
}

// MediaFilter narrows media library listings.
type MediaFilter struct {
	Folder     string
	Tag        string
	Type       MediaType
	ProgramID  *int64
	DivisionID *int64
	Search     string
	Page       int
	PageSize   int
}
