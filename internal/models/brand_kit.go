package models

import "time"

// BrandCategory groups brand kit entries.
type BrandCategory string

const (
	BrandLogo      BrandCategory = "logo"
	BrandColor     BrandCategory = "color"
	BrandFont      BrandCategory = "font"
	BrandTemplate  BrandCategory = "template"
	BrandGuideline BrandCategory = "guideline"
)

// Valid reports whether c is a known category.
func (c BrandCategory) Valid() bool {
	switch c {
	case BrandLogo, BrandColor, BrandFont, BrandTemplate, BrandGuideline:
		return true
	}
	return false
}

// BrandKitItem is an official identity asset. Colors carry Value instead of a file.
type BrandKitItem struct {
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Category    BrandCategory `db:"category" json:"category"`
	Description string        `db:"description" json:"description"`
	Value       *string       `db:"value" json:"value,omitempty"`
	StorageKey  *string       `db:"storage_key" json:"-"`
	FileURL     *string       `db:"file_url" json:"fileUrl,omitempty"`
	MimeType    *string       `db:"mime_type" json:"mimeType,omitempty"`
	CreatedBy   string        `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}
