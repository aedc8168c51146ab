package models

import "time"

// ConfigType is a rendering hint for a CMS value.
type ConfigType string

const (
	ConfigText     ConfigType = "text"
	ConfigImage    ConfigType = "image"
	ConfigRichtext ConfigType = "richtext"
	ConfigLink     ConfigType = "link"
	ConfigJSON     ConfigType = "json"
)

// Valid reports whether t is a known hint.
func (t ConfigType) Valid() bool {
	switch t {
	case ConfigText, ConfigImage, ConfigRichtext, ConfigLink, ConfigJSON:
		return true
	}
	return false
}

// SiteConfig is one CMS key. (section, key) is unique.
type SiteConfig struct {
	ID          int64      `db:"id" json:"id"`
	Section     string     `db:"section" json:"section"`
	Key         string     `db:"key" json:"key"`
	Value       string     `db:"value" json:"value"`
	Type        ConfigType `db:"type" json:"type"`
	Label       string     `db:"label" json:"label"`
	Description string     `db:"description" json:"description"`
	SortOrder   int        `db:"sort_order" json:"sortOrder"`
	UpdatedBy   *string    `db:"updated_by" json:"updatedBy,omitempty"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}
