package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/ormawa-api/internal/models"
)

// SetConfigRequest writes one CMS value.
type SetConfigRequest struct {
	Section string            `json:"section" validate:"required,max=64"`
	Key     string            `json:"key" validate:"required,max=128"`
	Value   string            `json:"value"`
	Type    models.ConfigType `json:"type"`
}

// BatchSetConfigRequest writes several CMS values in order.
type BatchSetConfigRequest struct {
	Items []SetConfigRequest `json:"items" validate:"required,min=1,dive"`
}

// ConfigEntry is an effective CMS value after merging defaults.
type ConfigEntry struct {
	Section     string            `json:"section"`
	Key         string            `json:"key"`
	Value       string            `json:"value"`
	Type        models.ConfigType `json:"type"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	SortOrder   int               `json:"sortOrder"`
	IsDefault   bool              `json:"isDefault"`
	UpdatedBy   *string           `json:"updatedBy,omitempty"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

// ConfigSection is an ordered list of entries for one section.
type ConfigSection struct {
	Section string        `json:"section"`
	Entries []ConfigEntry `json:"entries"`
}

// BatchFailure names one item a batch could not write.
type BatchFailure struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Error   string `json:"error"`
}

// BatchResult reports a sequential batch write.
type BatchResult struct {
	Updated []string       `json:"updated"`
	Failed  []BatchFailure `json:"failed"`
}

// PagePayload is the public, render-ready content of a section.
type PagePayload struct {
	Section    string                     `json:"section"`
	Values     map[string]json.RawMessage `json:"values"`
	RenderedAt time.Time                  `json:"renderedAt"`
	FromCache  bool                       `json:"-"`
}
