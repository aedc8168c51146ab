package dto

import "github.com/noah-isme/ormawa-api/internal/models"

// UploadMediaRequest carries metadata submitted with a media file.
type UploadMediaRequest struct {
	Title      string   `form:"title" json:"title"`
	Folder     string   `form:"folder" json:"folder"`
	Tags       []string `form:"tags" json:"tags"`
	ProgramID  *int64   `form:"programId" json:"programId"`
	DivisionID *int64   `form:"divisionId" json:"divisionId"`
}

// UpdateMediaRequest edits catalog fields.
type UpdateMediaRequest struct {
	Title  *string   `json:"title" validate:"omitempty,min=1"`
	Folder *string   `json:"folder"`
	Tags   *[]string `json:"tags"`
}

// MediaQuery captures list query parameters.
type MediaQuery struct {
	Folder     string `form:"folder"`
	Tag        string `form:"tag"`
	Type       string `form:"type"`
	ProgramID  *int64 `form:"programId"`
	DivisionID *int64 `form:"divisionId"`
	Search     string `form:"q"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

// PruneResult summarises a reconciliation run.
type PruneResult struct {
	Scanned  int `json:"scanned"`
	Enqueued int `json:"enqueued"`
}

// CreateBrandKitRequest adds a brand kit entry; file is optional.
type CreateBrandKitRequest struct {
	Name        string               `form:"name" json:"name" validate:"required,max=120"`
	Category    models.BrandCategory `form:"category" json:"category" validate:"required"`
	Description string               `form:"description" json:"description"`
	Value       *string              `form:"value" json:"value"`
}

// UpdateBrandKitRequest edits a brand kit entry.
type UpdateBrandKitRequest struct {
	Name        *string               `json:"name" validate:"omitempty,min=1,max=120"`
	Category    *models.BrandCategory `json:"category"`
	Description *string               `json:"description"`
	Value       *string               `json:"value"`
}

// BrandKitDownloadResponse carries a short-lived download link.
type BrandKitDownloadResponse struct {
	models.BrandKitItem
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
}

// CreateCampaignRequest plans a publication.
type CreateCampaignRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Description string                `json:"description"`
	Platform    string                `json:"platform" validate:"required,max=64"`
	Status      models.CampaignStatus `json:"status"`
	PublishAt   *string               `json:"publishAt"`
	ProgramID   *int64                `json:"programId"`
	DivisionID  *int64                `json:"divisionId"`
	CoverURL    *string               `json:"coverUrl" validate:"omitempty,url"`
}

// UpdateCampaignRequest edits a campaign.
type UpdateCampaignRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description"`
	Platform    *string                `json:"platform"`
	Status      *models.CampaignStatus `json:"status"`
	PublishAt   *string                `json:"publishAt"`
	ProgramID   *int64                 `json:"programId"`
	CoverURL    *string                `json:"coverUrl" validate:"omitempty,url"`
}

// CampaignQuery captures list query parameters.
type CampaignQuery struct {
	Status     string `form:"status"`
	Platform   string `form:"platform"`
	ProgramID  *int64 `form:"programId"`
	DivisionID *int64 `form:"divisionId"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}
