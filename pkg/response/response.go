package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/middleware/requestid"
)

// Envelope is the JSON shape every endpoint answers with.
type Envelope struct {
	Data       any                `json:"data,omitempty"`
	Error      *appErrors.Error   `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Meta       map[string]any     `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination and meta.
func JSON(c *gin.Context, status int, data any, pagination *models.Pagination, meta ...map[string]any) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Public sends a cacheable response for the public site.
func Public(c *gin.Context, data any, maxAge int, meta map[string]any) {
	if maxAge > 0 {
		c.Header("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
	}
	c.JSON(http.StatusOK, Envelope{Data: data, Meta: meta})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data any) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error converts err to the common structure and aborts the chain.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	var meta map[string]any
	if id := requestid.Value(c); id != "" {
		meta = map[string]any{"request_id": id}
	}
	c.AbortWithStatusJSON(appErr.Status, Envelope{Error: appErr, Meta: meta})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Download streams a generated file as an attachment.
func Download(c *gin.Context, filename, contentType string, body []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
