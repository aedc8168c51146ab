package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/middleware"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

const formFileField = "file"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

// idParam reads a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id tidak valid")
	}
	return id, nil
}

func bindJSON(c *gin.Context, dest any) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload tidak valid")
	}
	return nil
}

func bindQuery(c *gin.Context, dest any) error {
	if err := c.ShouldBindQuery(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "parameter tidak valid")
	}
	return nil
}

// readFormFile loads the multipart "file" field. The limit guards memory;
// the services enforce the configured size policy.
func readFormFile(c *gin.Context, limit int64) (*multipart.FileHeader, []byte, error) {
	header, err := c.FormFile(formFileField)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file wajib diunggah")
	}
	if limit > 0 && header.Size > limit {
		return nil, nil, appErrors.ErrPayloadTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Internal(err, "Gagal membaca file")
	}
	defer file.Close()

	reader := io.Reader(file)
	if limit > 0 {
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "Gagal membaca file")
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, nil, appErrors.ErrPayloadTooLarge
	}
	return header, data, nil
}

// optionalFormFile is readFormFile for forms where the file may be omitted.
func optionalFormFile(c *gin.Context, limit int64) (*multipart.FileHeader, []byte, error) {
	if _, err := c.FormFile(formFileField); errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	return readFormFile(c, limit)
}
