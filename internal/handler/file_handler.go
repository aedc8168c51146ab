package handler

import (
	"errors"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/response"
	"github.com/noah-isme/ormawa-api/pkg/storage"
)

type tokenParser interface {
	Parse(token string) (bucket, key string, err error)
}

type objectOpener interface {
	Open(bucket, key string) (*os.File, error)
}

// FileHandler streams private objects behind signed tokens.
type FileHandler struct {
	signer tokenParser
	store  objectOpener
	logger *zap.Logger
}

// NewFileHandler builds a new handler.
func NewFileHandler(signer tokenParser, store objectOpener, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{signer: signer, store: store, logger: logger}
}

// Download godoc
// @Summary Download a file through a signed token
// @Tags Files
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	bucket, key, err := h.signer.Parse(c.Query("token"))
	if err != nil {
		h.logger.Debug("rejected download token", zap.Error(err))
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "tautan unduhan tidak valid atau kedaluwarsa"))
		return
	}
	file, err := h.store.Open(bucket, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file tidak ditemukan"))
			return
		}
		response.Error(c, appErrors.Internal(err, "Gagal membuka file"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "Gagal membuka file"))
		return
	}
	name := path.Base(key)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}
