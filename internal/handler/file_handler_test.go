package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/pkg/storage"
)

func newFileFixture(t *testing.T) (*FileHandler, *storage.SignedURLSigner) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "/files")
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), "brand-kit", "logo/main.svg", []byte("<svg/>"))
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Minute)
	return NewFileHandler(signer, store, nil), signer
}

func TestFileHandlerServesSignedObject(t *testing.T) {
	h, signer := newFileFixture(t)
	token, _, err := signer.Generate("brand-kit", "logo/main.svg")
	require.NoError(t, err)

	c, w := newTestContext(t, http.MethodGet, "/files/download?token="+url.QueryEscape(token), nil, nil)
	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<svg/>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "main.svg")
}

func TestFileHandlerRejectsTamperedToken(t *testing.T) {
	h, signer := newFileFixture(t)
	token, _, err := signer.Generate("brand-kit", "logo/main.svg")
	require.NoError(t, err)

	c, w := newTestContext(t, http.MethodGet, "/files/download?token="+url.QueryEscape(token+"0"), nil, nil)
	h.Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFileHandlerMissingObject(t *testing.T) {
	h, signer := newFileFixture(t)
	token, _, err := signer.Generate("brand-kit", "logo/gone.svg")
	require.NoError(t, err)

	c, w := newTestContext(t, http.MethodGet, "/files/download?token="+url.QueryEscape(token), nil, nil)
	h.Download(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
