package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/middleware"
	"github.com/noah-isme/ormawa-api/internal/models"
)

var (
	adminActor  = &models.JWTClaims{UserID: "u-admin", Role: models.RoleAdmin}
	memberActor = &models.JWTClaims{UserID: "u-member", Role: models.RoleAnggota, DivisionID: 1}
)

func newTestContext(t *testing.T, method, target string, body io.Reader, actor *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	c.Request = req
	if actor != nil {
		c.Set(middleware.ContextUserKey, actor)
	}
	return c, w
}

func jsonContext(t *testing.T, method, target string, payload any, actor *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body io.Reader
	if raw, ok := payload.(string); ok {
		body = bytes.NewBufferString(raw)
	} else if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}
	c, w := newTestContext(t, method, target, body, actor)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func multipartContext(t *testing.T, target string, fields map[string]string, filename string, data []byte, actor *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	c, w := newTestContext(t, http.MethodPost, target, &buf, actor)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
