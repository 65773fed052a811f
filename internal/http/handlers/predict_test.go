package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/http/middleware"
	"github.com/brightstart/screening-api/internal/models"
)

const testCookieName = "bs_session"

type fakeAuthenticator struct {
	identity models.Identity
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	if token != "valid-token" {
		return nil, models.ErrUnauthenticated
	}
	identity := f.identity
	return &identity, nil
}

type fakeProcessor struct {
	report *models.Report
	err    error
	gotLen int
}

func (f *fakeProcessor) Process(ctx context.Context, upload models.UploadedImage, user models.Identity) (*models.Report, error) {
	f.gotLen = len(upload.Data)
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func predictRouter(processor Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPredictHandler(processor, config.UploadConfig{MaxFileSize: 10 << 20}, zap.NewNop())
	auth := &fakeAuthenticator{identity: models.Identity{UserID: uuid.New(), Username: "alice"}}

	router := gin.New()
	router.POST("/predict", middleware.RequireAuth(auth, testCookieName), handler.Predict)
	return router
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doPredict(t *testing.T, router *gin.Engine, body *bytes.Buffer, contentType string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", contentType)
	if authed {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "valid-token"})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPredictRequiresAuth(t *testing.T) {
	router := predictRouter(&fakeProcessor{})
	body, contentType := multipartUpload(t, "file", "face.jpg", []byte("data"))

	rec := doPredict(t, router, body, contentType, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPredictRequiresFile(t *testing.T) {
	router := predictRouter(&fakeProcessor{})
	body, contentType := multipartUpload(t, "wrong_field", "face.jpg", []byte("data"))

	rec := doPredict(t, router, body, contentType, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictSuccess(t *testing.T) {
	report := &models.Report{
		Class:       "Normal",
		Confidence:  0.93,
		ConfidenceP: "93.0%",
		Percentages: map[string]string{"Normal": "93.0%", "Down Syndrome": "7.0%"},
		Raw:         map[string]float64{"Normal": 0.93, "Down Syndrome": 0.07},
	}
	processor := &fakeProcessor{report: report}
	router := predictRouter(processor)

	body, contentType := multipartUpload(t, "file", "face.jpg", []byte("jpeg-bytes"))
	rec := doPredict(t, router, body, contentType, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, len("jpeg-bytes"), processor.gotLen)

	var resp struct {
		Success bool          `json:"success"`
		Data    models.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Normal", resp.Data.Class)
	assert.Equal(t, "93.0%", resp.Data.ConfidenceP)
}

func TestPredictErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unsupported format", fmt.Errorf("%w: \"txt\"", models.ErrUnsupportedFormat), http.StatusBadRequest},
		{"payload too large", models.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"corrupt image", models.ErrCorruptImage, http.StatusBadRequest},
		{"inference failure", fmt.Errorf("%w: onnx runtime", models.ErrInference), http.StatusInternalServerError},
		{"canceled request", context.Canceled, http.StatusRequestTimeout},
		{"deadline exceeded", context.DeadlineExceeded, http.StatusRequestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := predictRouter(&fakeProcessor{err: tt.err})
			body, contentType := multipartUpload(t, "file", "face.jpg", []byte("data"))

			rec := doPredict(t, router, body, contentType, true)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp models.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPredictInferenceErrorHidesInternals(t *testing.T) {
	router := predictRouter(&fakeProcessor{err: fmt.Errorf("%w: tensor shape [1 3 224 224]", models.ErrInference)})
	body, contentType := multipartUpload(t, "file", "face.jpg", []byte("data"))

	rec := doPredict(t, router, body, contentType, true)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrInference.Error(), resp.Error)
}
