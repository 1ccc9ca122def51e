package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/middleware"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

// stubCaixaService returns canned results per method; nil errors fall back
// to the ok payloads.
type stubCaixaService struct {
	openResp   *dto.RegisterResponse
	openErr    error
	closeResp  *dto.RegisterReportResponse
	closeErr   error
	statusResp *dto.RegisterResponse
	statusErr  error
}

func (s *stubCaixaService) Open(context.Context, dto.OpenRegisterRequest) (*dto.RegisterResponse, error) {
	return s.openResp, s.openErr
}

func (s *stubCaixaService) Close(context.Context, uuid.UUID, dto.CloseRegisterRequest) (*dto.RegisterReportResponse, error) {
	return s.closeResp, s.closeErr
}

func (s *stubCaixaService) RecordMovement(context.Context, uuid.UUID, dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	return &dto.MovementResponse{}, nil
}

func (s *stubCaixaService) SettleOrder(context.Context, uuid.UUID, uuid.UUID) (*dto.MovementResponse, error) {
	return &dto.MovementResponse{}, nil
}

func (s *stubCaixaService) Status(context.Context) (*dto.RegisterResponse, error) {
	return s.statusResp, s.statusErr
}

func (s *stubCaixaService) Report(context.Context, uuid.UUID) (*dto.RegisterReportResponse, error) {
	return s.closeResp, s.closeErr
}

func (s *stubCaixaService) History(context.Context, int, int) (*dto.RegisterListResponse, error) {
	return &dto.RegisterListResponse{}, nil
}

const testSecret = "test-secret"

func newTestRouter(svc *stubCaixaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCaixaHandler(svc)
	authed := r.Group("/", middleware.JWTAuth(testSecret))
	authed.POST("/caixa/open", h.Open)
	authed.POST("/caixa/:id/close", h.Close)
	authed.GET("/caixa/status", h.Status)
	return r
}

func testToken(t *testing.T) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "operador",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMissingTokenRejected(t *testing.T) {
	r := newTestRouter(&stubCaixaService{})

	w := doRequest(t, r, http.MethodGet, "/caixa/status", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "unauthorized", envelope["kind"])
}

func TestStatusNoContentWhenNoneOpen(t *testing.T) {
	r := newTestRouter(&stubCaixaService{})

	w := doRequest(t, r, http.MethodGet, "/caixa/status", nil, testToken(t))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOpenConflictMapsToValidation(t *testing.T) {
	r := newTestRouter(&stubCaixaService{openErr: model.ErrRegisterAlreadyOpen})

	body := map[string]interface{}{"openingBalance": "100.00"}
	w := doRequest(t, r, http.MethodPost, "/caixa/open", body, testToken(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "validation", envelope["kind"])
	assert.Equal(t, "já existe um caixa aberto", envelope["detail"])
}

func TestCloseAlreadyClosedMapsToConflict(t *testing.T) {
	r := newTestRouter(&stubCaixaService{closeErr: model.ErrRegisterAlreadyClosed})

	w := doRequest(t, r, http.MethodPost, "/caixa/"+uuid.NewString()+"/close", map[string]interface{}{}, testToken(t))
	assert.Equal(t, http.StatusConflict, w.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "conflict", envelope["kind"])
}

func TestCloseUnknownMapsToNotFound(t *testing.T) {
	r := newTestRouter(&stubCaixaService{closeErr: model.ErrRegisterNotFound})

	w := doRequest(t, r, http.MethodPost, "/caixa/"+uuid.NewString()+"/close", map[string]interface{}{}, testToken(t))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCloseRejectsMalformedID(t *testing.T) {
	r := newTestRouter(&stubCaixaService{})

	w := doRequest(t, r, http.MethodPost, "/caixa/not-a-uuid/close", map[string]interface{}{}, testToken(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
