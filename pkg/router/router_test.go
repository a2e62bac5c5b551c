package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Value string `json:"value"`
}

type echoResponse struct {
	Value string `json:"value"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func Test_Router_SuccessEnvelope(t *testing.T) {
	r := New(context.Background())
	GET(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Value: req.Value}, nil
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo?value=hello", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, float64(200), envelope["statusCode"])
	require.Equal(t, true, envelope["success"])
	require.Equal(t, "Success", envelope["message"])
	require.Equal(t, "hello", envelope["data"].(map[string]any)["value"])
}

func Test_Router_ErrorEnvelope(t *testing.T) {
	r := New(context.Background())
	GET(r, "/fail", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, errorx.New(errorx.NotFound, "Not found something")
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, float64(404), envelope["statusCode"])
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "Not found something", envelope["message"])
	require.NotContains(t, envelope, "data")
}

// Internal errors must not leak their details to the client.
func Test_Router_UnknownErrorEnvelope(t *testing.T) {
	r := New(context.Background())
	GET(r, "/boom", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, context.DeadlineExceeded
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "Request failed", envelope["message"])
}

func Test_Router_MethodNotSupported(t *testing.T) {
	r := New(context.Background())
	GET(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{}, nil
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, false, envelope["success"])
}

func Test_Router_BeforeMiddlewareAborts(t *testing.T) {
	r := New(context.Background())
	r.Before(func(ctx context.Context) (context.Context, error) {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	})

	handled := false
	GET(r, "/private", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		handled = true
		return &echoResponse{}, nil
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))

	require.False(t, handled)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
