package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

type response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func newResponse(data any) response {
	return response{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    "Success",
		Success:    true,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		errx = errorx.Unknown
	}

	return response{
		StatusCode: errorx.HTTPStatus(errx.Code),
		Message:    errx.Message,
		Success:    false,
	}
}

// writeResponse renders the envelope. Nothing is written when the
// response was consumed by an after-middleware (redirects), the headers
// are already gone to the client in that case.
func writeResponse(ctx context.Context) {
	if err := xcontext.Error(ctx); err != nil {
		resp := newErrorResponse(err)
		if err := writeJSON(ctx, resp.StatusCode, resp); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the error response: %v", err)
		}
		return
	}

	resp := xcontext.Response(ctx)
	if resp == nil {
		return
	}

	if err := writeJSON(ctx, http.StatusOK, newResponse(resp)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func writeJSON(ctx context.Context, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w := xcontext.HTTPWriter(ctx)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(b); err != nil {
		return err
	}

	return nil
}
