package router

import (
	"context"
	"net/http"
	"time"

	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc may replace the request context by returning a non-nil
// one. Returning an error aborts the chain and renders the error
// envelope.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, for logging and
// metrics.
type CloserFunc func(ctx context.Context)

type Router struct {
	root context.Context
	mux  *http.ServeMux

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

// New creates a root router. The given context carries configs, logger,
// database and token engines for every request.
func New(root context.Context) *Router {
	return &Router{
		root: root,
		mux:  http.NewServeMux(),
	}
}

// Branch returns a router sharing the same mux but with an independent
// middleware chain.
func (r *Router) Branch() *Router {
	branch := &Router{
		root: r.root,
		mux:  r.mux,
	}
	branch.befores = append(branch.befores, r.befores...)
	branch.afters = append(branch.afters, r.afters...)
	branch.closers = append(branch.closers, r.closers...)
	return branch
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}

func wrapHandler[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	befores := r.befores
	afters := r.afters
	closers := r.closers

	return func(w http.ResponseWriter, req *http.Request) {
		ctx := xcontext.WithHTTPRequest(r.root, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)
		ctx = xcontext.WithResponseHolder(ctx)
		ctx = xcontext.WithErrorHolder(ctx)
		ctx = xcontext.WithStartTime(ctx, time.Now())

		err := func() error {
			if req.Method != method {
				return errorx.New(errorx.BadRequest, "Not supported method %s", req.Method)
			}

			var request Request
			if err := bindRequest(ctx, method, &request); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return errorx.New(errorx.BadRequest, "Cannot bind the request")
			}

			for _, middleware := range befores {
				newCtx, err := middleware(ctx)
				if err != nil {
					return err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			response, err := handler(ctx, &request)
			if err != nil {
				return err
			}

			xcontext.SetResponse(ctx, response)

			for _, middleware := range afters {
				newCtx, err := middleware(ctx)
				if err != nil {
					return err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			return nil
		}()

		if err != nil {
			xcontext.SetError(ctx, err)
		}

		writeResponse(ctx)

		for _, closer := range closers {
			closer(ctx)
		}
	}
}
