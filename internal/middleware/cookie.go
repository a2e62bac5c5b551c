package middleware

import (
	"context"
	"net/http"

	"github.com/readmegen-lab/backend/pkg/router"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

type CookieResponse interface {
	CookieInfo(ctx context.Context) []http.Cookie
}

// HandleSetCookies writes the cookies of responses implementing
// CookieResponse. Must run before HandleRedirect, headers are flushed
// by the redirect.
func HandleSetCookies() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		cookieResp, ok := xcontext.Response(ctx).(CookieResponse)
		if !ok {
			return nil, nil
		}

		for _, cookie := range cookieResp.CookieInfo(ctx) {
			c := cookie
			http.SetCookie(xcontext.HTTPWriter(ctx), &c)
		}

		return nil, nil
	}
}
