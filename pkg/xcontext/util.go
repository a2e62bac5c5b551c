package xcontext

import (
	"context"

	"github.com/readmegen-lab/backend/internal/entity"
)

type (
	requestUserIDKey struct{}
	requestUserKey   struct{}
	responseKey      struct{}
	errorKey         struct{}
)

// Response and error are stored behind holders so that after-middlewares
// and closers observe what the handler set without threading a new
// context through the router.
type holder struct {
	value any
}

func WithResponseHolder(ctx context.Context) context.Context {
	return context.WithValue(ctx, responseKey{}, &holder{})
}

func SetResponse(ctx context.Context, resp any) {
	if h, ok := ctx.Value(responseKey{}).(*holder); ok {
		h.value = resp
	}
}

func Response(ctx context.Context) any {
	if h, ok := ctx.Value(responseKey{}).(*holder); ok {
		return h.value
	}
	return nil
}

func WithErrorHolder(ctx context.Context) context.Context {
	return context.WithValue(ctx, errorKey{}, &holder{})
}

func SetError(ctx context.Context, err error) {
	if h, ok := ctx.Value(errorKey{}).(*holder); ok {
		h.value = err
	}
}

func Error(ctx context.Context) error {
	if h, ok := ctx.Value(errorKey{}).(*holder); ok && h.value != nil {
		return h.value.(error)
	}
	return nil
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(requestUserIDKey{}).(string)
	return id
}

// WithRequestUser attaches the user loaded by the auth middleware. The
// encrypted provider token never travels with it, handlers receive the
// entity as stored minus secrets via model conversion.
func WithRequestUser(ctx context.Context, user *entity.User) context.Context {
	ctx = WithRequestUserID(ctx, user.ID)
	return context.WithValue(ctx, requestUserKey{}, user)
}

func RequestUser(ctx context.Context) *entity.User {
	user, _ := ctx.Value(requestUserKey{}).(*entity.User)
	return user
}
