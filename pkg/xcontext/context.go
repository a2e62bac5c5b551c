package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/readmegen-lab/backend/config"
	"github.com/readmegen-lab/backend/pkg/logger"
	"github.com/readmegen-lab/backend/pkg/session"
	"github.com/readmegen-lab/backend/pkg/token"
	"gorm.io/gorm"
)

type (
	configsKey            struct{}
	loggerKey             struct{}
	dbKey                 struct{}
	txKey                 struct{}
	accessTokenEngineKey  struct{}
	refreshTokenEngineKey struct{}
	sessionStoreKey       struct{}
	httpClientKey         struct{}
	httpRequestKey        struct{}
	httpWriterKey         struct{}
	startTimeKey          struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		return cfg
	}
	return config.Configs{}
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}
	return logger.NewLogger(logger.SILENCE)
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the transaction opened by WithDBTransaction if one is
// pending, otherwise the root gorm.DB.
func DB(ctx context.Context) *gorm.DB {
	if h, ok := ctx.Value(txKey{}).(*txHolder); ok && !h.done {
		return h.tx
	}

	if db, ok := ctx.Value(dbKey{}).(*gorm.DB); ok {
		return db
	}
	return nil
}

type txHolder struct {
	tx   *gorm.DB
	done bool
}

func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &txHolder{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	if h, ok := ctx.Value(txKey{}).(*txHolder); ok && !h.done {
		h.tx.Commit()
		h.done = true
	}
	return ctx
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if h, ok := ctx.Value(txKey{}).(*txHolder); ok && !h.done {
		h.tx.Rollback()
		h.done = true
	}
	return ctx
}

func WithAccessTokenEngine(ctx context.Context, engine token.Engine) context.Context {
	return context.WithValue(ctx, accessTokenEngineKey{}, engine)
}

func AccessTokenEngine(ctx context.Context) token.Engine {
	engine, _ := ctx.Value(accessTokenEngineKey{}).(token.Engine)
	return engine
}

func WithRefreshTokenEngine(ctx context.Context, engine token.Engine) context.Context {
	return context.WithValue(ctx, refreshTokenEngineKey{}, engine)
}

func RefreshTokenEngine(ctx context.Context) token.Engine {
	engine, _ := ctx.Value(refreshTokenEngineKey{}).(token.Engine)
	return engine
}

func WithSessionStore(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, sessionStoreKey{}, store)
}

func SessionStore(ctx context.Context) *session.Store {
	store, _ := ctx.Value(sessionStoreKey{}).(*session.Store)
	return store
}

func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, client)
}

func HTTPClient(ctx context.Context) *http.Client {
	if client, ok := ctx.Value(httpClientKey{}).(*http.Client); ok {
		return client
	}
	return http.DefaultClient
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

func HTTPRequest(ctx context.Context) *http.Request {
	r, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return r
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(httpWriterKey{}).(http.ResponseWriter)
	return w
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}
