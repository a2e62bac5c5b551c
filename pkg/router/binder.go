package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/mitchellh/mapstructure"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

func bindRequest(ctx context.Context, method string, obj any) error {
	switch method {
	case http.MethodGet:
		if err := bindQuery(ctx, obj); err != nil {
			return err
		}
	case http.MethodPost:
		if err := bindBody(ctx, obj); err != nil {
			return err
		}
	}

	return bindSession(ctx, obj)
}

func bindQuery(ctx context.Context, obj any) error {
	values := map[string]any{}
	for key, value := range xcontext.HTTPRequest(ctx).URL.Query() {
		if len(value) > 0 {
			values[key] = value[0]
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           obj,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}

func bindBody(ctx context.Context, obj any) error {
	body, err := io.ReadAll(xcontext.HTTPRequest(ctx).Body)
	if err != nil {
		return err
	}

	if len(body) == 0 {
		return nil
	}

	return json.Unmarshal(body, obj)
}

// bindSession fills fields tagged with `session:"name"` from the cookie
// session. A ",delete" option removes the value after binding, so
// one-shot values like the oauth state cannot be replayed.
func bindSession(ctx context.Context, obj any) error {
	store := xcontext.SessionStore(ctx)
	if store == nil {
		return nil
	}

	value := reflect.ValueOf(obj).Elem()
	if value.Kind() != reflect.Struct {
		return errors.New("object must be a pointer of struct")
	}

	var session *sessions.Session
	changed := false
	for i := 0; i < value.NumField(); i++ {
		tag := value.Type().Field(i).Tag.Get("session")
		if tag == "" {
			continue
		}

		name, opt, _ := strings.Cut(tag, ",")
		if session == nil {
			// A decoding error gives a fresh session, which binds to
			// zero values and fails the state check downstream.
			session, _ = store.Get(xcontext.HTTPRequest(ctx))
			if session == nil {
				continue
			}
		}

		if raw, ok := session.Values[name]; ok {
			if s, ok := raw.(string); ok && value.Field(i).Kind() == reflect.String {
				value.Field(i).SetString(s)
			}

			if opt == "delete" {
				delete(session.Values, name)
				changed = true
			}
		}
	}

	if changed {
		return store.Save(xcontext.HTTPRequest(ctx), xcontext.HTTPWriter(ctx), session)
	}

	return nil
}
