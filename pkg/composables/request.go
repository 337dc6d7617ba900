package composables

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/pkg/constants"
	"github.com/oneacrefund/fieldops-console/pkg/shared"
)

var (
	ErrNoLogger  = errors.New("logger not found")
	ErrNoSession = errors.New("session not found")
)

// Params is the per-request bundle the request-params middleware stores
// in the context so handlers and services can reach the raw request
// without threading it through every call.
type Params struct {
	IP            string
	UserAgent     string
	Authenticated bool
	Request       *http.Request
	Writer        http.ResponseWriter
}

func WithParams(ctx context.Context, params *Params) context.Context {
	return context.WithValue(ctx, constants.ParamsKey, params)
}

func UseParams(ctx context.Context) (*Params, bool) {
	params, ok := ctx.Value(constants.ParamsKey).(*Params)
	return params, ok
}

func UseWriter(ctx context.Context) (http.ResponseWriter, bool) {
	if params, ok := UseParams(ctx); ok {
		return params.Writer, true
	}
	return nil, false
}

func UseIP(ctx context.Context) (string, bool) {
	if params, ok := UseParams(ctx); ok {
		return params.IP, true
	}
	return "", false
}

func UseUserAgent(ctx context.Context) (string, bool) {
	if params, ok := UseParams(ctx); ok {
		return params.UserAgent, true
	}
	return "", false
}

// UseAuthenticated reports whether the request carried a valid session
// when the params middleware ran. Missing params count as anonymous.
func UseAuthenticated(ctx context.Context) bool {
	params, ok := UseParams(ctx)
	return ok && params.Authenticated
}

// UseLogger returns the per-request log entry injected by the logging
// middleware. Panics when called outside a request, which always means
// a middleware-ordering bug rather than a runtime condition.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		panic("logger not found")
	}
	return logger.(*logrus.Entry)
}

// UseQuery decodes the URL query into v with the shared form decoder.
func UseQuery[T comparable](v T, r *http.Request) (T, error) {
	return v, shared.Decoder.Decode(v, r.URL.Query())
}

// UseForm parses and decodes the request form into v.
func UseForm[T comparable](v T, r *http.Request) (T, error) {
	if err := r.ParseForm(); err != nil {
		return v, err
	}
	return v, shared.Decoder.Decode(v, r.Form)
}

// GetLastQueryParam returns the last occurrence of a query parameter.
// Browsers append rather than replace on some navigations, so the last
// value is the current one.
func GetLastQueryParam(r *http.Request, key string) string {
	if values := r.URL.Query()[key]; len(values) > 0 {
		return values[len(values)-1]
	}
	return ""
}

// GetLastQueryParams applies the same last-wins rule to several keys.
func GetLastQueryParams(r *http.Request, keys ...string) map[string]string {
	result := make(map[string]string, len(keys))
	query := r.URL.Query()
	for _, key := range keys {
		if values := query[key]; len(values) > 0 {
			result[key] = values[len(values)-1]
		}
	}
	return result
}
