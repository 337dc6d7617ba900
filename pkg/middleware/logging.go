package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/oneacrefund/fieldops-console/pkg/configuration"
	"github.com/oneacrefund/fieldops-console/pkg/constants"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
)

var tracer = otel.Tracer("fieldops-console-middleware")

type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	// MaxBodyLength caps the number of body bytes that end up in a log
	// line. Bodies past the cap are truncated, never dropped.
	MaxBodyLength int
	// Repanic rethrows after the recovery handler has written its
	// response, for tests that assert on the panic itself.
	Repanic bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  true,
		LogResponseBody: false,
		MaxBodyLength:   512,
	}
}

// statusWriter records the status code and a copy of the body while
// delegating to the real writer. Flush and Hijack pass through so SSE
// and the websocket upgrade keep working behind the logger.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w}
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func clientIP(r *http.Request, conf *configuration.Configuration) string {
	if ip := r.Header.Get(conf.RealIPHeader); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func requestID(r *http.Request, conf *configuration.Configuration) string {
	if id := r.Header.Get(conf.RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// redactHeaders flattens headers for logging, masking the two that
// carry credentials.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if key == "Authorization" || key == "Cookie" {
			out[key] = "[redacted]"
			continue
		}
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}

func flattenForm(f url.Values) map[string]string {
	out := make(map[string]string, len(f))
	for key, values := range f {
		out[key] = strings.Join(values, ",")
	}
	return out
}

func loggableContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "application/x-www-form-urlencoded")
}

func truncate(b []byte, limit int) []byte {
	if limit > 0 && len(b) > limit {
		return b[:limit]
	}
	return b
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// TracedMiddleware wraps a named middleware in its own span so slow
// links in the chain show up in traces individually.
func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := propagation.TraceContext{}
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(
				ctx,
				"middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
					attribute.String("http.host", r.Host),
				),
			)
			defer span.End()

			propagator.Inject(ctx, propagation.HeaderCarrier(r.Header))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// captureRequestBody reads the body into memory, restores it for the
// handler and logs the parsed form. Returns false after writing an
// error response when the body cannot be read or parsed.
func captureRequestBody(w http.ResponseWriter, r *http.Request, entry *logrus.Entry, limit int) bool {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		entry.WithError(err).Error("failed to read request-body")
		http.Error(w, "failed to read request-body", http.StatusInternalServerError)
		return false
	}
	r.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/json"):
		var parsed any
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			entry.WithError(err).Error("failed to parse JSON request-body")
			http.Error(w, "failed to parse JSON request-body", http.StatusBadRequest)
			return false
		}
		entry.WithField("request-body", string(truncate(buf.Bytes(), limit))).Info("JSON request-body parsed")
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			entry.WithError(err).Error("failed to parse form-urlencoded request-body")
			http.Error(w, "failed to parse form-urlencoded request-body", http.StatusBadRequest)
			return false
		}
		entry.WithField("request-body", flattenForm(r.Form)).Info("form-urlencoded request-body parsed")
	}
	return true
}

// WithLogger is the outermost request middleware: it assigns a request
// id, opens the http.request span, injects the per-request log entry
// under constants.LoggerKey and recovers panics into a JSON error
// response instead of a dropped connection.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := requestID(r, conf)

			entry := logger.WithFields(logrus.Fields{
				"request-id": reqID,
				"path":       r.RequestURI,
				"method":     r.Method,
			})

			entry.WithFields(logrus.Fields{
				"timestamp":       start.UnixNano(),
				"host":            r.Host,
				"ip":              clientIP(r, conf),
				"user-agent":      r.UserAgent(),
				"request-headers": redactHeaders(r.Header),
			}).Info("request started")

			if opts.LogRequestBody && isMutating(r.Method) && r.Body != nil &&
				loggableContentType(r.Header.Get("Content-Type")) {
				if !captureRequestBody(w, r, entry, opts.MaxBodyLength) {
					return
				}
			}

			propagator := propagation.TraceContext{}
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(
				ctx,
				"http.request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
					attribute.String("http.route", r.URL.Path),
					attribute.String("http.user_agent", r.UserAgent()),
					attribute.String("http.request_id", reqID),
					attribute.String("net.host.name", r.Host),
					attribute.String("net.peer.ip", clientIP(r, conf)),
				),
			)
			defer span.End()

			ctx = context.WithValue(ctx, constants.LoggerKey, entry)
			ctx = context.WithValue(ctx, constants.RequestStart, start)

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			if sc := span.SpanContext(); sc.HasTraceID() {
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
				w.Header().Set("X-Span-Id", sc.SpanID().String())
				entry = entry.WithFields(logrus.Fields{
					"trace-id": sc.TraceID().String(),
					"span-id":  sc.SpanID().String(),
				})
			}
			w.Header().Set("X-Request-Id", reqID)

			sw := newStatusWriter(w)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				fields := logrus.Fields{
					"panic":       recovered,
					"stack":       string(debug.Stack()),
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": clientIP(r, conf),
					"user_agent":  r.UserAgent(),
					"status":      http.StatusInternalServerError,
					"duration":    time.Since(start),
				}
				if r.URL.RawQuery != "" {
					fields["query"] = r.URL.RawQuery
				}
				if ct := r.Header.Get("Content-Type"); ct != "" {
					fields["content_type"] = ct
				}
				entry.WithFields(fields).Error("panic recovered in request handler")

				if !sw.wroteHeader {
					_ = httpapi.WriteError(sw, http.StatusInternalServerError,
						"INTERNAL_SERVER_ERROR", "internal server error",
						map[string]string{
							"request_id": reqID,
							"path":       r.URL.Path,
						})
				}
				if opts.Repanic {
					panic(recovered)
				}
			}()

			next.ServeHTTP(sw, r.WithContext(ctx))

			status := sw.Status()
			duration := time.Since(start)
			entry.WithFields(logrus.Fields{
				"duration":         duration,
				"completed":        true,
				"status-code":      status,
				"status-class":     status / 100,
				"response-headers": redactHeaders(sw.Header()),
			}).Info("request completed")

			span.SetAttributes(
				attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
				attribute.Int("http.status_code", status),
			)

			if opts.LogResponseBody && strings.Contains(sw.Header().Get("Content-Type"), "application/json") {
				body := sw.body.Bytes()
				if json.Valid(body) {
					entry.WithField("response-body", string(truncate(body, opts.MaxBodyLength))).Info("response-body")
				}
			}
		})
	}
}
