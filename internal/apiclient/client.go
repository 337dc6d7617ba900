package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CredentialProvider supplies the bearer token attached to every upstream
// call. It is passed in explicitly rather than read from ambient state so
// call sites declare their dependency on the session.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticCredential is a fixed-token provider, used by tests and one-off
// scripts.
type StaticCredential string

func (s StaticCredential) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// KeepSide identifies which record of a duplicate pair to retain.
type KeepSide string

const (
	KeepOld KeepSide = "old"
	KeepNew KeepSide = "new"
)

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials CredentialProvider
	Logger      *logrus.Logger

	// HTTPClient overrides the default transport, primarily for tests.
	HTTPClient *http.Client
}

// Client talks to the upstream program API. All real business logic lives
// behind it; the console only caches what it returns.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialProvider
	logger  *logrus.Logger
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		creds:   opts.Credentials,
		logger:  logger,
	}
}

// GetCollection fetches GET /{resource} and decodes the envelope data array
// into out.
func (c *Client) GetCollection(ctx context.Context, resource string, out any) error {
	return c.do(ctx, http.MethodGet, "/"+resource, nil, c.decodeEnvelope(out))
}

// GetResource fetches GET /{resource}/{id}.
func (c *Client) GetResource(ctx context.Context, resource, id string, out any) error {
	return c.do(ctx, http.MethodGet, resourcePath(resource, id), nil, c.decodeEnvelope(out))
}

// Create issues POST /{resource}. When out is non-nil the created record is
// decoded into it.
func (c *Client) Create(ctx context.Context, resource string, body, out any) error {
	return c.do(ctx, http.MethodPost, "/"+resource, body, c.decodeEnvelope(out))
}

// Update issues PUT /{resource}/{id}.
func (c *Client) Update(ctx context.Context, resource, id string, body any) error {
	return c.do(ctx, http.MethodPut, resourcePath(resource, id), body, nil)
}

// Patch issues PATCH /{resource}/{id}, used by single-field status
// transitions (device post/unpost, project open/close).
func (c *Client) Patch(ctx context.Context, resource, id string, body any) error {
	return c.do(ctx, http.MethodPatch, resourcePath(resource, id), body, nil)
}

// Delete issues DELETE /{resource}/{id}.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	return c.do(ctx, http.MethodDelete, resourcePath(resource, id), nil, nil)
}

// GetDuplicates fetches a page of potential duplicate pairs. The listing uses
// its own response shape rather than the common envelope.
func (c *Client) GetDuplicates(ctx context.Context, page, perPage int, out any) (int, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("per_page", fmt.Sprintf("%d", perPage))
	currentPage := 0
	err := c.do(ctx, http.MethodGet, "/farmer/potential/duplicates?"+q.Encode(), nil, func(body []byte) error {
		var env duplicatesEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return errors.Wrap(err, "decoding duplicates response")
		}
		currentPage = env.PotentialDuplicates.CurrentPage
		if out == nil || len(env.PotentialDuplicates.Data) == 0 {
			return nil
		}
		return errors.Wrap(json.Unmarshal(env.PotentialDuplicates.Data, out), "decoding duplicate pairs")
	})
	return currentPage, err
}

// KeepDuplicate resolves a duplicate pair, retaining the record on the given
// side. The upstream owns the resulting canonical record; no local merge is
// attempted.
func (c *Client) KeepDuplicate(ctx context.Context, side KeepSide, farmer1ID, farmer2ID string) error {
	path := fmt.Sprintf("/farmer/keep/%s/data", side)
	return c.do(ctx, http.MethodPost, path, &keepRequest{
		Farmer1ID: farmer1ID,
		Farmer2ID: farmer2ID,
	}, nil)
}

// Ping issues a minimal request to verify the upstream is reachable. A 404
// from the base path still proves reachability.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/", nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func resourcePath(resource, id string) string {
	return "/" + resource + "/" + url.PathEscape(id)
}

func (c *Client) decodeEnvelope(out any) func([]byte) error {
	return func(body []byte) error {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return errors.Wrap(err, "decoding response envelope")
		}
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		return errors.Wrap(json.Unmarshal(env.Data, out), "decoding response data")
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, decode func([]byte) error) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrMissingCredential
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(method, "transport_error").Inc()
		classified := classifyTransportError(err)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Warn("upstream request failed")
		return classified
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(method, "transport_error").Inc()
		return classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestsTotal.WithLabelValues(method, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return &RejectionError{
			StatusCode: resp.StatusCode,
			Message:    rejectionMessage(respBody),
		}
	}

	requestsTotal.WithLabelValues(method, "ok").Inc()
	if decode == nil {
		return nil
	}
	return decode(respBody)
}

// rejectionMessage pulls the backend-provided message out of an error body
// where available.
func rejectionMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}
