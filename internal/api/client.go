// Package api is the VitaShop client for the profile endpoints of the REST
// backend. It translates HTTP outcomes into the typed errors the profile
// engine understands and never retries on its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/vitashop/vitashop/internal/media"
	"github.com/vitashop/vitashop/internal/models"
	"github.com/vitashop/vitashop/internal/util"
)

// Endpoint paths, relative to the base URL.
const (
	PathProfile        = "/profile/"
	PathProfilePicture = "/profile/picture/"
	PathDeleteAccount  = "/auth/delete-account/"
)

// PictureField is the multipart field name for picture uploads.
const PictureField = "profile_picture"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// TokenProvider supplies the bearer token for each request. The client only
// reads tokens; it never refreshes or stores them.
type TokenProvider interface {
	AccessToken() (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger

	// RequestID generates the X-Request-ID header. Defaults to a UUID.
	RequestID func() string
}

// Client calls the profile endpoints.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenProvider
	logger    *slog.Logger
	requestID func() string
}

// NewClient creates a client for the backend at opts.BaseURL.
func NewClient(tokens TokenProvider, opts Options) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token provider is required")
	}

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	requestID := opts.RequestID
	if requestID == nil {
		requestID = util.NewRequestID
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		tokens:    tokens,
		logger:    logger,
		requestID: requestID,
	}, nil
}

// FetchProfile retrieves the current user's profile.
func (c *Client) FetchProfile(ctx context.Context) (*models.Profile, error) {
	const op = "fetch profile"

	resp, err := c.do(ctx, op, http.MethodGet, PathProfile, "", nil)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.status == http.StatusNotFound:
		return nil, ErrNotFound
	case !resp.ok():
		return nil, resp.transportError(op)
	}

	var profile models.Profile
	if err := json.Unmarshal(resp.body, &profile); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decoding profile: %w", err)}
	}

	return &profile, nil
}

// SaveProfile submits the editable fields and returns the updated profile.
func (c *Client) SaveProfile(ctx context.Context, payload models.ProfilePayload) (*models.Profile, error) {
	const op = "save profile"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("encoding payload: %w", err)}
	}

	resp, err := c.do(ctx, op, http.MethodPut, PathProfile, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.status == http.StatusBadRequest || resp.status == http.StatusUnprocessableEntity:
		fields, ok := parseFieldErrors(resp.body)
		if !ok {
			return nil, resp.transportError(op)
		}
		return nil, &ValidationRejectedError{Fields: fields}
	case !resp.ok():
		return nil, resp.transportError(op)
	}

	var profile models.Profile
	if err := json.Unmarshal(resp.body, &profile); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decoding profile: %w", err)}
	}

	return &profile, nil
}

// UploadPicture sends a new profile picture. Type and size policy is the
// caller's responsibility.
func (c *Client) UploadPicture(ctx context.Context, file media.File) (*models.Profile, error) {
	const op = "upload picture"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, PictureField, file.Name))
	header.Set("Content-Type", file.MIME)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("creating form part: %w", err)}
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("writing form part: %w", err)}
	}
	if err := w.Close(); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("closing form: %w", err)}
	}

	resp, err := c.do(ctx, op, http.MethodPost, PathProfilePicture, w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, resp.transportError(op)
	}

	var envelope struct {
		Profile *models.Profile `json:"profile"`
	}
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if envelope.Profile == nil {
		return nil, &TransportError{Op: op, Err: errors.New("response has no profile")}
	}

	return envelope.Profile, nil
}

// DeleteAccount permanently deletes the user's account. It is destructive
// and must not be retried automatically.
func (c *Client) DeleteAccount(ctx context.Context) error {
	const op = "delete account"

	resp, err := c.do(ctx, op, http.MethodDelete, PathDeleteAccount, "", nil)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return resp.transportError(op)
	}

	return nil
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) transportError(op string) *TransportError {
	return &TransportError{
		Op:      op,
		Status:  r.status,
		Message: parseMessage(r.body),
	}
}

// do sends an authenticated request and reads the whole response body.
// Missing tokens fail with ErrUnauthorized before any network traffic.
func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader) (*response, error) {
	token, err := c.tokens.AccessToken()
	if err != nil || token == "" {
		return nil, ErrUnauthorized
	}

	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("building request: %w", err)}
	}

	reqID := c.requestID()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			"op", op,
			"request_id", reqID,
			"error", err,
		)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Status: res.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", res.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	return &response{status: res.StatusCode, body: data}, nil
}
