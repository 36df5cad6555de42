package mercari

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "mercari-search/internal/common/errors"
	"mercari-search/internal/common/logger"
)

// Signer produces the opaque proof token attached to every outbound
// request. It must be called once per request with that request's exact
// final URL, query string included for GET.
type Signer interface {
	Sign(method, url, requestID string) (string, error)
}

// Doer is the transport collaborator: it performs one HTTP call with a
// fixed content type and returns the decoded JSON document, failing on
// any non-2xx status.
type Doer interface {
	GetJSON(ctx context.Context, rawURL string, query map[string]interface{}) (map[string]interface{}, error)
	PostJSON(ctx context.Context, rawURL string, body map[string]interface{}) (map[string]interface{}, error)
}

// Client is the production Doer. It signs every request, sets the
// marketplace's required headers and distinguishes the 401 case for
// diagnostic logging. It performs no retries.
type Client struct {
	httpClient *http.Client
	signer     Signer
	userAgent  string
	logger     logger.Logger
}

func NewClient(timeout time.Duration, signer Signer, userAgent string, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		signer:     signer,
		userAgent:  userAgent,
		logger:     log,
	}
}

func (c *Client) GetJSON(ctx context.Context, rawURL string, query map[string]interface{}) (map[string]interface{}, error) {
	fullURL := rawURL
	if len(query) > 0 {
		fullURL = rawURL + "?" + encodeQuery(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, apperrors.NewTransportError(0, fullURL, err)
	}

	// The proof token covers the final URL, query string included.
	if err := c.sign(req, fullURL); err != nil {
		return nil, err
	}

	return c.do(req, fullURL)
}

func (c *Client) PostJSON(ctx context.Context, rawURL string, body map[string]interface{}) (map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.NewTransportError(0, rawURL, fmt.Errorf("marshal request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewTransportError(0, rawURL, err)
	}

	if err := c.sign(req, rawURL); err != nil {
		return nil, err
	}

	return c.do(req, rawURL)
}

func (c *Client) sign(req *http.Request, fullURL string) error {
	requestID := uuid.NewString()
	token, err := c.signer.Sign(req.Method, fullURL, requestID)
	if err != nil {
		return apperrors.NewTransportError(0, fullURL, fmt.Errorf("sign request: %w", err))
	}

	req.Header.Set("DPOP", token)
	req.Header.Set("X-Platform", "web")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "deflate, gzip")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", c.userAgent)
	return nil
}

func (c *Client) do(req *http.Request, fullURL string) (map[string]interface{}, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(0, fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("authentication failed", map[string]interface{}{
			"url":    fullURL,
			"status": resp.StatusCode,
		})
		return nil, apperrors.NewAuthError(fullURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewTransportError(resp.StatusCode, fullURL,
			fmt.Errorf("unexpected status: %s", string(body)))
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Path:   ".",
			Kind:   apperrors.FieldTypeMismatch,
			Detail: fmt.Sprintf("response is not a JSON object: %v", err),
		})
	}
	return doc, nil
}

// encodeQuery serializes GET query parameters. Booleans are rendered
// lowercase; the remote endpoint rejects capitalized boolean literals.
func encodeQuery(query map[string]interface{}) string {
	values := url.Values{}
	for k, v := range query {
		switch val := v.(type) {
		case bool:
			values.Set(k, strconv.FormatBool(val))
		case string:
			values.Set(k, val)
		case int:
			values.Set(k, strconv.Itoa(val))
		case int64:
			values.Set(k, strconv.FormatInt(val, 10))
		case float64:
			values.Set(k, strconv.FormatFloat(val, 'f', -1, 64))
		default:
			values.Set(k, fmt.Sprintf("%v", val))
		}
	}
	return values.Encode()
}
