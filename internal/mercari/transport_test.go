package mercari

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercari-search/internal/common/errors"
	"mercari-search/internal/common/logger"
)

const testUserAgent = "mercari-search-test/1.0"

// recordingSigner captures what it was asked to sign.
type recordingSigner struct {
	method string
	url    string
	ids    []string
}

func (r *recordingSigner) Sign(method, url, requestID string) (string, error) {
	r.method = method
	r.url = url
	r.ids = append(r.ids, requestID)
	return "signed-proof-token", nil
}

func newTestClient(t *testing.T, signer Signer) *Client {
	t.Helper()
	return NewClient(5*time.Second, signer, testUserAgent, logger.NewTestLogger(t))
}

func TestClient_GetJSON_BooleansLowercased(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "true", r.URL.Query().Get("include_auction"))
		assert.Equal(t, "m1", r.URL.Query().Get("id"))
		w.Write([]byte(`{"result":"OK"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, &recordingSigner{})
	doc, err := client.GetJSON(context.Background(), srv.URL, map[string]interface{}{
		"id":              "m1",
		"include_auction": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "OK", doc["result"])
	assert.Contains(t, gotQuery, "include_auction=true")
	assert.NotContains(t, gotQuery, "True")
}

func TestClient_GetJSON_SignsFinalURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	signer := &recordingSigner{}
	client := newTestClient(t, signer)
	_, err := client.GetJSON(context.Background(), srv.URL, map[string]interface{}{
		"id": "m1",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, signer.method)
	assert.Equal(t, srv.URL+"?id=m1", signer.url, "proof must cover the query string")
	require.Len(t, signer.ids, 1)
	assert.NotEmpty(t, signer.ids[0])
}

func TestClient_RequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, &recordingSigner{})
	_, err := client.PostJSON(context.Background(), srv.URL, map[string]interface{}{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, "signed-proof-token", got.Get("DPOP"))
	assert.Equal(t, "web", got.Get("X-Platform"))
	assert.Equal(t, "application/json; charset=utf-8", got.Get("Content-Type"))
	assert.Equal(t, testUserAgent, got.Get("User-Agent"))
}

func TestClient_PostJSON_SendsBody(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, &recordingSigner{})
	_, err := client.PostJSON(context.Background(), srv.URL, map[string]interface{}{
		"pageToken": "v1:0",
		"pageSize":  float64(120),
	})
	require.NoError(t, err)
	assert.Equal(t, "v1:0", got["pageToken"])
}

func TestClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, &recordingSigner{})
	_, err := client.GetJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.Classify(err))
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, &recordingSigner{})
	_, err := client.GetJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindTransport, apperrors.Classify(err))

	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
}

func TestClient_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, &recordingSigner{})
	_, err := client.GetJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.Classify(err))
}

func TestClient_ConnectionRefused(t *testing.T) {
	client := newTestClient(t, &recordingSigner{})
	_, err := client.GetJSON(context.Background(), "http://127.0.0.1:1", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindTransport, apperrors.Classify(err))
}
