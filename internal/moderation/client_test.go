package moderation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/models"
)

func newTestClient(endpoint string) *Client {
	return NewClient(&config.Config{
		SightengineAPIUser:   "user",
		SightengineAPISecret: "secret",
		SightengineURL:       endpoint,
		ModerationTimeout:    5 * time.Second,
	})
}

func TestAnalyzeImageViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "user", q.Get("api_user"))
		assert.Equal(t, "secret", q.Get("api_secret"))
		assert.Equal(t, "https://img.example.com/x.jpg", q.Get("url"))
		assert.Equal(t, "nudity,wad,offensive,gore", q.Get("models"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","nudity":{"raw":0.92},"weapon":0.01,"gore":{"prob":0.05}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "https://img.example.com/x.jpg", models.ReasonInappropriateContent)
	require.NoError(t, err)
	assert.True(t, res.IsViolation)
	assert.InDelta(t, 0.92, res.Confidence, 1e-9)
	assert.Equal(t, "nudity", res.ViolationType)
	assert.Equal(t, "sightengine", res.Provider)
	assert.NotEmpty(t, res.RawResponse)
}

func TestAnalyzeImageSafe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","nudity":{"raw":0.02},"weapon":0.0,"gore":{"prob":0.01}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "https://img.example.com/x.jpg", models.ReasonViolence)
	require.NoError(t, err)
	assert.False(t, res.IsViolation)
	assert.Zero(t, res.Confidence)
	assert.Equal(t, "No policy violation detected", res.Message)
}

func TestAnalyzeImageSpamRequestsScamModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nudity,wad,offensive,gore,scam", r.URL.Query().Get("models"))
		w.Write([]byte(`{"status":"success","scam":{"prob":0.88}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "https://img.example.com/x.jpg", models.ReasonSpam)
	require.NoError(t, err)
	assert.True(t, res.IsViolation)
	assert.Equal(t, "spam", res.ViolationType)
}

func TestAnalyzeImageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "https://img.example.com/x.jpg", models.ReasonOther)
	assert.ErrorContains(t, err, "status 401")
}

func TestAnalyzeImageProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failure","error":{"type":"usage_limit","code":32,"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "https://img.example.com/x.jpg", models.ReasonOther)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestAnalyzeImageMissingCredentials(t *testing.T) {
	c := NewClient(&config.Config{ModerationTimeout: time.Second})
	_, err := c.AnalyzeImage(context.Background(), "https://img.example.com/x.jpg", models.ReasonOther)
	assert.ErrorContains(t, err, "credentials not configured")
}
