package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-promoter/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoster_Post_IDFromHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/ugcPosts", r.URL.Path)
		assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))

		var body ugcPost
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "urn:li:person:abc", body.Author)
		assert.Equal(t, "PUBLISHED", body.LifecycleState)
		assert.Equal(t, "hello world", body.SpecificContent.ShareContent.ShareCommentary.Text)
		assert.Equal(t, "PUBLIC", body.Visibility.MemberNetworkVisibility)

		w.Header().Set("X-Restli-Id", "urn:li:share:42")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	receipt, err := NewPoster(srv.URL+"/v2", srv.Client()).Post(context.Background(), "at", "abc", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:42", receipt.PostID)
	assert.Equal(t, "https://www.linkedin.com/feed/update/urn:li:share:42/", receipt.PostURL)
}

func TestPoster_Post_IDFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"urn:li:ugcPost:7"}`))
	}))
	defer srv.Close()

	receipt, err := NewPoster(srv.URL, srv.Client()).Post(context.Background(), "at", "abc", "x")
	require.NoError(t, err)
	assert.Equal(t, "urn:li:ugcPost:7", receipt.PostID)
}

func TestPoster_Post_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Not enough permissions"}`))
	}))
	defer srv.Close()

	_, err := NewPoster(srv.URL, srv.Client()).Post(context.Background(), "at", "abc", "x")
	var pe *model.PlatformResponseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusForbidden, pe.StatusCode)
	assert.Contains(t, pe.Detail, "Not enough permissions")
}
