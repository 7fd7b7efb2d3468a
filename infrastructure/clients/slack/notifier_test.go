package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-promoter/domain/model"
	"ai-promoter/infrastructure/configuration"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Notify(t *testing.T) {
	var gotChannel, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat.postMessage"))
		require.NoError(t, r.ParseForm())
		gotChannel = r.Form.Get("channel")
		gotText = r.Form.Get("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"D1","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	n := NewNotifier(configuration.Slack{BotToken: "xoxb-test", NotificationsEnabled: true, APIURL: srv.URL + "/"})
	require.NoError(t, n.Notify(context.Background(), "U42", "hello"))
	assert.Equal(t, "U42", gotChannel)
	assert.Equal(t, "hello", gotText)
}

func TestNotifier_SlackErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	n := NewNotifier(configuration.Slack{BotToken: "xoxb-test", NotificationsEnabled: true, APIURL: srv.URL + "/"})
	err := n.Notify(context.Background(), "U404", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestNotifier_DisabledIsNoop(t *testing.T) {
	n := NewNotifier(configuration.Slack{BotToken: "xoxb-test", NotificationsEnabled: false, APIURL: "http://127.0.0.1:1/"})
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), "U1", "x"))
	assert.NoError(t, n.PostDigest(context.Background(), "C1", []model.DigestItem{{ID: 1}}, 1, 1))
}

func TestDigestBlocks(t *testing.T) {
	items := []model.DigestItem{
		{ID: 7, Title: "Queues", URL: "https://blog.example/q", Description: strings.Repeat("a", 300), PromoteURL: "https://promoter.example/?promote=7"},
	}
	blocks := DigestBlocks(items, 2, 3)
	require.Len(t, blocks, 3)

	header, ok := blocks[0].(*slack.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "New content available (2/3)", header.Text.Text)

	section, ok := blocks[1].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "<https://blog.example/q|Queues>")
	assert.True(t, strings.HasSuffix(section.Text.Text, "..."))
	require.NotNil(t, section.Accessory)
	button := section.Accessory.ButtonElement
	require.NotNil(t, button)
	assert.Equal(t, "https://promoter.example/?promote=7", button.URL)
	assert.Equal(t, "7", button.Value)
}
