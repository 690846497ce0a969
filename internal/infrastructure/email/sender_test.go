package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seafresh/backend/internal/domain/notification"
	"github.com/seafresh/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testMessage = notification.EmailMessage{
	To:      []string{"anita@example.com"},
	Subject: "Order shipped: SF-20261019-00001",
	HTML:    "<p>On its way</p>",
	Text:    "On its way",
	ReplyTo: "hello@seafresh.test",
}

func TestResendSender_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	s, err := NewResendSender(config.EmailConfig{ResendAPIKey: "re_test", From: "SeaFresh <orders@seafresh.test>"}, srv.URL+"/", zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), testMessage))
	assert.Equal(t, "SeaFresh <orders@seafresh.test>", got["from"])
	assert.Equal(t, []any{"anita@example.com"}, got["to"])
	assert.Equal(t, testMessage.Subject, got["subject"])
	assert.Equal(t, testMessage.HTML, got["html"])
}

func TestResendSender_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	s, err := NewResendSender(config.EmailConfig{ResendAPIKey: "re_test", From: "bad"}, srv.URL+"/", zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, s.Send(context.Background(), testMessage))

	err = s.Send(context.Background(), notification.EmailMessage{To: []string{"a@b.co"}})
	assert.Error(t, err)

	_, err = NewResendSender(config.EmailConfig{From: "x@y.z"}, "", zap.NewNop())
	assert.Error(t, err)
	_, err = NewResendSender(config.EmailConfig{ResendAPIKey: "re_test"}, "", zap.NewNop())
	assert.Error(t, err)
}

func TestNewSender_FallsBackToLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, err := NewSender(config.EmailConfig{}, zap.New(core))
	require.NoError(t, err)
	require.IsType(t, &LogSender{}, s)

	require.NoError(t, s.Send(context.Background(), testMessage))
	entries := logs.FilterMessageSnippet("not delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, testMessage.Subject, entries[0].ContextMap()["subject"])
}
