package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierSendsSignedPayload(t *testing.T) {
	var gotSignature, gotEventHeader string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Hostelgate-Signature")
		gotEventHeader = r.Header.Get("X-Hostelgate-Event")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	n := NewNotifier(server.URL, "shh", 0, nil)
	require.NoError(t, n.Send(context.Background(), "alert.triggered", map[string]int{"count": 3}))

	assert.True(t, Verify("shh", gotBody, gotSignature))
	assert.Equal(t, "alert.triggered", gotEventHeader)

	var event EventPayload
	require.NoError(t, json.Unmarshal(gotBody, &event))
	assert.Equal(t, "alert.triggered", event.Type)
	assert.False(t, event.Timestamp.IsZero())
}

func TestNotifierRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer server.Close()

	n := NewNotifier(server.URL, "shh", 2, nil)
	require.NoError(t, n.Send(context.Background(), "log.created", nil))
	assert.Equal(t, int32(2), calls.Load())
}

func TestNotifierDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier(server.URL, "shh", 3, nil)
	err := n.Send(context.Background(), "log.created", nil)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNotifierDisabledWithoutURL(t *testing.T) {
	n := NewNotifier("", "shh", 3, nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), "anything", nil))
}
