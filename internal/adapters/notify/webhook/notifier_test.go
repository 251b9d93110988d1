package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"childcare-vaccines/internal/ports/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PostsWithAPIKey(t *testing.T) {
	var gotPath, gotKey string
	var got notifier.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n, err := New(Options{BaseURL: srv.URL + "/", APIKey: "secret"}, nil)
	require.NoError(t, err)

	in := notifier.Notification{ID: "d1:T-0", FireAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), Title: "hola"}
	require.NoError(t, n.Schedule(context.Background(), in))
	assert.Equal(t, "/reminders", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "hola", got.Title)

	require.NoError(t, n.Deliver(context.Background(), in))
	assert.Equal(t, "/deliveries", gotPath)
}

func TestNotifier_CancelBody(t *testing.T) {
	var body map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}))
	defer srv.Close()

	n, err := New(Options{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, n.Cancel(context.Background(), []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, body["ids"])
}

func TestNotifier_RetriesServerErrorsOnly(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := New(Options{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, n.Deliver(context.Background(), notifier.Notification{ID: "x"}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer bad.Close()

	n, err = New(Options{BaseURL: bad.URL}, nil)
	require.NoError(t, err)
	err = n.Deliver(context.Background(), notifier.Notification{ID: "x"})
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
	assert.Equal(t, "bad payload", he.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{}, nil)
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "::nope"}, nil)
	assert.Error(t, err)
}
