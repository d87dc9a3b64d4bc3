package cacclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_GetClient_UnknownTenant(t *testing.T) {
	f := NewFactory()
	_, err := f.GetClient("nope")
	require.ErrorIs(t, err, ErrUnknownTenant)
}

func TestFactory_CreateClient_FirstCreatorWins(t *testing.T) {
	doc := testDocument()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		b, _ := json.Marshal(doc)
		w.Write(b)
	}))
	defer srv.Close()

	f := NewFactory()
	first, err := f.CreateClient(context.Background(), "t1", ClientOptions{
		PollingInterval: time.Minute,
		Hostname:        srv.URL,
	})
	require.NoError(t, err)

	second, err := f.CreateClient(context.Background(), "t1", ClientOptions{
		// Different, ignored: interval/hostname are ignored for an
		// already-registered tenant (spec §4.6).
		PollingInterval: time.Hour,
		Hostname:        "http://should-be-ignored.invalid",
	})
	require.NoError(t, err)
	assert.Same(t, first, second)

	got, err := f.GetClient("t1")
	require.NoError(t, err)
	assert.Same(t, first, got)
}

// Scenario F — factory deduplication under concurrency: only one HTTP
// bootstrap request is issued even though many callers race in.
func TestFactory_CreateClient_ConcurrentRaceDedupesFetch(t *testing.T) {
	doc := testDocument()
	var callCount int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&callCount, 1)
		time.Sleep(20 * time.Millisecond) // widen the race window
		w.WriteHeader(http.StatusOK)
		b, _ := json.Marshal(doc)
		w.Write(b)
	}))
	defer srv.Close()

	f := NewFactory()
	const n = 20
	results := make([]*Client, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			c, err := f.CreateClient(context.Background(), "racey", ClientOptions{
				PollingInterval: time.Minute,
				Hostname:        srv.URL,
			})
			require.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&callCount))
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestFactory_CreateClient_PropagatesConstructionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFactory()
	_, err := f.CreateClient(context.Background(), "bad", ClientOptions{
		PollingInterval: time.Minute,
		Hostname:        srv.URL,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFetch)

	_, err = f.GetClient("bad")
	assert.ErrorIs(t, err, ErrUnknownTenant)
}
