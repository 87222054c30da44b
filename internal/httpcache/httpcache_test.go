package httpcache

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk on fire") }
func (failingStore) Put(string, []byte) error         { return errors.New("disk on fire") }

func TestReadThrough(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	calls := 0
	fetch := func() ([]byte, bool, error) {
		calls++
		return []byte("payload"), true, nil
	}

	value, hit, err := ReadThrough(store, "k", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "payload", string(value))

	value, hit, err = ReadThrough(store, "k", fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "payload", string(value))
	assert.Equal(t, 1, calls)
}

func TestReadThrough_NotKept(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	_, _, err := ReadThrough(store, "k", func() ([]byte, bool, error) { return []byte("404"), false, nil })
	require.NoError(t, err)

	_, ok, _ := store.Get("k")
	assert.False(t, ok)
}

func TestReadThrough_StoreFailureDegrades(t *testing.T) {
	value, hit, err := ReadThrough(failingStore{}, "k", func() ([]byte, bool, error) { return []byte("fresh"), true, nil })

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", string(value))
}

func TestMemoryStore_Expires(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore(5 * time.Minute)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Put("k", []byte("v")))

	_, ok, _ := store.Get("k")
	assert.True(t, ok)

	now = now.Add(5 * time.Minute)
	_, ok, _ = store.Get("k")
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	now := time.Now()
	store, err := NewSQLiteStore(path, 5*time.Minute)
	require.NoError(t, err)
	store.now = func() time.Time { return now }

	_, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put("k", []byte("first")))
	require.NoError(t, store.Put("k", []byte("second")))
	value, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", string(value))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, 5*time.Minute)
	require.NoError(t, err)
	defer reopened.Close()
	value, ok, err = reopened.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", string(value))

	reopened.now = func() time.Time { return now.Add(10 * time.Minute) }
	_, ok, err = reopened.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransport(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"request":%d}`, n)
	}))
	defer server.Close()

	transport := NewTransport(nil, NewMemoryStore(time.Minute))
	client := &http.Client{Transport: transport}

	get := func(path, token string) (int, string) {
		req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "token "+token)
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	_, first := get("/repos", "")
	_, second := get("/repos", "")
	assert.Equal(t, `{"request":1}`, first)
	assert.Equal(t, first, second)

	_, other := get("/repos", "secret")
	assert.Equal(t, `{"request":2}`, other)

	status, _ := get("/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	get("/missing", "")
	assert.Equal(t, int32(4), requests.Load())

	hits, misses := transport.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 4, misses)
}

func TestKey(t *testing.T) {
	plain, _ := http.NewRequest(http.MethodGet, "https://api.github.com/users/x/repos?page=2", nil)
	authed, _ := http.NewRequest(http.MethodGet, "https://api.github.com/users/x/repos?page=2", nil)
	authed.Header.Set("Authorization", "token abc")

	assert.Equal(t, "GET https://api.github.com/users/x/repos?page=2", Key(plain))
	assert.NotEqual(t, Key(plain), Key(authed))
	assert.NotContains(t, Key(authed), "token abc")
}
