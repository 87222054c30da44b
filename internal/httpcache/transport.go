package httpcache

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httputil"

	"ghsync/internal/counter"
)

// Transport answers GET requests from a Store and records successful responses in it.
// Everything else goes straight to Base.
type Transport struct {
	Base  http.RoundTripper
	Store Store

	hits   *counter.Counter
	misses *counter.Counter
}

func NewTransport(base http.RoundTripper, store Store) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Store: store, hits: counter.NewCounter(), misses: counter.NewCounter()}
}

// Key identifies a request by method, URL and the credential it was made with, so
// a response fetched with one token is never served to another.
func Key(req *http.Request) string {
	key := req.Method + " " + req.URL.String()
	if auth := req.Header.Get("Authorization"); auth != "" {
		sum := sha256.Sum256([]byte(auth))
		key += " " + hex.EncodeToString(sum[:8])
	}
	return key
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.Base.RoundTrip(req)
	}

	raw, hit, err := ReadThrough(t.Store, Key(req), func() ([]byte, bool, error) {
		resp, err := t.Base.RoundTrip(req)
		if err != nil {
			return nil, false, err
		}
		defer resp.Body.Close()
		dump, err := httputil.DumpResponse(resp, true)
		if err != nil {
			return nil, false, err
		}
		return dump, resp.StatusCode == http.StatusOK, nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		t.hits.Inc()
	} else {
		t.misses.Inc()
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), req)
}

// Stats returns how many GET requests were served from the store and from the network.
func (t *Transport) Stats() (hits, misses int) {
	return t.hits.Count(), t.misses.Count()
}
