package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLiteralAddressNoExternalCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	r := New(srv.URL, 2*time.Second)

	raw := "0x88b8e2161dedc77ef4ab7585569d2415a1c1055d"
	first, ok := r.Resolve(context.Background(), raw)
	require.True(t, ok)
	second, ok := r.Resolve(context.Background(), raw)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, common.HexToAddress(raw).Hex(), first)
	assert.Equal(t, int32(0), hits.Load())
}

func TestResolveENSName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alice.eth", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"address": "0x760afe86e5de5fa0ee542fc7b7b713e1c5425701"})
	}))
	defer srv.Close()

	r := New(srv.URL, 2*time.Second)
	addr, ok := r.Resolve(context.Background(), "alice.eth")
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x760afe86e5de5fa0ee542fc7b7b713e1c5425701").Hex(), addr)
}

func TestResolveMissReturnsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"address": nil})
	}))
	defer srv.Close()

	r := New(srv.URL, 2*time.Second)
	_, ok := r.Resolve(context.Background(), "notarealname.eth")
	assert.False(t, ok)
}

func TestResolveServiceErrorIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := New(srv.URL, 2*time.Second)
	_, ok := r.Resolve(context.Background(), "alice.eth")
	assert.False(t, ok)

	// unreachable service behaves the same
	srv.Close()
	_, ok = r.Resolve(context.Background(), "alice.eth")
	assert.False(t, ok)
}

func TestResolveMalformedInput(t *testing.T) {
	r := New("http://127.0.0.1:0", time.Second)

	for _, id := range []string{
		"",
		"bob",
		".eth",
		"0x1234",                                       // too short
		"0x88b8e2161dedc77ef4ab7585569d2415a1c1055dzz", // not hex
	} {
		_, ok := r.Resolve(context.Background(), id)
		assert.False(t, ok, id)
	}
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("alice.eth"))
	assert.True(t, IsName("sub.domain.ETH"))
	assert.False(t, IsName(".eth"))
	assert.False(t, IsName("0x88b8e2161dedc77ef4ab7585569d2415a1c1055d"))
}
