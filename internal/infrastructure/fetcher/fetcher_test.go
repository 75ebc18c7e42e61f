package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/cache"
)

// pngBytes encodes a tiny solid-color PNG for use as a fake product image
func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func product(name, imageURL string) domain.Product {
	return domain.Product{DisplayName: name, ImageURL: imageURL, Source: "Test"}
}

func TestFetchCandidates_PartialFailure(t *testing.T) {
	payload := pngBytes(t, color.White)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/ok"):
			w.Write(payload)
		case r.URL.Path == "/missing":
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/notimage":
			w.Write([]byte("<html>definitely not an image</html>"))
		}
	}))
	defer server.Close()

	f := New(nil, Config{Timeout: 2 * time.Second, Concurrency: 2})

	products := []domain.Product{
		product("first", server.URL+"/ok/1"),
		product("broken", server.URL+"/missing"),
		product("second", server.URL+"/ok/2"),
		product("htmlpage", server.URL+"/notimage"),
		product("third", server.URL+"/ok/3"),
	}

	candidates, err := f.FetchCandidates(context.Background(), products)

	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "first", candidates[0].Product.DisplayName)
	assert.Equal(t, "second", candidates[1].Product.DisplayName)
	assert.Equal(t, "third", candidates[2].Product.DisplayName)
	assert.Equal(t, "image/png", candidates[0].Image.MIMEType)
}

func TestFetchCandidates_SkipsUnresolvableURLs(t *testing.T) {
	f := New(nil, Config{Timeout: time.Second, Concurrency: 2})

	products := []domain.Product{
		product("no-url", ""),
		product("relative", "/images/x.jpg"),
		product("ftp", "ftp://example.com/x.jpg"),
		product("garbage", "::::"),
	}

	candidates, err := f.FetchCandidates(context.Background(), products)

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFetchCandidates_PreservesOrderUnderConcurrency(t *testing.T) {
	payload := pngBytes(t, color.Black)

	// Earlier-listed URLs respond slower: completion order is the reverse of
	// submission order, so any ordering bug shows up immediately.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var idx int
		fmt.Sscanf(r.URL.Path, "/img/%d", &idx)
		time.Sleep(time.Duration(50-idx*10) * time.Millisecond)
		w.Write(payload)
	}))
	defer server.Close()

	f := New(nil, Config{Timeout: 2 * time.Second, Concurrency: 4})

	var products []domain.Product
	for i := 0; i < 4; i++ {
		products = append(products, product(fmt.Sprintf("p%d", i), fmt.Sprintf("%s/img/%d", server.URL, i)))
	}

	candidates, err := f.FetchCandidates(context.Background(), products)

	require.NoError(t, err)
	require.Len(t, candidates, 4)
	for i, c := range candidates {
		assert.Equal(t, fmt.Sprintf("p%d", i), c.Product.DisplayName)
	}
}

func TestFetchCandidates_TimeoutExcludesRecord(t *testing.T) {
	payload := pngBytes(t, color.White)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(500 * time.Millisecond)
		}
		w.Write(payload)
	}))
	defer server.Close()

	f := New(nil, Config{Timeout: 50 * time.Millisecond, Concurrency: 2})

	products := []domain.Product{
		product("fast", server.URL+"/fast"),
		product("slow", server.URL+"/slow"),
	}

	candidates, err := f.FetchCandidates(context.Background(), products)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "fast", candidates[0].Product.DisplayName)
}

func TestFetchCandidates_UsesCache(t *testing.T) {
	payload := pngBytes(t, color.White)

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(payload)
	}))
	defer server.Close()

	f := New(cache.NewMemoryCache(), Config{Timeout: time.Second, Concurrency: 1, CacheTTL: time.Minute})

	products := []domain.Product{product("item", server.URL+"/img.png")}

	_, err := f.FetchCandidates(context.Background(), products)
	require.NoError(t, err)

	candidates, err := f.FetchCandidates(context.Background(), products)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, int32(1), hits.Load(), "second fetch should be served from cache")
}

func TestValidateImage(t *testing.T) {
	t.Run("accepts png", func(t *testing.T) {
		img, err := validateImage(pngBytes(t, color.White))
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		_, err := validateImage(nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-image payload", func(t *testing.T) {
		_, err := validateImage([]byte("just some text, long enough to sniff"))
		assert.Error(t, err)
	})

	t.Run("rejects truncated image", func(t *testing.T) {
		data := pngBytes(t, color.White)
		_, err := validateImage(data[:12])
		assert.Error(t, err)
	})
}

func TestLoadReferenceImage(t *testing.T) {
	t.Run("loads valid image from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ref.png")
		require.NoError(t, os.WriteFile(path, pngBytes(t, color.White), 0o644))

		ref, err := LoadReferenceImage(path)
		require.NoError(t, err)
		assert.Equal(t, "image/png", ref.MIMEType)
		assert.NotEmpty(t, ref.Data)
	})

	t.Run("missing file is a reference image error", func(t *testing.T) {
		_, err := LoadReferenceImage(filepath.Join(t.TempDir(), "nope.png"))
		assert.ErrorIs(t, err, domain.ErrReferenceImage)
	})

	t.Run("empty path is a reference image error", func(t *testing.T) {
		_, err := LoadReferenceImage("")
		assert.ErrorIs(t, err, domain.ErrReferenceImage)
	})

	t.Run("corrupt file is a reference image error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ref.png")
		require.NoError(t, os.WriteFile(path, []byte("corrupt"), 0o644))

		_, err := LoadReferenceImage(path)
		assert.ErrorIs(t, err, domain.ErrReferenceImage)
	})
}
