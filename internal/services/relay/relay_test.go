package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grabtok/grabtok/internal/config"
	"github.com/grabtok/grabtok/internal/services/fetcher"
)

func TestOpenAndCopy(t *testing.T) {
	payload := bytes.Repeat([]byte("media-bytes-"), 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	client := fetcher.New(&config.FetchConfig{Timeout: 5 * time.Second, StreamTimeout: 5 * time.Second})
	relay := New(client)

	resp, err := relay.Open(context.Background(), server.URL)
	require.NoError(t, err)

	var sink bytes.Buffer
	written := relay.Copy(context.Background(), &sink, resp.Body)

	assert.Equal(t, int64(len(payload)), written)
	assert.Equal(t, payload, sink.Bytes())
}

func TestOpenPropagatesUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := fetcher.New(&config.FetchConfig{Timeout: 5 * time.Second, StreamTimeout: 5 * time.Second})
	relay := New(client)

	_, err := relay.Open(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.FailureHTTPStatus, fetchErr.Kind)
}

type failingReader struct {
	data []byte
	read bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.read {
		f.read = true
		n := copy(p, f.data)
		return n, nil
	}
	return 0, errors.New("connection reset")
}

func (f *failingReader) Close() error { return nil }

func TestCopyReportsPartialWrite(t *testing.T) {
	relay := New(nil)

	var sink bytes.Buffer
	written := relay.Copy(context.Background(), &sink, &failingReader{data: []byte("partial")})

	assert.Equal(t, int64(len("partial")), written)
	assert.Equal(t, "partial", sink.String())
}

func TestCopyHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	relay := New(nil)
	var sink bytes.Buffer
	written := relay.Copy(ctx, &sink, io.NopCloser(bytes.NewReader([]byte("abc"))))

	// The copy itself is not interrupted for an in-memory reader; the
	// canceled context only changes how a failure would be logged.
	assert.Equal(t, int64(3), written)
}
