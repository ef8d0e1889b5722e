package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grabtok/grabtok/internal/models"
	"github.com/grabtok/grabtok/internal/services/cache"
	"github.com/grabtok/grabtok/internal/services/extractor"
	"github.com/grabtok/grabtok/internal/services/relay"
	"github.com/grabtok/grabtok/internal/services/resolver"
)

const sourceURL = "https://www.tiktok.com/@testcreator/video/7234567890123456789"

const pageBody = `<html><script id="SIGI_STATE" type="application/json">{
	"ItemModule": {
		"7234567890123456789": {
			"id": "7234567890123456789",
			"desc": "Test video caption",
			"author": {"uniqueId": "testcreator"},
			"video": {"downloadAddr": "https://cdn.example.com/video_nowm.mp4"},
			"music": {"playUrl": "https://cdn.example.com/music.mp3"}
		}
	}
}</script></html>`

type stubTransport struct {
	pageBody    string
	mediaBytes  string
	streamCalls int
}

func (s *stubTransport) Get(ctx context.Context, url string) ([]byte, error) {
	return []byte(s.pageBody), nil
}

func (s *stubTransport) ResolveFinalURL(ctx context.Context, url string) (string, error) {
	return url, nil
}

func (s *stubTransport) Stream(ctx context.Context, url string) (*http.Response, error) {
	s.streamCalls++
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Length": []string{"11"}},
		Body:       io.NopCloser(strings.NewReader(s.mediaBytes)),
	}, nil
}

func newTestHandler(t *testing.T, transport *stubTransport) *VideoHandler {
	t.Helper()
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)
	svc := resolver.New(c, transport, extractor.NewPage())
	return NewVideoHandler(svc, relay.New(transport))
}

func perform(h *VideoHandler, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/info", h.GetVideoInfo)
	engine.GET("/download", h.DownloadVideo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestGetVideoInfo(t *testing.T) {
	h := newTestHandler(t, &stubTransport{pageBody: pageBody})

	w := perform(h, "/info?url="+sourceURL)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.VideoInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "testcreator", resp.Username)
	assert.Equal(t, "Test video caption", resp.Caption)
	assert.Equal(t, "https://cdn.example.com/video_nowm.mp4", resp.NoWM)
	assert.Equal(t, resp.NoWM, resp.WM, "wm falls back to no_wm")
	assert.Equal(t, "https://cdn.example.com/music.mp3", resp.Audio)
}

func TestGetVideoInfoMissingURL(t *testing.T) {
	h := newTestHandler(t, &stubTransport{pageBody: pageBody})

	w := perform(h, "/info")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVideoInfoUnsupportedLink(t *testing.T) {
	h := newTestHandler(t, &stubTransport{pageBody: pageBody})

	w := perform(h, "/info?url=https://example.com/video/1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_URL")
}

func TestGetVideoInfoExtractionFailure(t *testing.T) {
	h := newTestHandler(t, &stubTransport{pageBody: "<html>bare page</html>"})

	w := perform(h, "/info?url="+sourceURL)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "EXTRACTION_FAILED")
}

func TestDownloadVideoStreamsBytes(t *testing.T) {
	transport := &stubTransport{pageBody: pageBody, mediaBytes: "media-bytes"}
	h := newTestHandler(t, transport)

	w := perform(h, "/download?url="+sourceURL+"&type=nowm")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "media-bytes", w.Body.String())
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "nowm", w.Header().Get("X-Video-Type"))

	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment; filename=")
	assert.Contains(t, disposition, "testcreator_7234567890123456789_nowm_")
	assert.Contains(t, disposition, ".mp4")
	assert.Equal(t, 1, transport.streamCalls)
}

func TestDownloadAudioVariant(t *testing.T) {
	transport := &stubTransport{pageBody: pageBody, mediaBytes: "audio-bytes"}
	h := newTestHandler(t, transport)

	w := perform(h, "/download?url="+sourceURL+"&type=audio")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".mp3")
}

func TestDownloadInvalidVariant(t *testing.T) {
	h := newTestHandler(t, &stubTransport{pageBody: pageBody})

	w := perform(h, "/download?url="+sourceURL+"&type=gif")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_VARIANT")
}

func TestDownloadVariantUnavailable(t *testing.T) {
	// Page without a music address: the audio variant resolves to nothing.
	noAudio := strings.Replace(pageBody, `"music": {"playUrl": "https://cdn.example.com/music.mp3"}`, `"music": {}`, 1)
	h := newTestHandler(t, &stubTransport{pageBody: noAudio})

	w := perform(h, "/download?url="+sourceURL+"&type=audio")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "VARIANT_UNAVAILABLE")
}
