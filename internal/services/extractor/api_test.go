package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIExtractorMapsFlatPayload(t *testing.T) {
	body := `{
		"code": 0,
		"msg": "success",
		"data": {
			"id": 7234567890123456789,
			"title": "  Test video caption  ",
			"cover": "https://cdn.example.com/cover.jpg",
			"origin_cover": "https://cdn.example.com/origin.jpg",
			"play": "https://cdn.example.com/video_nowm.mp4",
			"wmplay": "https://cdn.example.com/video_wm.mp4",
			"music": "https://cdn.example.com/music.mp3",
			"author": {"unique_id": "testcreator", "nickname": "Test Creator"}
		}
	}`

	e := NewAPI("https://tikwm.example/api/")
	meta, err := e.Extract(context.Background(), []byte(body))
	require.NoError(t, err)

	assert.Equal(t, "testcreator", meta.Username)
	assert.Equal(t, "Test video caption", meta.Caption)
	assert.Equal(t, "7234567890123456789", meta.VideoID, "numeric id coerced to string")
	assert.Equal(t, "https://cdn.example.com/video_nowm.mp4", meta.NoWatermarkURL)
	assert.Equal(t, "https://cdn.example.com/video_wm.mp4", meta.WatermarkURL)
	assert.Equal(t, "https://cdn.example.com/music.mp3", meta.AudioURL)
	assert.Equal(t, "https://cdn.example.com/cover.jpg", meta.ThumbnailURL)
}

func TestAPIExtractorWatermarkFallsBackToPlay(t *testing.T) {
	body := `{"code":0,"data":{"id":"1","play":"https://cdn.example.com/v.mp4","author":{"unique_id":"u"}}}`

	meta, err := NewAPI("https://tikwm.example/api/").Extract(context.Background(), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", meta.WatermarkURL)
}

func TestAPIExtractorNicknameFallback(t *testing.T) {
	body := `{"code":0,"data":{"id":"1","play":"https://cdn.example.com/v.mp4","author":{"nickname":"Nick"}}}`

	meta, err := NewAPI("https://tikwm.example/api/").Extract(context.Background(), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "Nick", meta.Username)
}

func TestAPIExtractorNonZeroCodeIsHardFailure(t *testing.T) {
	body := `{"code":-1,"msg":"Url parsing is failed! Please check url.","data":{"id":"1"}}`

	_, err := NewAPI("https://tikwm.example/api/").Extract(context.Background(), []byte(body))
	assert.Error(t, err)
}

func TestAPIExtractorMissingDataIsHardFailure(t *testing.T) {
	_, err := NewAPI("https://tikwm.example/api/").Extract(context.Background(), []byte(`{"code":0,"msg":"ok"}`))
	assert.Error(t, err)
}

func TestAPIExtractorUnusableRecordFails(t *testing.T) {
	// Author present but no video id.
	body := `{"code":0,"data":{"title":"t","author":{"unique_id":"u"}}}`

	_, err := NewAPI("https://tikwm.example/api/").Extract(context.Background(), []byte(body))
	assert.ErrorIs(t, err, ErrNoUsableMetadata)
}

func TestAPIExtractorRequestURLEscapesSource(t *testing.T) {
	e := NewAPI("https://tikwm.example/api/")
	got := e.RequestURL("https://www.tiktok.com/@user/video/1?x=1&y=2")
	assert.Equal(t, "https://tikwm.example/api/?url=https%3A%2F%2Fwww.tiktok.com%2F%40user%2Fvideo%2F1%3Fx%3D1%26y%3D2", got)
}
