package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/grabtok/grabtok/internal/models"
	"github.com/grabtok/grabtok/internal/utils"
)

// flexID tolerates the upstream sending the video ID as either a JSON number
// or a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

type apiResponse struct {
	Code int      `json:"code"`
	Msg  string   `json:"msg"`
	Data *apiData `json:"data"`
}

type apiData struct {
	ID          flexID `json:"id"`
	Title       string `json:"title"`
	Cover       string `json:"cover"`
	OriginCover string `json:"origin_cover"`
	Play        string `json:"play"`
	Wmplay      string `json:"wmplay"`
	Music       string `json:"music"`
	Author      struct {
		UniqueID string `json:"unique_id"`
		Nickname string `json:"nickname"`
	} `json:"author"`
}

// APIExtractor maps the companion REST API's flat payload. Unlike the page
// back-end there is no fallback chain: a non-zero status code or a missing
// data object is a hard failure.
type APIExtractor struct {
	endpoint string
}

func NewAPI(endpoint string) *APIExtractor {
	return &APIExtractor{endpoint: endpoint}
}

func (e *APIExtractor) RequestURL(sourceURL string) string {
	return fmt.Sprintf("%s?url=%s", e.endpoint, url.QueryEscape(sourceURL))
}

func (e *APIExtractor) Extract(ctx context.Context, body []byte) (*models.VideoMetadata, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode api response: %w", err)
	}

	if resp.Code != 0 || resp.Data == nil {
		return nil, fmt.Errorf("api returned code %d: %s", resp.Code, resp.Msg)
	}

	data := resp.Data
	meta := &models.VideoMetadata{
		Username:       utils.StringNotEmptyCoalesce(data.Author.UniqueID, data.Author.Nickname),
		Caption:        strings.TrimSpace(data.Title),
		ThumbnailURL:   utils.StringNotEmptyCoalesce(data.Cover, data.OriginCover),
		NoWatermarkURL: data.Play,
		WatermarkURL:   utils.StringNotEmptyCoalesce(data.Wmplay, data.Play),
		AudioURL:       data.Music,
		VideoID:        string(data.ID),
	}

	if !meta.Valid() {
		return nil, ErrNoUsableMetadata
	}

	utils.LogDebug(ctx, "api extraction succeeded", utils.Fields{
		"video_id": meta.VideoID,
	})
	return meta, nil
}
