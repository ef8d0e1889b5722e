package models

// VideoMetadata is the normalized record produced by a single extraction run.
// A record is usable only when both Username and VideoID are set; callers must
// never hand out a record that fails Valid().
type VideoMetadata struct {
	Username       string `json:"username"`
	Caption        string `json:"caption"`
	ThumbnailURL   string `json:"thumbnail_url,omitempty"`
	NoWatermarkURL string `json:"no_watermark_url,omitempty"`
	WatermarkURL   string `json:"watermark_url,omitempty"`
	AudioURL       string `json:"audio_url,omitempty"`
	VideoID        string `json:"video_id"`
}

// Valid reports whether the record satisfies the username/videoId invariant.
func (m *VideoMetadata) Valid() bool {
	return m != nil && m.Username != "" && m.VideoID != ""
}

// Variant identifies which media address of a resolved record is requested.
type Variant string

const (
	VariantNoWatermark Variant = "no_wm"
	VariantWatermark   Variant = "wm"
	VariantAudio       Variant = "audio"
)

// ParseVariant maps the transport-level download tag to an internal variant.
func ParseVariant(tag string) (Variant, bool) {
	switch tag {
	case "nowm":
		return VariantNoWatermark, true
	case "wm":
		return VariantWatermark, true
	case "audio":
		return VariantAudio, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type served for the variant.
func (v Variant) ContentType() string {
	if v == VariantAudio {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// VideoInfoResponse is the JSON envelope returned by the info endpoint.
// Absent fields default to empty strings; the watermarked address falls back
// to the unwatermarked one before defaulting.
type VideoInfoResponse struct {
	Username  string `json:"username"`
	Caption   string `json:"caption"`
	Thumbnail string `json:"thumbnail"`
	NoWM      string `json:"no_wm"`
	WM        string `json:"wm"`
	Audio     string `json:"audio"`
}

func NewVideoInfoResponse(m *VideoMetadata) VideoInfoResponse {
	wm := m.WatermarkURL
	if wm == "" {
		wm = m.NoWatermarkURL
	}
	return VideoInfoResponse{
		Username:  m.Username,
		Caption:   m.Caption,
		Thumbnail: m.ThumbnailURL,
		NoWM:      m.NoWatermarkURL,
		WM:        wm,
		Audio:     m.AudioURL,
	}
}

// CacheStats is the read-only counter snapshot exposed to the health surface.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}
