// Package resolver orchestrates the extraction pipeline: validate the link,
// consult the cache, fetch the upstream response, extract, memoize. It also
// resolves a requested variant to a concrete CDN address and derives the
// download filename.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/grabtok/grabtok/internal/models"
	"github.com/grabtok/grabtok/internal/services/cache"
	"github.com/grabtok/grabtok/internal/services/extractor"
	"github.com/grabtok/grabtok/internal/services/fetcher"
	"github.com/grabtok/grabtok/internal/services/validator"
	"github.com/grabtok/grabtok/internal/utils"
)

// Fetcher is the outbound HTTP capability the resolver needs.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	ResolveFinalURL(ctx context.Context, url string) (string, error)
}

type Service struct {
	cache     *cache.Cache
	fetcher   Fetcher
	extractor extractor.Extractor
}

func New(c *cache.Cache, f Fetcher, e extractor.Extractor) *Service {
	return &Service{
		cache:     c,
		fetcher:   f,
		extractor: e,
	}
}

// FetchMetadata resolves a source URL into a usable metadata record, serving
// from the cache when possible. The egress-safety check runs before any
// network access and is never bypassed.
func (s *Service) FetchMetadata(ctx context.Context, rawURL string) (*models.VideoMetadata, *utils.AppError) {
	if !validator.IsAcceptableSourceURL(rawURL) {
		return nil, utils.NewInvalidURLError(rawURL)
	}
	if !validator.IsEgressSafe(rawURL) {
		return nil, utils.NewURLBlockedError(rawURL)
	}

	normalized, err := validator.NormalizeURL(rawURL)
	if err != nil {
		return nil, utils.NewInvalidURLError(rawURL)
	}
	key, err := validator.CacheKey(normalized)
	if err != nil {
		return nil, utils.NewInvalidURLError(rawURL)
	}

	if meta, ok := s.cache.Get(key); ok {
		utils.LogDebug(ctx, "metadata cache hit", utils.Fields{"cache_key": key})
		return meta, nil
	}

	body, err := s.fetcher.Get(ctx, s.extractor.RequestURL(normalized))
	if err != nil {
		utils.LogError(ctx, "upstream fetch failed", err, utils.Fields{"url": normalized})
		return nil, fetchAppError(err)
	}

	meta, err := s.extractor.Extract(ctx, body)
	if err != nil || !meta.Valid() {
		utils.LogWarn(ctx, "extraction failed", utils.Fields{
			"url":   normalized,
			"error": fmt.Sprint(err),
		})
		return nil, utils.NewExtractionFailedError()
	}

	s.cache.Set(key, meta)
	utils.LogInfo(ctx, "metadata resolved", utils.Fields{
		"cache_key": key,
		"video_id":  meta.VideoID,
		"username":  meta.Username,
	})
	return meta, nil
}

// ResolveVariantURL maps a variant to the concrete media address of the
// record. An empty result means the variant is unavailable for this video,
// which is the caller's not-found case, not a fault.
func (s *Service) ResolveVariantURL(variant models.Variant, meta *models.VideoMetadata) (string, *utils.AppError) {
	switch variant {
	case models.VariantNoWatermark:
		return meta.NoWatermarkURL, nil
	case models.VariantWatermark:
		return utils.StringNotEmptyCoalesce(meta.WatermarkURL, meta.NoWatermarkURL), nil
	case models.VariantAudio:
		return meta.AudioURL, nil
	default:
		return "", utils.NewInvalidVariantError(string(variant))
	}
}

// ResolveRedirectTarget follows redirects to the terminal CDN address.
// Best-effort: any failure returns the input URL unchanged so the download
// can still proceed against it.
func (s *Service) ResolveRedirectTarget(ctx context.Context, url string) string {
	final, err := s.fetcher.ResolveFinalURL(ctx, url)
	if err != nil || final == "" {
		utils.LogDebug(ctx, "redirect resolution degraded to original URL", utils.Fields{
			"url":   url,
			"error": fmt.Sprint(err),
		})
		return url
	}
	return final
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// DeriveFilename composes the attachment filename for a download:
// <username>_<videoId>_<tag>_<unixMillis> plus the variant extension.
// The tag is the transport-level one so the filename matches what the
// client asked for.
func DeriveFilename(meta *models.VideoMetadata, tag string) string {
	username := meta.Username
	if username == "" {
		username = "unknown"
	}
	videoID := meta.VideoID
	if videoID == "" {
		videoID = "video"
	}

	ext := ".mp4"
	if tag == "audio" {
		ext = ".mp3"
	}

	return fmt.Sprintf("%s_%s_%s_%d%s",
		unsafeFilenameChars.ReplaceAllString(username, "_"),
		unsafeFilenameChars.ReplaceAllString(videoID, "_"),
		tag,
		time.Now().UnixMilli(),
		ext,
	)
}

func fetchAppError(err error) *utils.AppError {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		details := map[string]interface{}{"reason": string(fetchErr.Kind)}
		if fetchErr.Status != 0 {
			details["status"] = fetchErr.Status
		}
		return utils.NewUpstreamFetchError(string(fetchErr.Kind), details)
	}
	return utils.NewUpstreamFetchError("network", map[string]interface{}{
		"error": err.Error(),
	})
}
