package extractor

import (
	"context"
	"encoding/json"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/grabtok/grabtok/internal/models"
	"github.com/grabtok/grabtok/internal/utils"
)

// stateItem is the item shape shared by both embedded state blobs.
type stateItem struct {
	ID     string `json:"id"`
	Desc   string `json:"desc"`
	Author struct {
		UniqueID string `json:"uniqueId"`
		ID       string `json:"id"`
	} `json:"author"`
	Video struct {
		DownloadAddr string `json:"downloadAddr"`
		PlayAddr     string `json:"playAddr"`
		Cover        string `json:"cover"`
		DynamicCover string `json:"dynamicCover"`
	} `json:"video"`
	Music struct {
		PlayURL string `json:"playUrl"`
	} `json:"music"`
}

// sigiState is the primary embedded blob: a global holding an item table.
type sigiState struct {
	ItemModule map[string]stateItem `json:"ItemModule"`
}

// universalData is the secondary blob: same item shape one level deeper,
// gated by a status code that must be zero.
type universalData struct {
	DefaultScope struct {
		VideoDetail struct {
			StatusCode int `json:"statusCode"`
			ItemInfo   struct {
				ItemStruct stateItem `json:"itemStruct"`
			} `json:"itemInfo"`
		} `json:"webapp.video-detail"`
	} `json:"__DEFAULT_SCOPE__"`
}

var (
	sigiScriptRe      = regexp.MustCompile(`(?s)<script[^>]+id="SIGI_STATE"[^>]*>(.*?)</script>`)
	universalScriptRe = regexp.MustCompile(`(?s)<script[^>]+id="__UNIVERSAL_DATA_FOR_REHYDRATION__"[^>]*>(.*?)</script>`)
)

// PageExtractor scrapes the public video page. Strategies run in order;
// the first one that yields a username wins, and the meta-tag fallback only
// runs when the blobs produced nothing.
type PageExtractor struct{}

func NewPage() *PageExtractor {
	return &PageExtractor{}
}

// RequestURL is the identity for the page back-end: the page itself is
// fetched.
func (e *PageExtractor) RequestURL(sourceURL string) string {
	return sourceURL
}

func (e *PageExtractor) Extract(ctx context.Context, body []byte) (*models.VideoMetadata, error) {
	page := string(body)

	meta := &models.VideoMetadata{}
	strategy := ""

	if m, ok := e.fromSigiState(ctx, page); ok {
		meta = m
		strategy = "sigi_state"
	}

	if meta.Username == "" {
		if m, ok := e.fromUniversalData(ctx, page); ok {
			meta = m
			strategy = "universal_data"
		}
	}

	if meta.Username == "" {
		e.fromMetaTags(page, meta)
		strategy = "meta_tags"
	}

	meta.Caption = strings.TrimSpace(meta.Caption)

	if !meta.Valid() {
		return nil, ErrNoUsableMetadata
	}

	utils.LogDebug(ctx, "page extraction succeeded", utils.Fields{
		"strategy": strategy,
		"video_id": meta.VideoID,
	})
	return meta, nil
}

func (e *PageExtractor) fromSigiState(ctx context.Context, page string) (*models.VideoMetadata, bool) {
	match := sigiScriptRe.FindStringSubmatch(page)
	if match == nil {
		return nil, false
	}

	var state sigiState
	if err := json.Unmarshal([]byte(match[1]), &state); err != nil {
		utils.LogWarn(ctx, "malformed SIGI_STATE blob, trying next strategy", utils.Fields{
			"error": err.Error(),
		})
		return nil, false
	}
	if len(state.ItemModule) == 0 {
		return nil, false
	}

	// The item table normally holds a single entry; pick the first key
	// deterministically.
	keys := make([]string, 0, len(state.ItemModule))
	for k := range state.ItemModule {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return itemToMetadata(state.ItemModule[keys[0]]), true
}

func (e *PageExtractor) fromUniversalData(ctx context.Context, page string) (*models.VideoMetadata, bool) {
	match := universalScriptRe.FindStringSubmatch(page)
	if match == nil {
		return nil, false
	}

	var data universalData
	if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
		utils.LogWarn(ctx, "malformed rehydration blob, trying next strategy", utils.Fields{
			"error": err.Error(),
		})
		return nil, false
	}

	detail := data.DefaultScope.VideoDetail
	if detail.StatusCode != 0 {
		return nil, false
	}

	return itemToMetadata(detail.ItemInfo.ItemStruct), true
}

// fromMetaTags is the last resort. It can recover username, caption and
// thumbnail from OpenGraph/Twitter tags but never media URLs or a video ID,
// so a record resolved only via this path stays unusable.
func (e *PageExtractor) fromMetaTags(page string, meta *models.VideoMetadata) {
	username := metaContent(page, "profile:username")
	if username == "" {
		// Whitespace-only titles yield no tokens and leave the username empty.
		if tokens := strings.Fields(metaContent(page, "twitter:title")); len(tokens) > 0 {
			username = tokens[0]
		}
	}
	meta.Username = username
	meta.Caption = utils.StringNotEmptyCoalesce(
		metaContent(page, "og:description"),
		metaContent(page, "description"),
	)
	meta.ThumbnailURL = metaContent(page, "og:image")
}

func metaContent(page, key string) string {
	quoted := regexp.QuoteMeta(key)
	patterns := []string{
		`<meta\s+property="` + quoted + `"\s+content="([^"]*)"`,
		`<meta\s+name="` + quoted + `"\s+content="([^"]*)"`,
		`<meta\s+content="([^"]*)"\s+property="` + quoted + `"`,
		`<meta\s+content="([^"]*)"\s+name="` + quoted + `"`,
	}
	for _, pattern := range patterns {
		if m := regexp.MustCompile(pattern).FindStringSubmatch(page); m != nil {
			return html.UnescapeString(m[1])
		}
	}
	return ""
}

func itemToMetadata(item stateItem) *models.VideoMetadata {
	// The page exposes a single CDN address at this layer, so the
	// watermarked and unwatermarked fields receive the same value.
	addr := utils.StringNotEmptyCoalesce(item.Video.DownloadAddr, item.Video.PlayAddr)

	return &models.VideoMetadata{
		Username:       utils.StringNotEmptyCoalesce(item.Author.UniqueID, item.Author.ID),
		Caption:        item.Desc,
		ThumbnailURL:   utils.StringNotEmptyCoalesce(item.Video.Cover, item.Video.DynamicCover),
		NoWatermarkURL: addr,
		WatermarkURL:   addr,
		AudioURL:       item.Music.PlayURL,
		VideoID:        item.ID,
	}
}
