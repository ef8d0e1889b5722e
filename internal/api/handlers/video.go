package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grabtok/grabtok/internal/models"
	"github.com/grabtok/grabtok/internal/services/relay"
	"github.com/grabtok/grabtok/internal/services/resolver"
	"github.com/grabtok/grabtok/internal/utils"
)

type VideoHandler struct {
	resolver *resolver.Service
	relay    *relay.Relay
}

func NewVideoHandler(resolverService *resolver.Service, mediaRelay *relay.Relay) *VideoHandler {
	return &VideoHandler{
		resolver: resolverService,
		relay:    mediaRelay,
	}
}

// GetVideoInfo godoc
// @Summary Resolve video metadata
// @Description Validate a short-video link, resolve its metadata and return the candidate media addresses
// @Tags video
// @Produce json
// @Param url query string true "Source video URL"
// @Success 200 {object} models.VideoInfoResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/video/info [get]
func (h *VideoHandler) GetVideoInfo(c *gin.Context) {
	ctx := c.Request.Context()

	sourceURL := c.Query("url")
	if sourceURL == "" {
		h.errorResponse(c, utils.NewValidationError("Missing url query parameter", nil))
		return
	}

	meta, appErr := h.resolver.FetchMetadata(ctx, sourceURL)
	if appErr != nil {
		h.errorResponse(c, appErr)
		return
	}

	c.JSON(http.StatusOK, models.NewVideoInfoResponse(meta))
}

// DownloadVideo godoc
// @Summary Stream resolved media bytes
// @Description Resolve the requested variant to a CDN address and relay the bytes under a normalized filename
// @Tags video
// @Produce application/octet-stream
// @Param url query string true "Source video URL"
// @Param type query string true "Download variant" Enums(nowm, wm, audio)
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/video/download [get]
func (h *VideoHandler) DownloadVideo(c *gin.Context) {
	ctx := c.Request.Context()

	sourceURL := c.Query("url")
	if sourceURL == "" {
		h.errorResponse(c, utils.NewValidationError("Missing url query parameter", nil))
		return
	}

	tag := c.DefaultQuery("type", "nowm")
	variant, ok := models.ParseVariant(tag)
	if !ok {
		h.errorResponse(c, utils.NewInvalidVariantError(tag))
		return
	}

	meta, appErr := h.resolver.FetchMetadata(ctx, sourceURL)
	if appErr != nil {
		h.errorResponse(c, appErr)
		return
	}

	mediaURL, appErr := h.resolver.ResolveVariantURL(variant, meta)
	if appErr != nil {
		h.errorResponse(c, appErr)
		return
	}
	if mediaURL == "" {
		h.errorResponse(c, utils.NewVariantUnavailableError(tag))
		return
	}

	finalURL := h.resolver.ResolveRedirectTarget(ctx, mediaURL)

	resp, err := h.relay.Open(ctx, finalURL)
	if err != nil {
		utils.LogError(ctx, "failed to open media stream", err, utils.Fields{
			"url":      finalURL,
			"video_id": meta.VideoID,
		})
		h.errorResponse(c, utils.NewUpstreamFetchError("stream open failed", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	filename := resolver.DeriveFilename(meta, tag)

	c.Header("Content-Type", variant.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("X-Video-Type", tag)
	if length := resp.Header.Get("Content-Length"); length != "" {
		c.Header("Content-Length", length)
	}
	c.Status(http.StatusOK)

	written := h.relay.Copy(ctx, c.Writer, resp.Body)

	utils.LogInfo(ctx, "download served", utils.Fields{
		"video_id":      meta.VideoID,
		"variant":       tag,
		"file_name":     filename,
		"bytes_written": written,
	})
}

func (h *VideoHandler) errorResponse(c *gin.Context, appErr *utils.AppError) {
	c.JSON(appErr.StatusCode, gin.H{
		"error":      appErr,
		"request_id": c.GetString("request_id"),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
