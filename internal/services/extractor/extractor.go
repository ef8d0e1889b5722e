// Package extractor turns one raw upstream response into a normalized
// VideoMetadata record. Two interchangeable back-ends exist: the page
// extractor scrapes embedded state blobs out of the public video page, the
// API extractor maps a companion REST payload. Which one runs is chosen at
// construction time.
package extractor

import (
	"context"
	"errors"

	"github.com/grabtok/grabtok/internal/models"
)

// ErrNoUsableMetadata is returned when every strategy has been tried and
// none yielded both a username and a video ID.
var ErrNoUsableMetadata = errors.New("no extraction strategy produced a usable record")

// Extractor is the capability of producing a metadata record from one
// upstream response.
type Extractor interface {
	// RequestURL maps the normalized source URL to the URL that must be
	// fetched for this back-end.
	RequestURL(sourceURL string) string
	// Extract parses the raw response body into a usable record.
	Extract(ctx context.Context, body []byte) (*models.VideoMetadata, error)
}
