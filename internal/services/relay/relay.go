// Package relay turns a resolved CDN address into bytes delivered to the
// caller. The request context carries the client-disconnect signal: when the
// caller goes away the upstream transfer is aborted too.
package relay

import (
	"context"
	"io"
	"net/http"

	"github.com/grabtok/grabtok/internal/utils"
)

// Streamer is the streaming capability the relay needs from the fetch client.
type Streamer interface {
	Stream(ctx context.Context, url string) (*http.Response, error)
}

type Relay struct {
	streamer Streamer
}

func New(s Streamer) *Relay {
	return &Relay{streamer: s}
}

// Open starts the upstream byte stream. The caller owns the returned
// response and must close its body.
func (r *Relay) Open(ctx context.Context, url string) (*http.Response, error) {
	return r.streamer.Stream(ctx, url)
}

// Copy relays the upstream body to the writer. Mid-stream failures after
// headers have gone out cannot change the response status anymore; they are
// logged and the connection is left to terminate.
func (r *Relay) Copy(ctx context.Context, w io.Writer, body io.ReadCloser) int64 {
	defer body.Close()

	written, err := io.Copy(w, body)
	if err != nil {
		if ctx.Err() != nil {
			utils.LogInfo(ctx, "client disconnected mid-stream", utils.Fields{
				"bytes_written": written,
			})
		} else {
			utils.LogError(ctx, "relay stream interrupted", err, utils.Fields{
				"bytes_written": written,
			})
		}
		return written
	}

	utils.LogInfo(ctx, "relay stream completed", utils.Fields{
		"bytes_written": written,
	})
	return written
}
