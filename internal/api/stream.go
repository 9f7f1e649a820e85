package api

import (
	"context"
	"errors"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const streamBuffer = 16

// handleStream sends the current status, then every tracker update, until
// the client goes away.
func (a *API) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	updates := a.tracker.Subscribe(streamBuffer)
	defer a.tracker.Unsubscribe(updates)

	// Reads are only needed to notice the peer closing.
	ctx := conn.CloseRead(r.Context())

	report := a.tracker.Snapshot(a.tracker.Now())
	status := newStatusResponse(report)
	hello := streamMessage{Type: "snapshot", At: report.At, Status: &status}
	if err := wsjson.Write(ctx, conn, hello); err != nil {
		a.logger.Debug().Err(err).Msg("stream write failed")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "tracker stopped")
				return
			}
			if err := wsjson.Write(ctx, conn, newStreamMessage(update)); err != nil {
				if !errors.Is(err, context.Canceled) {
					a.logger.Debug().Err(err).Msg("stream write failed")
				}
				return
			}
		}
	}
}
