package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/igorsilveira/faqbot/pkg/chatapi"
	"github.com/igorsilveira/faqbot/pkg/telemetry"
)

// handleWebSocket answers {"question"} frames one at a time on a single
// connection. Each reply is a ChatResponse or an ErrorResponse frame.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		g.logger.Error("websocket accept failed", slog.String("err", err.Error()))
		return
	}
	defer conn.CloseNow()

	telemetry.Metrics.ActiveConnections.Inc()
	defer telemetry.Metrics.ActiveConnections.Dec()

	sessionID := uuid.NewString()
	logger := g.logger.With(slog.String("session_id", sessionID))
	logger.Info("websocket client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				logger.Info("websocket client disconnected")
			default:
				logger.Warn("websocket read error", slog.String("err", err.Error()))
			}
			return
		}

		question, err := decodeQuestion(data)
		if err != nil {
			if !g.writeFrame(ctx, conn, logger, chatapi.ErrorResponse{Detail: err.Error()}) {
				return
			}
			continue
		}

		engine := g.Engine()
		if engine == nil {
			if !g.writeFrame(ctx, conn, logger, chatapi.ErrorResponse{Detail: detailUnavailable}) {
				return
			}
			continue
		}

		resp, err := g.answer(ctx, engine, question, transportWS)
		var frame any = resp
		if err != nil {
			frame = chatapi.ErrorResponse{Detail: "Error processing question: " + err.Error()}
		}
		if !g.writeFrame(ctx, conn, logger, frame) {
			return
		}
	}
}

func (g *Gateway) writeFrame(ctx context.Context, conn *websocket.Conn, logger *slog.Logger, v any) bool {
	if err := wsjson.Write(ctx, conn, v); err != nil {
		logger.Warn("websocket write failed", slog.String("err", err.Error()))
		return false
	}
	return true
}
