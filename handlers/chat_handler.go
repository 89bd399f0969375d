package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/app"
	"github.com/tuitshoxrux/copilot/internal/stream"
	"github.com/tuitshoxrux/copilot/middleware"
	"github.com/tuitshoxrux/copilot/models"
	"github.com/tuitshoxrux/copilot/utils"
)

// ChatRequest is the POST /api/chat request body.
type ChatRequest struct {
	Messages []models.ConversationTurn `json:"messages" validate:"required,min=1,dive"`
}

// ChatHandler handles POST /api/chat. The response is the frame stream:
// one sources frame followed by the generated text deltas.
//
// Errors raised before the first frame still map to a status code; once the
// first frame is on the wire, headers are committed and writing a status
// code would corrupt the stream, so the handler logs and drops the
// connection, leaving the client a truncated stream.
func ChatHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := deps.Logger
		if requestID := middleware.GetRequestIDFromContext(r.Context()); requestID != "" {
			logger = logger.With(zap.String("request_id", requestID))
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteBadRequest(w, "invalid JSON body")
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			HandleValidationError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")

		tracked := &trackingWriter{ResponseWriter: w}
		if err := deps.Chat.Stream(r.Context(), req.Messages, stream.NewEncoder(tracked)); err != nil {
			if tracked.wrote {
				logger.Warn("chat stream interrupted", zap.Error(err))
				return
			}
			HandleServiceError(w, err, logger)
		}
	}
}

// trackingWriter records whether any response byte has been written, which
// decides between reporting a status code and abandoning the stream.
type trackingWriter struct {
	http.ResponseWriter
	wrote bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.wrote = true
	}
	return t.ResponseWriter.Write(p)
}

// Flush forwards to the underlying writer when it supports streaming.
func (t *trackingWriter) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
