package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apperrors "github.com/planline/planline/internal/errors"
	"github.com/planline/planline/internal/event"
	"github.com/planline/planline/internal/provider"
)

// handleChat runs one conversation turn. The request carries the full message
// history; the reply is plain text, or an SSE stream of content deltas when
// the client asks for streaming.
func (s *Server) handleChat(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.CodeValidation, "message": "failed to read request body"})
		return
	}

	msgs := gjson.GetBytes(body, "messages")
	if !msgs.Exists() || !msgs.IsArray() {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.CodeValidation, "message": "messages array required"})
		return
	}

	history := make([]provider.Message, 0, len(msgs.Array()))
	for _, m := range msgs.Array() {
		history = append(history, provider.Message{
			Role:    m.Get("role").String(),
			Content: m.Get("content").String(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout())
	defer cancel()

	stream := gjson.GetBytes(body, "stream").Bool() ||
		c.GetHeader("Accept") == "text/event-stream"
	if stream {
		s.streamChat(c, ctx, history)
		return
	}

	reply, err := s.orc.Complete(ctx, history)
	if err != nil {
		chatTurnsTotal.WithLabelValues("plain", "error").Inc()
		writeChatError(c, err)
		return
	}
	chatTurnsTotal.WithLabelValues("plain", "ok").Inc()
	c.String(http.StatusOK, reply)
}

// streamChat relays content deltas as SSE data frames. Function-call turns
// produce a single frame carrying the confirmation message once the call has
// been executed.
func (s *Server) streamChat(c *gin.Context, ctx context.Context, history []provider.Message) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher, _ := c.Writer.(http.Flusher)

	emit := func(delta string) {
		payload, err := sjson.SetBytes([]byte(`{}`), "content", delta)
		if err != nil {
			return
		}
		writeSSEData(c.Writer, payload)
		if flusher != nil {
			flusher.Flush()
		}
	}

	_, err := s.orc.CompleteStream(ctx, history, emit)
	if err != nil {
		chatTurnsTotal.WithLabelValues("stream", "error").Inc()
		if appErr, ok := err.(*apperrors.AppError); ok {
			writeSSEError(c.Writer, appErr.ToJSON())
		} else {
			writeSSEError(c.Writer, []byte(`{"code":"INTERNAL_ERROR","message":"chat turn failed"}`))
		}
	} else {
		chatTurnsTotal.WithLabelValues("stream", "ok").Inc()
	}
	writeSSEDone(c.Writer)
	if flusher != nil {
		flusher.Flush()
	}
}

func writeChatError(c *gin.Context, err error) {
	log.Errorf("chat turn failed: %v", err)
	if appErr, ok := err.(*apperrors.AppError); ok {
		c.JSON(appErr.HTTPStatusCode, gin.H{"error": appErr.Code, "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.CodeInternal, "message": "chat turn failed"})
}

// handleListEvents returns the full event collection.
func (s *Server) handleListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Load())
}

// handleDeleteEvent removes an event by id. Unknown ids are a no-op; the
// response is successful either way.
func (s *Server) handleDeleteEvent(c *gin.Context) {
	id := c.Param("id")

	events := s.store.Load()
	kept := make([]event.Event, 0, len(events))
	removed := false
	for _, ev := range events {
		if ev.ID == id {
			removed = true
			continue
		}
		kept = append(kept, ev)
	}

	if removed {
		if err := s.store.Save(kept); err != nil {
			log.Errorf("failed to delete event %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.CodePersistence, "message": "failed to delete event"})
			return
		}
		eventMutationsTotal.WithLabelValues("delete").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleUpdateEventTime rewrites the start time of an event. Only the time
// field is mutable through this endpoint.
func (s *Server) handleUpdateEventTime(c *gin.Context) {
	id := c.Param("id")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.CodeValidation, "message": "failed to read request body"})
		return
	}
	clock := gjson.GetBytes(body, "time").String()
	if !event.ValidTime(clock) {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.CodeValidation, "message": "time must be in HH:MM format"})
		return
	}

	events := s.store.Load()
	changed := false
	for i := range events {
		if events[i].ID == id {
			events[i].Time = clock
			changed = true
			break
		}
	}

	if changed {
		if err := s.store.Save(events); err != nil {
			log.Errorf("failed to update event %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.CodePersistence, "message": "failed to update event"})
			return
		}
		eventMutationsTotal.WithLabelValues("update_time").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleWatchEvents streams the event collection as SSE frames, pushing a
// fresh snapshot whenever the backing file changes. Polling GET /api/events
// remains the baseline contract; this endpoint is an optimization for
// clients that can hold a connection open.
func (s *Server) handleWatchEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher, _ := c.Writer.(http.Flusher)

	snapshot := func() {
		payload, err := json.Marshal(s.store.Load())
		if err != nil {
			return
		}
		writeSSEData(c.Writer, payload)
		if flusher != nil {
			flusher.Flush()
		}
	}

	snapshot()
	err := s.store.Watch(c.Request.Context(), snapshot)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warnf("event watch ended: %v", err)
	}
}
