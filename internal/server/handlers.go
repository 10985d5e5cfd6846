package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/internal/pipeline"
)

type PreferencesResponse struct {
	Profile     string   `json:"profile"`
	Topics      []string `json:"topics"`
	Country     string   `json:"country"`
	LastUpdated string   `json:"last_updated,omitempty"`
}

type PreferencesRequest struct {
	Topics  []string `json:"topics"`
	Country string   `json:"country"`
}

type SaveResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// SnapshotEvent is the wire form of a snapshot. Nil pointers mean the
// field is unchanged since the previous event.
type SnapshotEvent struct {
	Stage    string                 `json:"stage"`
	Topic    string                 `json:"topic,omitempty"`
	Progress *float64               `json:"progress,omitempty"`
	Summary  *string                `json:"summary,omitempty"`
	Line     string                 `json:"line,omitempty"`
	Log      string                 `json:"log"`
	Table    *[]domain.AggregateRow `json:"table,omitempty"`
	View     *string                `json:"view,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func toSnapshotEvent(s pipeline.Snapshot) SnapshotEvent {
	evt := SnapshotEvent{
		Stage: s.Stage.String(),
		Topic: s.Topic,
		Line:  s.Line,
		Log:   s.Log,
	}
	if v, ok := s.Progress.Get(); ok {
		evt.Progress = &v
	}
	if v, ok := s.Summary.Get(); ok {
		evt.Summary = &v
	}
	if v, ok := s.Table.Get(); ok {
		if v == nil {
			v = []domain.AggregateRow{}
		}
		evt.Table = &v
	}
	if v, ok := s.View.Get(); ok {
		name := v.String()
		evt.View = &name
	}
	if s.Err != nil {
		evt.Error = s.Err.Error()
	}
	return evt
}

func (h *Handler) profile(c *gin.Context) string {
	if p := strings.TrimSpace(c.Query("profile")); p != "" {
		return p
	}
	return h.defaultProfile
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetPreferences(c *gin.Context) {
	profile := h.profile(c)
	rec := h.prefs.Load(c.Request.Context(), profile)

	res := PreferencesResponse{
		Profile: profile,
		Topics:  rec.Topics,
		Country: rec.Country,
	}
	if res.Topics == nil {
		res.Topics = []string{}
	}
	if !rec.LastUpdated.IsZero() {
		res.LastUpdated = rec.LastUpdated.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PutPreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	out := h.prefs.Save(c.Request.Context(), h.profile(c), domain.PreferenceRecord{
		Topics:  req.Topics,
		Country: req.Country,
	})

	status := http.StatusOK
	var validationErr *domain.ValidationError
	switch {
	case out.OK:
	case errors.Is(out.Err, domain.ErrPersistenceDisabled):
		status = http.StatusServiceUnavailable
	case errors.As(out.Err, &validationErr):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, SaveResponse{OK: out.OK, Message: out.Message})
}

// StreamBriefing runs one briefing and streams every snapshot as a
// server-sent "snapshot" event. Without topic parameters the profile's
// saved preferences are used.
func (h *Handler) StreamBriefing(c *gin.Context) {
	ctx := c.Request.Context()
	topics := c.QueryArray("topic")
	region := c.Query("region")

	if len(topics) == 0 {
		rec := h.prefs.Load(ctx, h.profile(c))
		topics = rec.Topics
		if region == "" {
			region = rec.Country
		}
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sent := 0
	for snap := range h.runner.Run(ctx, topics, region) {
		if ctx.Err() != nil {
			break
		}
		c.SSEvent("snapshot", toSnapshotEvent(snap))
		c.Writer.Flush()
		sent++
	}

	h.log.DebugObj("briefing stream closed", "stream", map[string]any{
		"events":       sent,
		"client_gone":  ctx.Err() != nil,
		"topics_asked": len(topics),
	})
}
