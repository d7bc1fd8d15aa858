package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventsync/internal/models"
	"eventsync/internal/repository"
)

type EventsHandler struct {
	Store      repository.DocumentStore
	States     repository.SyncStateRepository
	Collection string
	Logger     *zap.Logger
}

func (h *EventsHandler) Register(r *gin.Engine) {
	group := r.Group("/api")
	group.GET("/events", h.listEvents)
	group.GET("/events/:id", h.getEvent)
	group.GET("/sync-state", h.listSyncState)
}

// @Summary List stored events
// @Tags events
// @Param limit query int false "limit (max 500)"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/events [get]
func (h *EventsHandler) listEvents(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	limit := repository.NormalizeLimit(intQuery(c, "limit", repository.DefaultListLimit))
	offset := repository.NormalizeOffset(intQuery(c, "offset", 0))
	ctx := c.Request.Context()

	docs, err := h.Store.ListDocuments(ctx, repository.ListDocumentsParams{
		Collection: h.collection(),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.warn("list events failed", err)
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Store.CountDocuments(ctx, h.collection())
	if err != nil {
		h.warn("count events failed", err)
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	items := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		items = append(items, json.RawMessage(doc.Data))
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get one stored event
// @Tags events
// @Param id path int true "event id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/events/{id} [get]
func (h *EventsHandler) getEvent(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		Error(c, http.StatusBadRequest, "invalid event id", nil)
		return
	}
	doc, err := h.Store.GetDocument(c.Request.Context(), h.collection(), id)
	if err != nil {
		h.warn("get event failed", err)
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if doc == nil {
		Error(c, http.StatusNotFound, "event not found", nil)
		return
	}
	Ok(c, json.RawMessage(doc.Data), nil)
}

// @Summary List sync state
// @Tags events
// @Success 200 {object} apiResponse
// @Router /api/sync-state [get]
func (h *EventsHandler) listSyncState(c *gin.Context) {
	if h.States == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	states, err := h.States.ListSyncStates(c.Request.Context())
	if err != nil {
		h.warn("list sync state failed", err)
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, states, nil)
}

func (h *EventsHandler) collection() string {
	if c := strings.TrimSpace(h.Collection); c != "" {
		return c
	}
	return models.EventsCollection
}

func (h *EventsHandler) warn(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(msg, zap.Error(err))
	}
}
