package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"visitor-management-backend/internal/mw"
	"visitor-management-backend/internal/store"
	"visitor-management-backend/internal/visitor"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	service *visitor.Service
	webpush *webpush.Options
	cache   *mw.ResponseCache
	loc     *time.Location
	now     func() time.Time
}

// NewHandler creates a new API handler. cache and webpushOptions may be nil.
func NewHandler(s store.Store, service *visitor.Service, webpushOptions *webpush.Options, cache *mw.ResponseCache, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		store:   s,
		service: service,
		webpush: webpushOptions,
		cache:   cache,
		loc:     loc,
		now:     time.Now,
	}
}

// clock returns the current time in the configured timezone; the calendar
// windows depend on it.
func (h *Handler) clock() time.Time {
	return h.now().In(h.loc)
}

// flushCache drops cached read responses after any mutation.
func (h *Handler) flushCache() {
	if h.cache != nil {
		h.cache.Flush()
	}
}
