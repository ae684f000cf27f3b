package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"visitor-management-backend/config"
	"visitor-management-backend/internal/mw"
	"visitor-management-backend/internal/store"
	"visitor-management-backend/internal/visitor"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, service *visitor.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.NewClientRateLimiter(
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		cfg.Server.RequestIPHeader,
	)
	responseCache := mw.NewResponseCache(cacheTTLOrDefault(cfg.Server.CacheTTL))
	caching := responseCache.Middleware()

	handler := NewHandler(s, service, webpushOptions, responseCache, cfg.Location())

	api := r.Group("/api")
	api.Use(rateLimiter.Middleware())
	{
		api.GET("/visitors", caching, handler.ListVisitors)
		api.POST("/visitors", handler.CheckIn)
		api.DELETE("/visitors", handler.DeleteVisitors)

		api.GET("/visitors/calendar", caching, handler.Calendar)
		api.GET("/visitors/stats", caching, handler.Stats)
		api.GET("/visitors/export", handler.ExportVisitors)
		api.POST("/visitors/import", handler.ImportVisitors)

		api.POST("/visitors/:id/checkout", handler.Checkout)
		api.PATCH("/visitors/:id", handler.UpdateVisitor)
		api.DELETE("/visitors/:id", handler.DeleteVisitor)

		api.GET("/to-meet-options", caching, handler.ListToMeetOptions)
		api.POST("/to-meet-options", handler.AddToMeetOption)
		api.PUT("/to-meet-options", handler.RenameToMeetOption)
		api.DELETE("/to-meet-options", handler.RemoveToMeetOption)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

// cacheTTLOrDefault guards against a zero TTL when a caller builds a config
// by hand instead of through config.Load.
func cacheTTLOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return ttl
}
