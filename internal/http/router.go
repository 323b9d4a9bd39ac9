package http

import (
	_ "embed"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed ui_index.html
var uiIndexHTML []byte

// DefaultAllowedOrigins are the local UI dev servers.
var DefaultAllowedOrigins = []string{
	"http://127.0.0.1:6137",
	"http://localhost:6137",
	"http://localhost:3000",
}

func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	origins := uniqueOrigins(allowedOrigins)
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
	}))

	api := r.Group("/api", localOnly())
	{
		api.GET("/health", h.Health)
		api.GET("/account", h.Account)
		api.GET("/networks", h.Networks)
		api.POST("/network", h.SwitchNetwork)

		api.GET("/session", h.Session)
		api.POST("/session/refresh", h.RefreshSession)
		api.GET("/session/ws", h.SessionStream)
		api.GET("/state", h.State)

		api.POST("/entries", h.AddEntry)
		api.GET("/entries", h.ListEntries)
		api.GET("/entries/count", h.EntryCount)
		api.GET("/entries/cached", h.CachedEntries)
		api.DELETE("/entries/cached", h.ClearCache)
		api.DELETE("/entries/cached/:date", h.HideEntry)
		api.GET("/entries/:date", h.DecryptEntry)

		api.GET("/analysis", h.Analysis)
	}

	r.GET("/", localOnly(), func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", uiIndexHTML)
	})

	return r
}
