package apihandlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"promptchart/internal/reqctx"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// CORSOrigins lists allowed origins (scheme://host); "*" allows any.
	CORSOrigins []string
	// StaticDir, when set, is served for non-API GET requests with an
	// index.html fallback.
	StaticDir string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *APIHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(), corsMiddleware(opts.CORSOrigins))

	router.GET("/health", h.HealthHandler)

	api := router.Group("/api")
	{
		api.POST("/analyze", h.AnalyzeHandler)
		api.POST("/analyze/async", h.EnqueueHandler)
		api.GET("/history", h.ListHistoryHandler)
		api.GET("/history/:id", h.GetHistoryHandler)
	}

	router.NoRoute(staticFallback(opts.StaticDir))
	return router
}

// requestID tags each request with a uuid, in the context and the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Request-ID"))
		if err != nil {
			id = uuid.New()
		}
		c.Request = c.Request.WithContext(reqctx.WithRequestID(c.Request.Context(), id))
		c.Header("X-Request-ID", id.String())
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields(reqctx.Fields(c.Request.Context()))).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("HTTP request")
	}
}

// corsMiddleware allows any origin when origins is empty or contains "*".
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-Analysis-ID", "X-Analysis-Source"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func staticFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir == "" || c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			NotFound(c, "Not found")
			return
		}
		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}
