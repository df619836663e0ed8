package web

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

const (
	indexPage    = "index.html"
	notFoundPage = "404.html"
)

// Resolver answers a raw query.
type Resolver interface {
	Resolve(ctx context.Context, q string) []entities.ResultEntry
}

// RequestObserver counts served requests.
type RequestObserver interface {
	ObserveRequest(route string, code int)
}

type searchRequest struct {
	Question *string `json:"question" binding:"required"`
}

type searchResponse struct {
	Result []entities.ResultEntry `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the search API and the static front end.
type Handler struct {
	resolver  Resolver
	staticDir string
	observer  RequestObserver
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
}

// NewHandler creates a new Handler. observer and gatherer may be nil.
func NewHandler(
	resolver Resolver,
	staticDir string,
	observer RequestObserver,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		resolver:  resolver,
		staticDir: staticDir,
		observer:  observer,
		gatherer:  gatherer,
		logger:    logger,
	}
}

// Router builds the gin engine with every route and middleware attached.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(h.logger), cors())
	if h.observer != nil {
		r.Use(observe(h.observer))
	}

	r.GET("/healthz", h.health)
	r.POST("/search", h.search)
	r.OPTIONS("/search", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	if h.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/", func(c *gin.Context) { h.serveFile(c, indexPage) })
	r.NoRoute(h.static)

	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("bad search request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be JSON with a \"question\" field"})
		return
	}

	results := h.resolver.Resolve(c.Request.Context(), *req.Question)
	c.JSON(http.StatusOK, searchResponse{Result: results})
}

// static serves files from the static directory. Extensionless paths fall
// back to the matching .html page; anything else gets the 404 page. Dot
// files such as .env are never served.
func (h *Handler) static(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	rel := path.Clean("/" + c.Request.URL.Path)
	if hasHiddenSegment(rel) {
		h.notFound(c)
		return
	}

	for _, candidate := range []string{rel, rel + ".html"} {
		if h.isFile(candidate) {
			h.serveFile(c, candidate)
			return
		}
	}

	h.notFound(c)
}

func (h *Handler) serveFile(c *gin.Context, rel string) {
	if !h.isFile(rel) {
		h.notFound(c)
		return
	}
	c.File(h.resolve(rel))
}

func (h *Handler) notFound(c *gin.Context) {
	if !h.isFile(notFoundPage) {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	data, err := os.ReadFile(h.resolve(notFoundPage))
	if err != nil {
		h.logger.Error("failed to read 404 page", zap.Error(err))
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", data)
}

func (h *Handler) isFile(rel string) bool {
	info, err := os.Stat(h.resolve(rel))
	return err == nil && info.Mode().IsRegular()
}

// resolve maps a URL path onto the static directory without escaping it.
func (h *Handler) resolve(rel string) string {
	return filepath.Join(h.staticDir, filepath.FromSlash(path.Clean("/"+rel)))
}

func hasHiddenSegment(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}
