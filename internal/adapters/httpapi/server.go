// Package httpapi serves the evidence operations over HTTP with gin
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forensdesk/internal/adapters/acquire"
	"forensdesk/internal/application"
	"forensdesk/internal/logging"
	"forensdesk/internal/metrics"
	"forensdesk/internal/ports"
)

// WarningHeader carries the degraded-backend warning of a session open
const WarningHeader = "X-Forensdesk-Warning"

// MaxUploadMemory bounds the multipart form kept in memory; the rest
// spills to temporary files
const MaxUploadMemory = 32 << 20

// Server exposes a workspace over HTTP
type Server struct {
	ws       *application.Workspace
	acquirer ports.EvidenceAcquirer
	lg       *zap.Logger
}

// NewServer creates a server. acquirer may be nil, which disables
// /upload and /api/acquire.
func NewServer(ws *application.Workspace, acquirer ports.EvidenceAcquirer, lg *zap.Logger) *Server {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Server{ws: ws, acquirer: acquirer, lg: lg}
}

// Router builds the gin engine. withMetrics also mounts /metrics.
func (s *Server) Router(withMetrics bool) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = MaxUploadMemory
	r.Use(gin.Recovery(), logging.Middleware(s.lg), requestMetrics())

	r.GET("/healthz", s.health)
	if withMetrics {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	r.POST("/upload", s.upload)

	api := r.Group("/api")
	{
		api.POST("/acquire", s.acquire)

		api.GET("/evidence", s.listEvidence)
		api.POST("/evidence", s.registerEvidence)
		api.DELETE("/evidence/:id", s.closeEvidence)
		api.GET("/evidence/:id/audit", s.auditTrail)

		api.POST("/sessions", s.openSession)
		api.DELETE("/sessions/:token", s.invalidateSession)

		api.GET("/partitions", s.partitions)
		api.GET("/list", s.list)
		api.GET("/file", s.file)
		api.GET("/view", s.view)
		api.GET("/preview", s.preview)
		api.POST("/carve", s.carve)
		api.GET("/search", s.search)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.ws.Sessions.Count(),
		"evidence": len(s.ws.Registry.List()),
	})
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status())
	}
}

// statusFor maps an operation error onto an HTTP status
func statusFor(err error) int {
	var valErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.Is(err, acquire.ErrUnsupportedFile), errors.Is(err, acquire.ErrUnknownScheme):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrNotFound), errors.Is(err, application.ErrUnknownEvidence):
		return http.StatusNotFound
	case errors.Is(err, application.ErrEvidenceClosed):
		return http.StatusConflict
	case errors.Is(err, errNoAcquirer):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if errors.Is(err, application.ErrInvalidToken) {
		msg = "invalid token"
	}
	if status == http.StatusInternalServerError {
		logging.WithContext(c.Request.Context()).Error("request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, field, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": (&application.ValidationError{Field: field, Message: msg}).Error(),
	})
}

// queryInt64 reads an optional signed query parameter
func queryInt64(c *gin.Context, name string, def int64) (int64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, name, "must be an integer")
		return 0, false
	}
	return v, true
}

// queryInode reads an inode query parameter. required reports whether a
// missing value is an error; a missing optional inode is returned as nil.
func queryInode(c *gin.Context, required bool) (*uint64, bool) {
	raw, ok := c.GetQuery("inode")
	if !ok || raw == "" {
		if required {
			badRequest(c, "inode", "is required")
			return nil, false
		}
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(c, "inode", "must be a non-negative integer")
		return nil, false
	}
	return &v, true
}

func setWarning(c *gin.Context, res *application.OpenResult) {
	if res != nil && res.Degraded {
		c.Header(WarningHeader, res.Warning)
	}
}
