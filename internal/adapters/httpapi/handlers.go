package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"forensdesk/internal/application/commands"
)

var errNoAcquirer = errors.New("acquisition is not configured")

func (s *Server) upload(c *gin.Context) {
	if s.acquirer == nil {
		s.fail(c, errNoAcquirer)
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image", "no file part")
		return
	}
	if fh.Filename == "" {
		badRequest(c, "image", "no selected file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	open := c.DefaultPostForm("open", "true") != "false"
	res, err := commands.NewUploadEvidenceCommand(s.ws, s.acquirer, fh.Filename, f, open).
		Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	setWarning(c, res.Session)
	c.JSON(http.StatusCreated, res)
}

type acquireRequest struct {
	Ref  string `json:"ref"`
	Open *bool  `json:"open"`
}

func (s *Server) acquire(c *gin.Context) {
	if s.acquirer == nil {
		s.fail(c, errNoAcquirer)
		return
	}
	var req acquireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	open := req.Open == nil || *req.Open

	res, err := commands.NewAcquireEvidenceCommand(s.ws, s.acquirer, req.Ref, open).
		Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	setWarning(c, res.Session)
	c.JSON(http.StatusCreated, res)
}

func (s *Server) listEvidence(c *gin.Context) {
	records, err := commands.NewListEvidenceCommand(s.ws).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evidence": records})
}

type registerRequest struct {
	Path string `json:"path"`
}

func (s *Server) registerEvidence(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	res, err := commands.NewRegisterEvidenceCommand(s.ws, req.Path).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) closeEvidence(c *gin.Context) {
	res, err := commands.NewCloseEvidenceCommand(s.ws, c.Param("id")).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"evidence_id":          res.ID,
		"invalidated_sessions": len(res.InvalidatedSessions),
		"message":              res.Message,
	})
}

func (s *Server) auditTrail(c *gin.Context) {
	events, err := commands.NewAuditTrailCommand(s.ws, c.Param("id")).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type openRequest struct {
	EvidenceID string `json:"evidence_id"`
}

func (s *Server) openSession(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	res, err := commands.NewOpenSessionCommand(s.ws, req.EvidenceID).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	setWarning(c, res)
	c.JSON(http.StatusCreated, res)
}

func (s *Server) invalidateSession(c *gin.Context) {
	err := commands.NewInvalidateSessionCommand(s.ws, c.Param("token")).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) partitions(c *gin.Context) {
	res, err := commands.NewListPartitionsCommand(s.ws, c.Query("token")).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) list(c *gin.Context) {
	offset, ok := queryInt64(c, "start_offset", 0)
	if !ok {
		return
	}
	inode, ok := queryInode(c, false)
	if !ok {
		return
	}
	entries, err := commands.NewListDirectoryCommand(s.ws, c.Query("token"), offset, inode).
		Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) file(c *gin.Context) {
	offset, ok := queryInt64(c, "start_offset", 0)
	if !ok {
		return
	}
	inode, ok := queryInode(c, true)
	if !ok {
		return
	}
	content, err := commands.NewReadFileCommand(s.ws, c.Query("token"), *inode, offset).
		Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="inode_%d.bin"`, *inode))
	c.Data(http.StatusOK, "application/octet-stream", content.Data)
}

func (s *Server) view(c *gin.Context) {
	offset, ok := queryInt64(c, "start_offset", 0)
	if !ok {
		return
	}
	inode, ok := queryInode(c, true)
	if !ok {
		return
	}
	res, err := commands.NewViewFileCommand(s.ws, c.Query("token"), *inode, offset).
		Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) preview(c *gin.Context) {
	offset, ok := queryInt64(c, "start_offset", 0)
	if !ok {
		return
	}
	inode, ok := queryInode(c, true)
	if !ok {
		return
	}
	res, err := commands.NewPreviewFileCommand(s.ws, c.Query("token"), *inode, offset).
		Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type carveRequest struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

func (s *Server) carve(c *gin.Context) {
	var req carveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	files, err := commands.NewCarveCommand(s.ws, req.Token, req.Type).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) search(c *gin.Context) {
	query := c.Query("q")
	results, err := commands.NewSearchCommand(s.ws, c.Query("token"), query).Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}
