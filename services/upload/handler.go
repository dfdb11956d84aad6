package upload

import (
	"net/http"
	"path/filepath"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"

	"github.com/gin-gonic/gin"
)

func (s *Service) HandleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.Error(errutil.ValidationFailed("file is required", errutil.WithErr(err)))
		return
	}

	f, err := header.Open()
	if err != nil {
		c.Error(err)
		return
	}
	defer f.Close()

	stored, err := s.Store(c.Request.Context(),
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		f,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

func (s *Service) HandleServe(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))

	rc, info, err := s.Open(c.Request.Context(), name)
	if err != nil {
		c.Error(err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, nil)
}
