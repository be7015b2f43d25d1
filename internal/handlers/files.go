package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commentsapp/backend/internal/metrics"
	"github.com/commentsapp/backend/internal/storage"
	"github.com/commentsapp/backend/internal/util"
)

// UploadImage accepts a multipart image, downscales it to the
// thumbnail bound and returns its public URL.
func (h *Handlers) UploadImage(c *gin.Context) {
	h.upload(c, "image", h.uploader.UploadImage)
}

// UploadTextFile accepts a multipart .txt attachment
func (h *Handlers) UploadTextFile(c *gin.Context) {
	h.upload(c, "text", h.uploader.UploadTextFile)
}

func (h *Handlers) upload(
	c *gin.Context,
	kind string,
	store func(context.Context, multipart.File, *multipart.FileHeader) (*storage.UploadResult, error),
) {
	header, err := c.FormFile("file")
	if err != nil {
		util.RespondBadRequest(c, "missing multipart field: file")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.RespondBadRequest(c, "could not open uploaded file")
		return
	}
	defer file.Close()

	stored, err := store(c.Request.Context(), file, header)
	if err != nil {
		metrics.Get().UploadsTotal.WithLabelValues(kind, "rejected").Inc()
		util.RespondError(c, err)
		return
	}

	metrics.Get().UploadsTotal.WithLabelValues(kind, "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"url":      stored.URL,
		"fileName": stored.FileName,
		"size":     stored.Size,
	})
}
