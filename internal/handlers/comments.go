package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commentsapp/backend/internal/dto"
	apperrors "github.com/commentsapp/backend/internal/errors"
	"github.com/commentsapp/backend/internal/util"
)

// GetComments serves one page of top-level comments with reply trees.
// Query params: page, pageSize, sortBy (createdAt|userName|email),
// ascending. Unparseable values fall back to defaults.
func (h *Handlers) GetComments(c *gin.Context) {
	page := util.ParseInt(c.DefaultQuery("page", "1"), 1)
	pageSize := util.ParseInt(c.DefaultQuery("pageSize", "25"), 25)
	sortBy := c.DefaultQuery("sortBy", "createdAt")
	ascending := util.ParseBool(c.DefaultQuery("ascending", "false"), false)

	result := h.comments.GetComments(c.Request.Context(), page, pageSize, sortBy, ascending)
	c.JSON(http.StatusOK, result)
}

// CreateComment posts a comment or reply. The captcha token must have
// been validated beforehand; each token admits exactly one comment.
func (h *Handlers) CreateComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	ok, err := h.captcha.Consume(c.Request.Context(), req.CaptchaToken)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if !ok {
		util.RespondWithAPIError(c, apperrors.CaptchaInvalid(""))
		return
	}

	created, err := h.comments.CreateComment(
		c.Request.Context(),
		&req,
		c.ClientIP(),
		c.GetHeader("User-Agent"),
	)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// PreviewComment returns the sanitized rendering of text so clients
// can show exactly what will be stored.
func (h *Handlers) PreviewComment(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.PreviewResponse{
		HTML: h.comments.PreviewComment(req.Text),
	})
}
