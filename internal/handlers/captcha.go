package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commentsapp/backend/internal/util"
)

type captchaValidateRequest struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// GenerateCaptcha issues a fresh challenge
func (h *Handlers) GenerateCaptcha(c *gin.Context) {
	token, code, err := h.captcha.Generate(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"code":  code,
	})
}

// ValidateCaptcha checks a submitted code. A match marks the token
// ready for one comment submission.
func (h *Handlers) ValidateCaptcha(c *gin.Context) {
	var req captchaValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	valid, err := h.captcha.Validate(c.Request.Context(), req.Token, req.Code)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}
