package http

import (
	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/usecase"
)

type CredentialHandler struct {
	tokens  usecase.ITokenLifecycle
	limiter usecase.IRateLimit
}

func NewCredentialHandler(tokens usecase.ITokenLifecycle, limiter usecase.IRateLimit) *CredentialHandler {
	return &CredentialHandler{tokens: tokens, limiter: limiter}
}

func (h *CredentialHandler) Connect(c *gin.Context) {
	userID, tier := currentUser(c)
	var req dto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if _, err := h.limiter.CheckAndConsume(c.Request.Context(), userID, model.ParseTier(tier), model.ActionCredentialConnect); err != nil {
		respondError(c, err)
		return
	}
	status, err := h.tokens.Connect(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, status)
}

func (h *CredentialHandler) List(c *gin.Context) {
	userID, _ := currentUser(c)
	statuses, err := h.tokens.ListCredentials(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, statuses)
}

func (h *CredentialHandler) Disconnect(c *gin.Context) {
	userID, _ := currentUser(c)
	platform, err := model.ParsePlatform(c.Param("platform"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.tokens.Disconnect(c.Request.Context(), userID, platform); err != nil {
		respondError(c, err)
		return
	}
	ok(c, nil)
}
