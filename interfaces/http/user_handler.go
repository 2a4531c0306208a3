package http

import (
	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/usecase"
)

type UserHandler struct {
	users usecase.IUser
}

func NewUserHandler(users usecase.IUser) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		logger.GetLogger().WithField("userName", req.UserName).Warnf("login failed: %v", err)
		respondError(c, err)
		return
	}
	ok(c, res)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.users.Register(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	created(c, nil)
}
