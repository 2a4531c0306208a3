package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/usecase"
)

type PostHandler struct {
	posts   usecase.IPost
	limiter usecase.IRateLimit
}

func NewPostHandler(posts usecase.IPost, limiter usecase.IRateLimit) *PostHandler {
	return &PostHandler{posts: posts, limiter: limiter}
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, tier := currentUser(c)
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	post, err := h.posts.Create(c.Request.Context(), userID, model.ParseTier(tier), req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, post)
}

func (h *PostHandler) List(c *gin.Context) {
	userID, _ := currentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	posts, err := h.posts.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, posts)
}

func (h *PostHandler) Get(c *gin.Context) {
	userID, _ := currentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid post id")
		return
	}
	post, err := h.posts.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	userID, _ := currentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid post id")
		return
	}
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	post, err := h.posts.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, post)
}

func (h *PostHandler) Cancel(c *gin.Context) {
	userID, _ := currentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid post id")
		return
	}
	if err := h.posts.Cancel(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, nil)
}

// Limits reports the remaining budget for an action without consuming.
func (h *PostHandler) Limits(c *gin.Context) {
	userID, tier := currentUser(c)
	action := model.ActionKind(c.DefaultQuery("action", string(model.ActionPostCreate)))
	status, err := h.limiter.Peek(c.Request.Context(), userID, model.ParseTier(tier), action)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, status)
}
