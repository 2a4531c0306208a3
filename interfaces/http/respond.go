package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/dto"
	"social-scheduler/domain/repository"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Success", Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.Res{ResponseCode: "201", ResponseMessage: "Created", Data: data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: msg})
}

// respondError translates the error taxonomy into HTTP. Rate limit rejections
// carry a Retry-After header so well-behaved clients back off precisely.
func respondError(c *gin.Context, err error) {
	var rl *apperror.RateLimitError
	if errors.As(err, &rl) {
		retryAfter := int(time.Until(rl.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.JSON(http.StatusTooManyRequests, dto.Res{
			ResponseCode:    "429",
			ResponseMessage: err.Error(),
			Data:            dto.RateLimitStatus{Action: string(rl.Action), Remaining: rl.Remaining, ResetAt: rl.ResetAt},
		})
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "not found"})
		return
	}
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		badRequest(c, err.Error())
	case apperror.KindNotConnected:
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: err.Error()})
	case apperror.KindReconnectRequired:
		c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: err.Error()})
	case apperror.KindTransient:
		c.JSON(http.StatusBadGateway, dto.Res{ResponseCode: "502", ResponseMessage: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "internal error"})
	}
}

func currentUser(c *gin.Context) (userID, tier string) {
	return c.GetString("user_id"), c.GetString("tier")
}
