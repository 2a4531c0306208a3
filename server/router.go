package server

import (
	nethttp "net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	handler "social-scheduler/interfaces/http"
	"social-scheduler/interfaces/middleware"
)

// NewRouter wires the HTTP surface. Authentication applies to everything under
// /api; login, register and health stay public.
func NewRouter(
	secretKey string,
	userHandler *handler.UserHandler,
	credentialHandler *handler.CredentialHandler,
	postHandler *handler.PostHandler,
) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK"})
	})
	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)

	api := router.Group("/api")
	api.Use(middleware.Auth(secretKey))
	{
		api.POST("/credentials", credentialHandler.Connect)
		api.GET("/credentials", credentialHandler.List)
		api.DELETE("/credentials/:platform", credentialHandler.Disconnect)

		api.POST("/posts", postHandler.Create)
		api.GET("/posts", postHandler.List)
		api.GET("/posts/:id", postHandler.Get)
		api.PUT("/posts/:id", postHandler.Update)
		api.DELETE("/posts/:id", postHandler.Cancel)

		api.GET("/limits", postHandler.Limits)
	}

	return router
}
