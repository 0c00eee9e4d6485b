package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coursehub/internal/application/usecase"
)

func NewRouter(authHandler *AuthHandler, courseHandler *CourseHandler, aiHandler *AiHandler, limiter *RateLimiter, auth *usecase.AuthUseCase, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", limiter.Limit(ruleRegister), authHandler.Register)
			authGroup.POST("/login", limiter.Limit(ruleLogin), authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
		}

		api.POST("/ai/ask", limiter.Limit(ruleSuggest), aiHandler.Ask)

		course := api.Group("/courses")
		course.Use(AuthMiddleware(auth))
		{
			course.GET("", courseHandler.List)
			course.GET("/enrolled", courseHandler.ListEnrolled)
			course.GET("/instructor", courseHandler.ListOwned)
			course.GET("/:id", courseHandler.GetOne)
			course.GET("/:id/roster", courseHandler.Roster)
			course.POST("", courseHandler.Create)
			course.PUT("/:id", courseHandler.Update)
			course.PUT("/enroll/:id", courseHandler.Enroll)
			course.DELETE("/:id", courseHandler.Delete)
		}
	}

	return r
}
