package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"numbersapi/internal/config"
	"numbersapi/internal/handlers"
	"numbersapi/internal/middleware"
)

// SetupRoutes mounts the API. authMode selects which login flows exist:
// config.AuthModeCode (email codes) or config.AuthModePassword.
func SetupRoutes(
	r *gin.Engine,
	authMode string,
	tokens middleware.IdentityDecoder,
	authHandler *handlers.AuthHandler,
	numberHandler *handlers.NumberHandler,
) *gin.Engine {

	// ---- system
	r.GET("/", handlers.Health)
	r.GET("/metrics", handlers.Metrics)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// identity is optional from here on
	r.Use(middleware.Identity(tokens))

	api := r.Group("/api")

	// ---- auth
	auth := api.Group("/auth")
	switch authMode {
	case config.AuthModePassword:
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	default:
		auth.POST("/register/start", authHandler.RegisterStart)
		auth.POST("/register/verify", authHandler.RegisterVerify)
		auth.POST("/login/start", authHandler.LoginStart)
		auth.POST("/login/verify", authHandler.LoginVerify)
	}

	api.GET("/me", middleware.RequireIdentity(), authHandler.Me)

	// ---- numbers
	numbers := api.Group("/numbers")
	{
		numbers.POST("", numberHandler.Create)
		numbers.GET("/last", numberHandler.LastValue)
		numbers.GET("/last/datetime", numberHandler.LastDatetime)
		numbers.GET("/second", numberHandler.SecondValue)
		numbers.GET("/second/datetime", numberHandler.SecondDatetime)
		numbers.GET("/all", numberHandler.All)
	}

	return r
}
