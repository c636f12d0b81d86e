package routes

import (
	"databank/internal/authz"
	"databank/internal/handlers"
	"databank/internal/middleware"
	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(
	r *gin.Engine,
	tokens services.TokenService,
	authHandler *handlers.AuthHandler,
	setupHandler *handlers.SetupHandler,
	userHandler *handlers.UserHandler,
	projectHandler *handlers.ProjectHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/setup", setupHandler.GetSetupState)
	r.POST("/setup", setupHandler.Setup)

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/account", authHandler.CreateAccount)
	}

	// ---- protected
	requireAuth := middleware.AuthMiddleware(tokens)
	adminOnly := middleware.RequireRoles(authz.RoleAdmin)

	session := r.Group("/", requireAuth)
	{
		session.POST("/auth/confirm-email-code", authHandler.SendConfirmEmailCode)
		session.POST("/auth/verify-account", authHandler.VerifyAccount)
		session.GET("/users/me", userHandler.Me)
	}

	projects := r.Group("/projects", requireAuth)
	{
		projects.POST("", projectHandler.CreateProject)
		projects.GET("", projectHandler.GetAllProjects)
		projects.GET("/:id", projectHandler.GetProject)
		projects.PATCH("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)
		projects.POST("/:id/users", projectHandler.AddUser)
		projects.DELETE("/:id/users/:userId", projectHandler.RemoveUser)
		projects.GET("/:id/datasets", projectHandler.GetProjectDatasets)
		projects.POST("/:id/datasets", projectHandler.AddDataset)
		projects.DELETE("/:id/datasets/:datasetId", projectHandler.RemoveDataset)
	}

	// ADMIN
	admin := r.Group("/", requireAuth, adminOnly)
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.PATCH("/users/:id/verify", userHandler.VerifyUser)
		admin.GET("/admin/verification-policy", setupHandler.GetVerificationPolicy)
		admin.PUT("/admin/verification-policy", setupHandler.UpdateVerificationPolicy)
		admin.POST("/admin/users/:id/datasets", projectHandler.GrantDatasetOwnership)
	}

	return r
}
