// Package api wires the HTTP routes onto the record store and the auth service.
package api

import (
	"net/http"

	"techhub/auth"
	"techhub/config"
	"techhub/db"
	"techhub/models"
	"techhub/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with every route and the middleware chain.
func NewRouter(database *db.Database, svc *auth.Service, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(RequestID(), RequestLogger(), Recovery(), CORS(cfg.CorsOrigins))

	router.GET("/", RootHandler)
	router.GET("/health", HealthHandler)

	// --- Public Routes (No Auth Required) ---
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", func(c *gin.Context) {
			RegisterHandler(c, svc, cfg)
		})
		authGroup.POST("/login", LoginRateLimit(cfg.LoginRatePerMinute, cfg.LoginBurst), func(c *gin.Context) {
			LoginHandler(c, svc, cfg)
		})
	}

	publicGroup := router.Group("/api/public")
	{
		publicGroup.GET("/tutorials", func(c *gin.Context) { ListPublicTutorialsHandler(c, database, cfg) })
		publicGroup.GET("/tutorials/:id", func(c *gin.Context) { GetPublicTutorialHandler(c, database, cfg) })
		publicGroup.GET("/internships", func(c *gin.Context) { ListPublicInternshipsHandler(c, database, cfg) })
		publicGroup.GET("/internships/:id", func(c *gin.Context) { GetPublicInternshipHandler(c, database, cfg) })
		publicGroup.GET("/stats", func(c *gin.Context) { PublicStatsHandler(c, database, cfg) })
	}

	// --- Protected Routes (Auth Required) ---
	authenticate := svc.Authenticate()

	meGroup := router.Group("/api/auth", authenticate)
	{
		meGroup.GET("/me", func(c *gin.Context) { MeHandler(c, svc, cfg) })
		meGroup.PUT("/profile", func(c *gin.Context) { UpdateProfileHandler(c, svc, cfg) })
		meGroup.PUT("/change-password", func(c *gin.Context) { ChangePasswordHandler(c, svc, cfg) })
	}

	studentGroup := router.Group("/api/student", authenticate, auth.RequireRole(models.RoleStudent))
	{
		studentGroup.POST("/applications", func(c *gin.Context) { ApplyHandler(c, database, svc, cfg) })
		studentGroup.GET("/applications", func(c *gin.Context) { MyApplicationsHandler(c, database, cfg) })
	}

	mentorGroup := router.Group("/api/mentor", authenticate, auth.RequireRole(models.RoleMentor))
	{
		mentorGroup.GET("/students", func(c *gin.Context) { MentorStudentsHandler(c, database, cfg) })
	}

	partnerGroup := router.Group("/api/partner", authenticate, auth.RequireRole(models.RolePartner))
	{
		partnerGroup.POST("/internships", func(c *gin.Context) { PostInternshipHandler(c, database, cfg) })
		partnerGroup.GET("/internships", func(c *gin.Context) { MyInternshipsHandler(c, database, cfg) })
		partnerGroup.GET("/internships/:id/applications", func(c *gin.Context) { InternshipApplicationsHandler(c, database, cfg) })
	}

	adminGroup := router.Group("/api/admin", authenticate, auth.RequireRole(models.RoleAdmin))
	{
		adminGroup.GET("/users", func(c *gin.Context) { AdminListUsersHandler(c, svc, cfg) })
		adminGroup.GET("/users/stats", func(c *gin.Context) { AdminUserStatsHandler(c, svc, cfg) })
		adminGroup.GET("/users/:id", func(c *gin.Context) { AdminGetUserHandler(c, svc, cfg) })
		adminGroup.DELETE("/users/:id", func(c *gin.Context) { AdminDeleteUserHandler(c, svc, cfg) })
		adminGroup.PUT("/users/:id/role", func(c *gin.Context) { AdminSetRoleHandler(c, svc, cfg) })
		adminGroup.PUT("/users/:id/status", func(c *gin.Context) { AdminSetStatusHandler(c, svc, cfg) })

		adminGroup.GET("/tutorials", func(c *gin.Context) { AdminListTutorialsHandler(c, database, cfg) })
		adminGroup.POST("/tutorials", func(c *gin.Context) { AdminCreateTutorialHandler(c, database, cfg) })
		adminGroup.PUT("/tutorials/:id", func(c *gin.Context) { AdminUpdateTutorialHandler(c, database, cfg) })
		adminGroup.DELETE("/tutorials/:id", func(c *gin.Context) { AdminDeleteTutorialHandler(c, database, cfg) })

		adminGroup.GET("/internships", func(c *gin.Context) { AdminListInternshipsHandler(c, database, cfg) })
		adminGroup.POST("/internships", func(c *gin.Context) { AdminCreateInternshipHandler(c, database, cfg) })
		adminGroup.PUT("/internships/:id", func(c *gin.Context) { AdminUpdateInternshipHandler(c, database, cfg) })
		adminGroup.DELETE("/internships/:id", func(c *gin.Context) { AdminDeleteInternshipHandler(c, database, cfg) })

		adminGroup.GET("/applications", func(c *gin.Context) { AdminListApplicationsHandler(c, database, cfg) })
		adminGroup.PUT("/applications/:id/status", func(c *gin.Context) { AdminSetApplicationStatusHandler(c, database, cfg) })

		adminGroup.GET("/mentorships", func(c *gin.Context) { AdminListMentorshipsHandler(c, database, cfg) })
		adminGroup.POST("/mentorships", func(c *gin.Context) { AdminCreateMentorshipHandler(c, database, cfg) })
		adminGroup.DELETE("/mentorships/:id", func(c *gin.Context) { AdminDeleteMentorshipHandler(c, database, cfg) })

		adminGroup.GET("/stats", func(c *gin.Context) { AdminStatsHandler(c, database, cfg) })
	}

	router.GET("/dev/admin-token", func(c *gin.Context) { DevAdminTokenHandler(c, svc, cfg) })

	// --- Swagger Route ---
	// The UI under /swagger/ reads the document served from /docs/swagger.json.
	router.StaticFile("/docs/swagger.json", cfg.SwaggerFile)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))

	router.NoRoute(func(c *gin.Context) {
		utils.GinError(c, http.StatusNotFound, "Route not found")
	})

	return router
}
