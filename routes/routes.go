package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rotzmediagroup/storypixie-admin/controllers"
	"github.com/rotzmediagroup/storypixie-admin/middlewares"
	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/services"
)

// Controllers groups everything RegisterRoutes wires up.
type Controllers struct {
	Auth      *controllers.AuthController
	TwoFactor *controllers.TwoFactorController
	Users     *controllers.UserController
	Stories   *controllers.StoryController
	Models    *controllers.ModelController
	Dashboard *controllers.DashboardController
}

// RegisterRoutes initializes all API routes.
//
// Sessions move through three gates: RequireAuth accepts any valid token,
// RequireFullScope rejects sessions still waiting on a second factor, and
// RequireTwoFactorEnrollment locks unenrolled admins out of everything but
// the setup endpoints when enforcement is on.
func RegisterRoutes(e *echo.Echo, c Controllers, authMW *middlewares.AuthMiddleware, twoFactor *services.TwoFactorService, enforcement string) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public routes
	e.POST("/auth/login", c.Auth.Login)
	e.POST("/auth/google", c.Auth.LoginWithGoogle)

	// Any authenticated session, including pending ones. The verification
	// endpoint must stay reachable with a pending token.
	api := e.Group("/api")
	api.Use(authMW.RequireAuth())
	api.POST("/auth/verify", c.Auth.VerifyLogin)

	// Fully authenticated sessions only.
	full := api.Group("")
	full.Use(authMW.RequireFullScope())
	full.Use(middlewares.RequireTwoFactorEnrollment(twoFactor, enforcement))

	full.GET("/2fa/status", c.TwoFactor.Status)
	full.POST("/2fa/setup", c.TwoFactor.Setup)
	full.POST("/2fa/verify", c.TwoFactor.Verify)
	full.POST("/2fa/disable", c.TwoFactor.Disable)

	full.GET("/dashboard", c.Dashboard.Overview)

	full.GET("/users", c.Users.ListUsers)
	full.GET("/users/:id", c.Users.GetUser)
	full.PATCH("/users/:id/status", c.Users.UpdateUserStatus)
	full.POST("/users/:id/credits", c.Users.AdjustUserCredits)

	// Moderation endpoints are open to every admin role.
	full.GET("/stories", c.Stories.List)
	full.GET("/stories/:id", c.Stories.Get)
	full.POST("/stories/:id/approve", c.Stories.Approve)
	full.POST("/stories/:id/reject", c.Stories.Reject)

	admin := full.Group("", middlewares.RequireRole(models.RoleAdmin))
	admin.DELETE("/stories/:id", c.Stories.Delete)
	admin.POST("/stories/:id/cover", c.Stories.UploadCover)
	admin.POST("/stories/export", c.Stories.Export)

	admin.GET("/models", c.Models.List)
	admin.GET("/models/:id", c.Models.Get)
	admin.POST("/models", c.Models.Create)
	admin.PATCH("/models/:id", c.Models.Update)
	admin.POST("/models/:id/activate", c.Models.Activate)

	owner := full.Group("", middlewares.RequireRole(models.RoleOwner))
	owner.GET("/admins", c.Users.ListAdmins)
	owner.POST("/admins", c.Users.CreateAdmin)
	owner.PATCH("/admins/:id/role", c.Users.UpdateAdminRole)
	owner.PATCH("/admins/:id/suspend", c.Users.SuspendAdmin)
}
