package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/auth"
	appconfig "github.com/rotzmediagroup/storypixie-admin/config"
	"github.com/rotzmediagroup/storypixie-admin/controllers"
	jobs "github.com/rotzmediagroup/storypixie-admin/job"
	"github.com/rotzmediagroup/storypixie-admin/middlewares"
	"github.com/rotzmediagroup/storypixie-admin/migrations"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/routes"
	"github.com/rotzmediagroup/storypixie-admin/services"
	"github.com/rotzmediagroup/storypixie-admin/storage"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)
}

func setupStorage(ctx context.Context, cfg *appconfig.Config) (storage.Storage, error) {
	if cfg.StorageType == "s3" {
		return storage.NewS3Storage(ctx, cfg.AssetBucket)
	}
	return storage.NewLocalStorage("data/assets"), nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, reading configuration from environment")
	}

	cfg, err := appconfig.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	db, err := repositories.InitDB()
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}
	if err := migrations.MigrateLegacyTwoFactor(db, cfg.SecretEncryptionKey); err != nil {
		logrus.Fatal("Failed to migrate legacy two-factor credentials: ", err)
	}

	assets, err := setupStorage(context.Background(), cfg)
	if err != nil {
		logrus.Fatal("Failed to configure asset storage: ", err)
	}

	userRepo := repositories.NewUserRepository(db)
	twoFactorRepo := repositories.NewTwoFactorRepository(db, cfg.SecretEncryptionKey)
	endUserRepo := repositories.NewEndUserRepository(db)
	storyRepo := repositories.NewStoryRepository(db)
	modelRepo := repositories.NewAIModelRepository(db)
	activityRepo := repositories.NewActivityRepository(db)

	tokens := utils.NewTokenManager(cfg.JWTSecret)
	twoFactorService := services.NewTwoFactorService(twoFactorRepo, utils.DefaultTwoFactorConfig(cfg.TOTPIssuer))
	authService := services.NewAuthService(userRepo, twoFactorService, tokens, activityRepo)
	adminService := services.NewAdminService(userRepo)
	storyService := services.NewStoryService(storyRepo, assets)

	oauthConfig := auth.NewGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(middlewares.RecoveryMiddleware())
	e.Use(middlewares.ErrorHandler())

	authMW := middlewares.NewAuthMiddleware(tokens, userRepo)
	routes.RegisterRoutes(e, routes.Controllers{
		Auth:      controllers.NewAuthController(authService, oauthConfig),
		TwoFactor: controllers.NewTwoFactorController(twoFactorService, activityRepo),
		Users:     controllers.NewUserController(adminService, endUserRepo, activityRepo),
		Stories:   controllers.NewStoryController(storyService, storyRepo, activityRepo),
		Models:    controllers.NewModelController(modelRepo, activityRepo),
		Dashboard: controllers.NewDashboardController(endUserRepo, storyRepo, activityRepo),
	}, authMW, twoFactorService, cfg.MFAEnforcement)

	go jobs.StartActivityCleanupJob(activityRepo)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Server stopped: ", err)
		}
	}()
	logrus.Info("Story Pixie admin panel listening on port ", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logrus.Error("Error during shutdown: ", err)
	}
	logrus.Info("Server stopped")
}
