package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
)

// ModelController manages the generation backend configurations used by the
// story and illustration pipelines.
type ModelController struct {
	repo     repositories.AIModelRepository
	activity repositories.ActivityRepository
}

func NewModelController(repo repositories.AIModelRepository, activity repositories.ActivityRepository) *ModelController {
	return &ModelController{repo: repo, activity: activity}
}

func (mc *ModelController) List(ctx echo.Context) error {
	configs, err := mc.repo.List()
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list model configs"})
	}
	return ctx.JSON(http.StatusOK, configs)
}

func (mc *ModelController) Get(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	config, err := mc.repo.FindByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "model config not found"})
	}
	return ctx.JSON(http.StatusOK, config)
}

func (mc *ModelController) Create(ctx echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Provider    string  `json:"provider"`
		ModelID     string  `json:"model_id"`
		Purpose     string  `json:"purpose"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}
	if req.Name == "" || req.Provider == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "name and provider are required"})
	}
	if req.Purpose == "" {
		req.Purpose = models.ModelPurposeStory
	}
	if req.Purpose != models.ModelPurposeStory && req.Purpose != models.ModelPurposeIllustration {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purpose"})
	}

	config := &models.AIModel{
		Name:        req.Name,
		Provider:    req.Provider,
		ModelID:     req.ModelID,
		Purpose:     req.Purpose,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if err := mc.repo.Create(config); err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create model config"})
	}

	mc.record(ctx, config.Name, "created")
	return ctx.JSON(http.StatusCreated, config)
}

func (mc *ModelController) Update(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	config, err := mc.repo.FindByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "model config not found"})
	}

	var req struct {
		Name        *string  `json:"name"`
		ModelID     *string  `json:"model_id"`
		MaxTokens   *int     `json:"max_tokens"`
		Temperature *float64 `json:"temperature"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}
	if req.Name != nil {
		config.Name = *req.Name
	}
	if req.ModelID != nil {
		config.ModelID = *req.ModelID
	}
	if req.MaxTokens != nil {
		config.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		config.Temperature = *req.Temperature
	}

	if err := mc.repo.Update(config); err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update model config"})
	}

	mc.record(ctx, config.Name, "updated")
	return ctx.JSON(http.StatusOK, config)
}

// Activate makes one config the live backend for its purpose.
func (mc *ModelController) Activate(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := mc.repo.Activate(id); err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "model config not found"})
	}

	mc.record(ctx, strconv.FormatUint(uint64(id), 10), "activated")
	return ctx.JSON(http.StatusOK, echo.Map{"message": "model activated"})
}

func (mc *ModelController) record(ctx echo.Context, target, detail string) {
	admin, ok := ctx.Get("user").(*models.AdminUser)
	if !ok {
		return
	}
	if err := mc.activity.Record(&models.ActivityLog{
		AdminID: admin.ID,
		Action:  models.ActionModelUpdated,
		Target:  target,
		Detail:  detail,
	}); err != nil {
		logrus.Error("Error recording activity: ", err)
	}
}
