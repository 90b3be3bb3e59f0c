package controllers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/services"
)

type StoryController struct {
	stories  *services.StoryService
	repo     repositories.StoryRepository
	activity repositories.ActivityRepository
}

func NewStoryController(stories *services.StoryService, repo repositories.StoryRepository, activity repositories.ActivityRepository) *StoryController {
	return &StoryController{stories: stories, repo: repo, activity: activity}
}

func (sc *StoryController) List(ctx echo.Context) error {
	offset, _ := strconv.Atoi(ctx.QueryParam("offset"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	stories, err := sc.repo.List(models.StoryStatus(ctx.QueryParam("status")), offset, limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list stories"})
	}
	return ctx.JSON(http.StatusOK, stories)
}

func (sc *StoryController) Get(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	story, err := sc.repo.FindByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "story not found"})
	}
	return ctx.JSON(http.StatusOK, story)
}

func (sc *StoryController) Approve(ctx echo.Context) error {
	return sc.review(ctx, true)
}

func (sc *StoryController) Reject(ctx echo.Context) error {
	return sc.review(ctx, false)
}

func (sc *StoryController) review(ctx echo.Context, approve bool) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	admin := ctx.Get("user").(*models.AdminUser)

	story, err := sc.stories.Review(id, admin.ID, approve, req.Note)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "story not found"})
	}

	action := models.ActionStoryRejected
	if approve {
		action = models.ActionStoryApproved
	}
	sc.record(admin, action, strconv.FormatUint(uint64(id), 10), req.Note)

	return ctx.JSON(http.StatusOK, story)
}

func (sc *StoryController) Delete(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := sc.stories.Delete(id); err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "story not found"})
	}

	admin := ctx.Get("user").(*models.AdminUser)
	sc.record(admin, models.ActionStoryDeleted, strconv.FormatUint(uint64(id), 10), "")

	return ctx.JSON(http.StatusOK, echo.Map{"message": "story deleted"})
}

// UploadCover replaces a story's cover image.
func (sc *StoryController) UploadCover(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read file"})
	}
	defer file.Close()

	key, err := sc.stories.UploadCover(ctx.Request().Context(), id, file, filepath.Ext(fileHeader.Filename))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to upload cover"})
	}

	return ctx.JSON(http.StatusOK, echo.Map{"cover_key": key})
}

// Export pushes all approved stories to object storage.
func (sc *StoryController) Export(ctx echo.Context) error {
	exported, prefix, err := sc.stories.ExportApproved(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{
			"error":    "export finished with errors",
			"exported": exported,
		})
	}

	admin := ctx.Get("user").(*models.AdminUser)
	sc.record(admin, models.ActionStoriesExported, prefix, strconv.Itoa(exported)+" stories")

	return ctx.JSON(http.StatusOK, echo.Map{
		"exported": exported,
		"prefix":   prefix,
	})
}

func (sc *StoryController) record(admin *models.AdminUser, action, target, detail string) {
	if err := sc.activity.Record(&models.ActivityLog{
		AdminID: admin.ID,
		Action:  action,
		Target:  target,
		Detail:  detail,
	}); err != nil {
		logrus.Error("Error recording activity: ", err)
	}
}
