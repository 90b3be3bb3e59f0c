package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rotzmediagroup/storypixie-admin/repositories"
)

const recentActivityLimit = 20

// DashboardController serves the landing page numbers.
type DashboardController struct {
	endUsers repositories.EndUserRepository
	stories  repositories.StoryRepository
	activity repositories.ActivityRepository
}

func NewDashboardController(endUsers repositories.EndUserRepository, stories repositories.StoryRepository, activity repositories.ActivityRepository) *DashboardController {
	return &DashboardController{endUsers: endUsers, stories: stories, activity: activity}
}

func (dc *DashboardController) Overview(ctx echo.Context) error {
	userCount, err := dc.endUsers.Count()
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	storyCounts, err := dc.stories.CountByStatus()
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	recent, err := dc.activity.ListRecent(recentActivityLimit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"users":           userCount,
		"stories":         storyCounts,
		"recent_activity": recent,
	})
}
