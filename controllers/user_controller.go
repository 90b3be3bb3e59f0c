package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/services"
)

// UserController manages both admin accounts and the app's reader accounts.
type UserController struct {
	admins   *services.AdminService
	endUsers repositories.EndUserRepository
	activity repositories.ActivityRepository
}

func NewUserController(admins *services.AdminService, endUsers repositories.EndUserRepository, activity repositories.ActivityRepository) *UserController {
	return &UserController{admins: admins, endUsers: endUsers, activity: activity}
}

func (uc *UserController) CreateAdmin(ctx echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	role := models.AdminRole(req.Role)
	if role == "" {
		role = models.RoleModerator
	}
	if !role.Valid() {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	user, err := uc.admins.Create(req.Email, req.Name, req.Password, role)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	uc.record(ctx, models.ActionAdminUpdated, user.Email, "created")
	return ctx.JSON(http.StatusCreated, user)
}

func (uc *UserController) ListAdmins(ctx echo.Context) error {
	users, err := uc.admins.List()
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list admins"})
	}
	return ctx.JSON(http.StatusOK, users)
}

func (uc *UserController) UpdateAdminRole(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	role := models.AdminRole(req.Role)
	if !role.Valid() {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	if err := uc.admins.UpdateRole(id, role); err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
	}

	uc.record(ctx, models.ActionAdminUpdated, strconv.FormatUint(uint64(id), 10), "role="+req.Role)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

func (uc *UserController) SuspendAdmin(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		Suspended bool `json:"suspended"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	if err := uc.admins.SetSuspended(id, req.Suspended); err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
	}

	uc.record(ctx, models.ActionAdminUpdated, strconv.FormatUint(uint64(id), 10), "suspended="+strconv.FormatBool(req.Suspended))
	return ctx.JSON(http.StatusOK, echo.Map{"message": "admin updated"})
}

func (uc *UserController) ListUsers(ctx echo.Context) error {
	offset, _ := strconv.Atoi(ctx.QueryParam("offset"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	users, err := uc.endUsers.List(offset, limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list users"})
	}
	return ctx.JSON(http.StatusOK, users)
}

func (uc *UserController) GetUser(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	user, err := uc.endUsers.FindByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return ctx.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateUserStatus(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}
	if req.Status != models.EndUserActive && req.Status != models.EndUserSuspended {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	if err := uc.endUsers.UpdateStatus(id, req.Status); err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	uc.record(ctx, models.ActionUserUpdated, strconv.FormatUint(uint64(id), 10), "status="+req.Status)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "user updated"})
}

func (uc *UserController) AdjustUserCredits(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	if err := uc.endUsers.AdjustCredits(id, req.Delta); err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to adjust credits"})
	}

	uc.record(ctx, models.ActionUserUpdated, strconv.FormatUint(uint64(id), 10), "credits"+strconv.Itoa(req.Delta))
	return ctx.JSON(http.StatusOK, echo.Map{"message": "credits adjusted"})
}

func (uc *UserController) record(ctx echo.Context, action, target, detail string) {
	admin, ok := ctx.Get("user").(*models.AdminUser)
	if !ok {
		return
	}
	if err := uc.activity.Record(&models.ActivityLog{
		AdminID: admin.ID,
		Action:  action,
		Target:  target,
		Detail:  detail,
	}); err != nil {
		logrus.Error("Error recording activity: ", err)
	}
}

func parseID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	return uint(id), err
}
