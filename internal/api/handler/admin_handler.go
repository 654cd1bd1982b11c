package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

// AdminHandler serves user and role administration.
type AdminHandler struct {
	admin ports.AdminService
	auth  ports.AuthService
}

func NewAdminHandler(admin ports.AdminService, auth ports.AuthService) *AdminHandler {
	return &AdminHandler{admin: admin, auth: auth}
}

func userIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

// CreateUser adds a staff account.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id, err := h.admin.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Login:    req.Login,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createUserResponse{UserID: id, Message: "user created"})
}

// ListUsers returns every account with its derived lockout state.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			UserID:         u.ID,
			Login:          u.Login,
			RoleID:         u.RoleID,
			Role:           string(u.Role),
			IsBlocked:      u.IsBlocked,
			State:          u.State,
			FailedAttempts: u.FailedAttempts,
			LastLogin:      u.LastLogin,
			FirstLogin:     u.FirstLogin,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateUser changes login, role or blocked flag.
//
// @Summary      Update a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  resultResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.admin.UpdateUser(c.Request().Context(), ports.UpdateUserInput{
		UserID:    id,
		Login:     req.Login,
		RoleID:    req.RoleID,
		IsBlocked: req.IsBlocked,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resultResponse{Message: res.Message, Changed: res.Changed})
}

// UnblockUser clears the blocked flag and the failed-attempt counter.
//
// @Summary      Unblock a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  resultResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/unblock [post]
func (h *AdminHandler) UnblockUser(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	res, err := h.admin.UnblockUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resultResponse{Message: res.Message, Changed: res.Changed})
}

// BlockUser sets the administrative block.
//
// @Summary      Block a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  resultResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/block [post]
func (h *AdminHandler) BlockUser(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	res, err := h.admin.BlockUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resultResponse{Message: res.Message, Changed: res.Changed})
}

// ResetPassword replaces a user's password with a temporary one.
//
// @Summary      Reset a password to a temporary value
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      resetPasswordRequest  true  "Target login"
// @Success      200   {object}  resetPasswordResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users/reset-password [post]
func (h *AdminHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	temp, err := h.auth.ResetPassword(c.Request().Context(), req.Login)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resetPasswordResponse{Login: req.Login, TemporaryPassword: temp})
}

// ListRoles returns the role catalogue.
//
// @Summary      List roles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/roles [get]
func (h *AdminHandler) ListRoles(c echo.Context) error {
	roles, err := h.admin.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{RoleID: r.ID, Name: string(r.Name), Description: r.Description})
	}
	return c.JSON(http.StatusOK, out)
}
