package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

// AccountStore is the slice of repository.UserRepo used for user admin.
type AccountStore interface {
	Create(ctx context.Context, u *model.User) error
	ListByRestaurant(ctx context.Context, restaurantID *uuid.UUID) ([]*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRevoker ends every refresh session of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type UserHandler struct {
	Users      AccountStore
	Sessions   SessionRevoker // optional
	BcryptCost int
	Log        *zap.SugaredLogger
}

func NewUserHandler(u AccountStore, sessions SessionRevoker, bcryptCost int, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{Users: u, Sessions: sessions, BcryptCost: bcryptCost, Log: log}
}

type createUserReq struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Role         string     `json:"role"`
	RestaurantID *uuid.UUID `json:"restaurant_id"`
}

// List returns the users of the caller's restaurant. A super admin without
// a tenant header sees every tenant's users.
func (h *UserHandler) List(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var scope *uuid.UUID
	if id.RestaurantID != uuid.Nil {
		rid := id.RestaurantID
		scope = &rid
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.ListByRestaurant(ctx, scope)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Create opens a login account in a restaurant. Admins create users of
// their own restaurant; super admins name the restaurant in the body or
// the tenant header. Super admin accounts are never created over HTTP.
func (h *UserHandler) Create(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if req.Role == "" {
		req.Role = model.RoleStaff
	}
	if req.Name == "" || req.Email == "" {
		return badRequest(c, "name/email required")
	}
	if !model.ValidRole(req.Role) || req.Role == model.RoleSuperAdmin {
		return badRequest(c, "invalid role")
	}

	rid := id.RestaurantID
	if id.IsSuperAdmin() && req.RestaurantID != nil {
		rid = *req.RestaurantID
	}
	if rid == uuid.Nil {
		return badRequest(c, "restaurant_id required")
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if errors.Is(err, utils.ErrWeakPassword) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return respond(c, h.Log, err)
	}

	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		RestaurantID: &rid,
		Active:       true,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Create(ctx, u); err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Infow("user created", "user_id", u.ID, "role", u.Role, "restaurant_id", rid, "by", id.UserID)
	return c.JSON(http.StatusCreated, u)
}

type updateUserReq struct {
	Name         *string    `json:"name"`
	Email        *string    `json:"email"`
	Password     *string    `json:"password"`
	Role         *string    `json:"role"`
	Active       *bool      `json:"active"`
	RestaurantID *uuid.UUID `json:"restaurant_id"`
}

// manageable reports whether the caller may administer target. Admins are
// confined to their own restaurant; super admins reach every account.
func manageable(id service.Identity, target *model.User) error {
	if id.IsSuperAdmin() {
		return nil
	}
	if target.RestaurantID == nil || *target.RestaurantID != id.RestaurantID {
		return repository.ErrForbidden
	}
	return nil
}

// Update edits an account. Admins may not hand out the admin role, nobody
// becomes super admin over HTTP, and only super admins move a user to
// another restaurant. A new password or deactivation ends the user's
// refresh sessions.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	userID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if err := manageable(id, u); err != nil {
		return respond(c, h.Log, err)
	}

	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		switch {
		case !model.ValidRole(role):
			return badRequest(c, "invalid role")
		case role != u.Role && (role == model.RoleSuperAdmin || u.Role == model.RoleSuperAdmin):
			return badRequest(c, "super admin role cannot be granted or removed")
		case !id.IsSuperAdmin() && (role == model.RoleAdmin || role == model.RoleSuperAdmin):
			return respond(c, h.Log, repository.ErrForbidden)
		}
		u.Role = role
	}
	if req.Name != nil {
		if u.Name = strings.TrimSpace(*req.Name); u.Name == "" {
			return badRequest(c, "name required")
		}
	}
	if req.Email != nil {
		if u.Email = strings.ToLower(strings.TrimSpace(*req.Email)); u.Email == "" {
			return badRequest(c, "email required")
		}
	}
	if req.RestaurantID != nil && id.IsSuperAdmin() && u.Role != model.RoleSuperAdmin {
		if *req.RestaurantID == uuid.Nil {
			return badRequest(c, "restaurant_id required")
		}
		rid := *req.RestaurantID
		u.RestaurantID = &rid
	}
	endSessions := false
	if req.Active != nil {
		if !*req.Active && u.ID == id.UserID {
			return badRequest(c, "cannot deactivate your own account")
		}
		endSessions = u.Active && !*req.Active
		u.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.BcryptCost)
		if errors.Is(err, utils.ErrWeakPassword) {
			return badRequest(c, err.Error())
		}
		if err != nil {
			return respond(c, h.Log, err)
		}
		u.PasswordHash = hash
		endSessions = true
	}

	if err := h.Users.Update(ctx, u); err != nil {
		return respond(c, h.Log, err)
	}
	if endSessions && h.Sessions != nil {
		if err := h.Sessions.RevokeAllForUser(ctx, u.ID); err != nil {
			h.Log.Warnw("revoke sessions failed", "user_id", u.ID, "error", err)
		}
	}
	h.Log.Infow("user updated", "user_id", u.ID, "role", u.Role, "by", id.UserID)
	return c.JSON(http.StatusOK, u)
}

// Delete removes an account. Super admins cannot be deleted, and nobody
// deletes their own account.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	userID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if err := manageable(id, u); err != nil {
		return respond(c, h.Log, err)
	}
	if u.Role == model.RoleSuperAdmin {
		return respond(c, h.Log, repository.ErrForbidden)
	}
	if u.ID == id.UserID {
		return badRequest(c, "cannot delete your own account")
	}
	if err := h.Users.Delete(ctx, u.ID); err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Infow("user deleted", "user_id", u.ID, "by", id.UserID)
	return c.NoContent(http.StatusNoContent)
}
