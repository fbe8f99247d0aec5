package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

const secret = "router-secret"

// newServer wires the routes with nil stores. Every request below is
// settled by middleware before a handler touches a store.
func newServer() *echo.Echo {
	log := logger.Nop()
	e := echo.New()
	Register(e, Handlers{
		Auth:         handler.NewAuthHandler(config.Config{JWTSecret: secret}, nil, nil, log),
		Orders:       handler.NewOrderHandler(nil, log),
		Tables:       handler.NewTableHandler(nil, log),
		Menu:         handler.NewMenuHandler(nil, log),
		Restaurants:  handler.NewRestaurantHandler(nil, log),
		Staff:        handler.NewStaffHandler(nil, log),
		Reservations: handler.NewReservationHandler(nil, nil, log),
		Users:        handler.NewUserHandler(nil, nil, 4, log),
	}, Options{JWTSecret: secret})
	return e
}

func token(t *testing.T, role string, rid *uuid.UUID) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, uuid.New(), role, rid, 5)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok.Token
}

func TestRouteGuards(t *testing.T) {
	rid := uuid.New()
	e := newServer()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"orders need a token", http.MethodGet, "/v1/orders", "", http.StatusUnauthorized},
		{"super admin needs a tenant", http.MethodGet, "/v1/kots", token(t, model.RoleSuperAdmin, nil), http.StatusBadRequest},
		{"staff cannot create restaurants", http.MethodPost, "/v1/restaurants", token(t, model.RoleStaff, &rid), http.StatusForbidden},
		{"staff cannot edit the menu", http.MethodPost, "/v1/menu", token(t, model.RoleStaff, &rid), http.StatusForbidden},
		{"staff cannot manage staff", http.MethodPost, "/v1/staff", token(t, model.RoleStaff, &rid), http.StatusForbidden},
		{"manager cannot create users", http.MethodPost, "/v1/users", token(t, model.RoleManager, &rid), http.StatusForbidden},
		{"manager cannot delete users", http.MethodDelete, "/v1/users/" + uuid.NewString(), token(t, model.RoleManager, &rid), http.StatusForbidden},
		{"logout needs a token", http.MethodPost, "/v1/auth/logout", "", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/v1/cinemas", token(t, model.RoleStaff, &rid), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

type rosterStore struct{ listed uuid.UUID }

func (r *rosterStore) List(_ context.Context, rid uuid.UUID) ([]*model.Staff, error) {
	r.listed = rid
	return nil, nil
}
func (r *rosterStore) GetByID(context.Context, uuid.UUID, uuid.UUID) (*model.Staff, error) {
	return nil, nil
}
func (r *rosterStore) Create(context.Context, *model.Staff) error         { return nil }
func (r *rosterStore) Update(context.Context, *model.Staff) error         { return nil }
func (r *rosterStore) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

// Every tenant user may read the staff roster; only writes need a manager.
func TestStaffRosterReadableByStaff(t *testing.T) {
	rid := uuid.New()
	store := &rosterStore{}
	log := logger.Nop()
	e := echo.New()
	Register(e, Handlers{Staff: handler.NewStaffHandler(store, log)}, Options{JWTSecret: secret})

	req := httptest.NewRequest(http.MethodGet, "/v1/staff", nil)
	req.Header.Set(echo.HeaderAuthorization, token(t, model.RoleStaff, &rid))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body)
	}
	if store.listed != rid {
		t.Errorf("listed restaurant %s, want %s", store.listed, rid)
	}
}
