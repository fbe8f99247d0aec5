package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

type fakeTables struct {
	rows    map[uuid.UUID]*model.Table
	updated *model.Table
	created *model.Table
}

func (f *fakeTables) List(context.Context, uuid.UUID) ([]*model.Table, error) { return nil, nil }

func (f *fakeTables) GetByID(_ context.Context, rid, id uuid.UUID) (*model.Table, error) {
	t, ok := f.rows[id]
	if !ok || t.RestaurantID != rid {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTables) Create(_ context.Context, t *model.Table) error {
	t.ID = uuid.New()
	f.created = t
	return nil
}

// Update mirrors TableRepo: the status of a seated table cannot change.
func (f *fakeTables) Update(_ context.Context, t *model.Table) error {
	cur := f.rows[t.ID]
	if cur.CurrentOrderID != nil && cur.Status != t.Status {
		return repository.ErrConflict
	}
	f.updated = t
	return nil
}

func (f *fakeTables) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func TestCreateTableValidation(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{"number":4,"capacity":2,"location":"patio"}`, http.StatusCreated},
		{`{"number":4,"capacity":2,"status":"reserved"}`, http.StatusCreated},
		{`{"number":4,"capacity":2,"status":"occupied"}`, http.StatusBadRequest},
		{`{"number":4,"capacity":2,"status":"broken"}`, http.StatusBadRequest},
		{`{"number":0,"capacity":2}`, http.StatusBadRequest},
		{`{"number":4}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		fake := &fakeTables{}
		h := NewTableHandler(fake, logger.Nop())
		c, rec := request(http.MethodPost, "/v1/tables", tt.body, staffIdentity())
		if err := h.Create(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, rec.Code, tt.want)
		}
		if tt.want == http.StatusCreated && fake.created.Status == "" {
			t.Errorf("%s: status not defaulted", tt.body)
		}
	}
}

func TestUpdateSeatedTableStatusConflicts(t *testing.T) {
	id := staffIdentity()
	orderID := uuid.New()
	seated := &model.Table{ID: uuid.New(), Number: 1, Capacity: 4, Status: model.TableOccupied,
		CurrentOrderID: &orderID, RestaurantID: id.RestaurantID}
	fake := &fakeTables{rows: map[uuid.UUID]*model.Table{seated.ID: seated}}
	h := NewTableHandler(fake, logger.Nop())

	c, rec := request(http.MethodPut, "/", `{"status":"available"}`, id, "id", seated.ID.String())
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("freeing a seated table: status = %d", rec.Code)
	}

	c, rec = request(http.MethodPut, "/", `{"location":"window"}`, id, "id", seated.ID.String())
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || fake.updated.Location != "window" || fake.updated.Status != model.TableOccupied {
		t.Errorf("editing location: status = %d, table = %+v", rec.Code, fake.updated)
	}

	other := staffIdentity()
	c, rec = request(http.MethodPut, "/", `{"location":"bar"}`, other, "id", seated.ID.String())
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("other tenant: status = %d", rec.Code)
	}
}

type fakeReservations struct {
	created *model.Reservation
}

func (f *fakeReservations) List(context.Context, uuid.UUID, repository.ReservationFilter) ([]*model.Reservation, error) {
	return nil, nil
}
func (f *fakeReservations) GetByID(context.Context, uuid.UUID, uuid.UUID) (*model.Reservation, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeReservations) Create(_ context.Context, r *model.Reservation) error {
	f.created = r
	return nil
}
func (f *fakeReservations) Update(context.Context, *model.Reservation) error    { return nil }
func (f *fakeReservations) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func TestCreateReservation(t *testing.T) {
	id := staffIdentity()
	table := &model.Table{ID: uuid.New(), Number: 3, Capacity: 4, RestaurantID: id.RestaurantID}
	tables := &fakeTables{rows: map[uuid.UUID]*model.Table{table.ID: table}}

	base := `"customer_name":"Asha","customer_phone":"555-0101","table_id":"` + table.ID.String() + `","date":"2024-06-01"`
	tests := []struct {
		name string
		body string
		want int
	}{
		{"fits", `{` + base + `,"time":"19:30","party_size":4}`, http.StatusCreated},
		{"too large", `{` + base + `,"time":"19:30","party_size":5}`, http.StatusBadRequest},
		{"bad time", `{` + base + `,"time":"7pm","party_size":2}`, http.StatusBadRequest},
		{"unknown table", `{"customer_name":"Asha","customer_phone":"1","table_id":"` + uuid.NewString() +
			`","date":"2024-06-01","time":"19:30","party_size":2}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &fakeReservations{}
			h := NewReservationHandler(res, tables, logger.Nop())
			c, rec := request(http.MethodPost, "/v1/reservations", tt.body, id)
			if err := h.Create(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if tt.want == http.StatusCreated && res.created.Status != model.ReservationPending {
				t.Errorf("status = %q", res.created.Status)
			}
		})
	}
}

type fakeAccounts struct {
	created *model.User
	scope   *uuid.UUID
	rows    map[uuid.UUID]*model.User
	updated *model.User
	deleted uuid.UUID
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAccounts) Update(_ context.Context, u *model.User) error {
	f.updated = u
	return nil
}

func (f *fakeAccounts) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = id
	return nil
}

func (f *fakeAccounts) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	f.created = u
	return nil
}

func (f *fakeAccounts) ListByRestaurant(_ context.Context, rid *uuid.UUID) ([]*model.User, error) {
	f.scope = rid
	return nil, nil
}

func TestCreateUser(t *testing.T) {
	admin := &service.Identity{UserID: uuid.New(), Role: model.RoleAdmin, RestaurantID: uuid.New()}
	super := &service.Identity{UserID: uuid.New(), Role: model.RoleSuperAdmin}
	target := uuid.New()

	tests := []struct {
		name    string
		id      *service.Identity
		body    string
		want    int
		wantRID uuid.UUID
	}{
		{"admin in own restaurant", admin, `{"name":"Ravi","email":"Ravi@Example.com","password":"longenough","role":"manager","restaurant_id":"` + target.String() + `"}`, http.StatusCreated, admin.RestaurantID},
		{"super admin names restaurant", super, `{"name":"Ravi","email":"r@example.com","password":"longenough","restaurant_id":"` + target.String() + `"}`, http.StatusCreated, target},
		{"super admin without restaurant", super, `{"name":"Ravi","email":"r@example.com","password":"longenough"}`, http.StatusBadRequest, uuid.Nil},
		{"weak password", admin, `{"name":"Ravi","email":"r@example.com","password":"short"}`, http.StatusBadRequest, uuid.Nil},
		{"super admin role", admin, `{"name":"Ravi","email":"r@example.com","password":"longenough","role":"super_admin"}`, http.StatusBadRequest, uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &fakeAccounts{}
			h := NewUserHandler(accounts, nil, 4, logger.Nop())
			c, rec := request(http.MethodPost, "/v1/users", tt.body, tt.id)
			if err := h.Create(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if tt.want != http.StatusCreated {
				return
			}
			u := accounts.created
			if *u.RestaurantID != tt.wantRID {
				t.Errorf("restaurant = %s, want %s", *u.RestaurantID, tt.wantRID)
			}
			if !utils.VerifyPassword(u.PasswordHash, "longenough") {
				t.Error("password not hashed with bcrypt")
			}
			if rec.Body.Len() == 0 || strings.Contains(rec.Body.String(), u.PasswordHash) {
				t.Error("password hash rendered")
			}
		})
	}
}

type fakeRestaurants struct{ only *uuid.UUID }

func (f *fakeRestaurants) List(_ context.Context, only *uuid.UUID) ([]*model.Restaurant, error) {
	f.only = only
	return nil, nil
}
func (f *fakeRestaurants) GetByID(_ context.Context, id uuid.UUID) (*model.Restaurant, error) {
	return &model.Restaurant{ID: id, Name: "Spice Route"}, nil
}
func (f *fakeRestaurants) Create(context.Context, *model.Restaurant) error { return nil }
func (f *fakeRestaurants) Update(context.Context, *model.Restaurant) error { return nil }
func (f *fakeRestaurants) Delete(context.Context, uuid.UUID) error         { return nil }

func TestRestaurantVisibility(t *testing.T) {
	store := &fakeRestaurants{}
	h := NewRestaurantHandler(store, logger.Nop())
	id := staffIdentity()

	c, _ := request(http.MethodGet, "/v1/restaurants", "", id)
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	if store.only == nil || *store.only != id.RestaurantID {
		t.Errorf("tenant user listed %v", store.only)
	}

	c, _ = request(http.MethodGet, "/v1/restaurants", "", &service.Identity{UserID: uuid.New(), Role: model.RoleSuperAdmin})
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	if store.only != nil {
		t.Errorf("super admin listing scoped to %v", store.only)
	}

	c, rec := request(http.MethodGet, "/", "", id, "id", uuid.NewString())
	if err := h.Get(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign restaurant: status = %d", rec.Code)
	}
}

type fakeUsers struct{ byEmail map[string]*model.User }

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type storedToken struct {
	user    uuid.UUID
	revoked bool
}

type fakeTokens struct{ rows map[string]*storedToken }

func (f *fakeTokens) StoreRefresh(_ context.Context, uid uuid.UUID, hash string, _ time.Time) error {
	f.rows[hash] = &storedToken{user: uid}
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uuid.UUID, error) {
	t, ok := f.rows[hash]
	if !ok || t.revoked {
		return uuid.Nil, repository.ErrNotFound
	}
	return t.user, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	if t, ok := f.rows[hash]; ok {
		t.revoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, uid uuid.UUID) error {
	for _, t := range f.rows {
		if t.user == uid {
			t.revoked = true
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthHandler, *model.User, *fakeTokens) {
	t.Helper()
	hash, err := utils.HashPassword("correct-horse", 4)
	if err != nil {
		t.Fatal(err)
	}
	rid := uuid.New()
	u := &model.User{ID: uuid.New(), Name: "Meera", Email: "meera@example.com", PasswordHash: hash,
		Role: model.RoleManager, RestaurantID: &rid, Active: true}
	tokens := &fakeTokens{rows: map[string]*storedToken{}}
	cfg := config.Config{JWTSecret: "s3cret", AccessTTLMin: 15, RefreshTTLDays: 7}
	return NewAuthHandler(cfg, &fakeUsers{byEmail: map[string]*model.User{u.Email: u}}, tokens, logger.Nop()), u, tokens
}

func TestLogin(t *testing.T) {
	h, u, _ := newAuthFixture(t)

	c, rec := request(http.MethodPost, "/v1/auth/login", `{"email":" MEERA@example.com ","password":"correct-horse"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	access := decode(t, rec)["access"].(map[string]any)["token"].(string)
	claims, err := utils.ParseAccessToken("s3cret", access)
	if err != nil {
		t.Fatal(err)
	}
	if rid, ok, _ := claims.Restaurant(); !ok || rid != *u.RestaurantID || claims.Role != model.RoleManager {
		t.Errorf("claims = %+v", claims)
	}

	c, rec = request(http.MethodPost, "/v1/auth/login", `{"email":"meera@example.com","password":"wrong"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", rec.Code)
	}

	u.Active = false
	c, rec = request(http.MethodPost, "/v1/auth/login", `{"email":"meera@example.com","password":"correct-horse"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("inactive user: %d", rec.Code)
	}
}

func TestRefreshRotates(t *testing.T) {
	h, _, _ := newAuthFixture(t)
	c, rec := request(http.MethodPost, "/v1/auth/login", `{"email":"meera@example.com","password":"correct-horse"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatal(err)
	}
	first := decode(t, rec)["refresh"].(map[string]any)["token"].(string)

	body := `{"refresh_token":"` + first + `"}`
	c, rec = request(http.MethodPost, "/v1/auth/refresh", body, nil)
	if err := h.Refresh(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d", rec.Code)
	}
	if second := decode(t, rec)["refresh"].(map[string]any)["token"].(string); second == first {
		t.Error("refresh token not rotated")
	}

	c, rec = request(http.MethodPost, "/v1/auth/refresh", body, nil)
	if err := h.Refresh(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("reused refresh token: %d", rec.Code)
	}
}

func TestLogoutRevokesEverySession(t *testing.T) {
	h, u, tokens := newAuthFixture(t)
	for i := 0; i < 2; i++ {
		c, _ := request(http.MethodPost, "/v1/auth/login", `{"email":"meera@example.com","password":"correct-horse"}`, nil)
		if err := h.Login(c); err != nil {
			t.Fatal(err)
		}
	}
	c, rec := request(http.MethodPost, "/v1/auth/logout", "", &service.Identity{UserID: u.ID, Role: u.Role, RestaurantID: *u.RestaurantID})
	if err := h.Logout(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	for hash, tok := range tokens.rows {
		if !tok.revoked {
			t.Errorf("token %s still active", hash[:8])
		}
	}
}

type fakeMenu struct {
	created *model.MenuItem
	cats    []string
}

func (f *fakeMenu) List(context.Context, uuid.UUID, string) ([]*model.MenuItem, error) {
	return nil, nil
}

func (f *fakeMenu) Categories(context.Context, uuid.UUID) ([]string, error) { return f.cats, nil }

func (f *fakeMenu) GetByID(context.Context, uuid.UUID, uuid.UUID) (*model.MenuItem, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeMenu) Create(_ context.Context, m *model.MenuItem) error {
	m.ID = uuid.New()
	f.created = m
	return nil
}

func (f *fakeMenu) Update(context.Context, *model.MenuItem) error      { return nil }
func (f *fakeMenu) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func TestCreateMenuItem(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{"name":"Soup","category":"starters","price":"4.50","stock":10}`, http.StatusCreated},
		{`{"name":"Soup","category":"starters","stock":10}`, http.StatusBadRequest},
		{`{"name":" ","category":"starters","price":4}`, http.StatusBadRequest},
		{`{"name":"Soup","price":4}`, http.StatusBadRequest},
		{`{"name":"Soup","category":"starters","price":-1}`, http.StatusBadRequest},
		{`{"name":"Soup","category":"starters","price":4,"stock":-2}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		fake := &fakeMenu{}
		h := NewMenuHandler(fake, logger.Nop())
		c, rec := request(http.MethodPost, "/v1/menu", tt.body, staffIdentity())
		if err := h.Create(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, rec.Code, tt.want)
		}
		if tt.want == http.StatusCreated && !fake.created.Available {
			t.Errorf("%s: new item should default to available", tt.body)
		}
	}
}

func TestMenuCategoriesNeverNull(t *testing.T) {
	h := NewMenuHandler(&fakeMenu{}, logger.Nop())
	c, rec := request(http.MethodGet, "/v1/menu/categories", "", staffIdentity())
	if err := h.Categories(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("got %d %q, want 200 []", rec.Code, rec.Body.String())
	}
}

// userFixture holds one account per role, the tenant ones in rid.
type userFixture struct {
	rid        uuid.UUID
	admin      *model.User
	manager    *model.User
	outsider   *model.User
	superAdmin *model.User
	accounts   *fakeAccounts
	tokens     *fakeTokens
}

func newUserFixture() *userFixture {
	rid, other := uuid.New(), uuid.New()
	mk := func(role string, r *uuid.UUID) *model.User {
		return &model.User{ID: uuid.New(), Name: role, Email: role + "@example.com", Role: role, RestaurantID: r, Active: true}
	}
	f := &userFixture{
		rid:        rid,
		admin:      mk(model.RoleAdmin, &rid),
		manager:    mk(model.RoleManager, &rid),
		outsider:   mk(model.RoleStaff, &other),
		superAdmin: mk(model.RoleSuperAdmin, nil),
		tokens:     &fakeTokens{rows: map[string]*storedToken{}},
	}
	f.accounts = &fakeAccounts{rows: map[uuid.UUID]*model.User{}}
	for _, u := range []*model.User{f.admin, f.manager, f.outsider, f.superAdmin} {
		f.accounts.rows[u.ID] = u
	}
	return f
}

func (f *userFixture) as(u *model.User) *service.Identity {
	id := &service.Identity{UserID: u.ID, Role: u.Role}
	if u.RestaurantID != nil {
		id.RestaurantID = *u.RestaurantID
	}
	return id
}

func TestUpdateUser(t *testing.T) {
	f := newUserFixture()
	newRID := uuid.New()

	tests := []struct {
		name   string
		caller *model.User
		target *model.User
		body   string
		want   int
	}{
		{"admin renames manager", f.admin, f.manager, `{"name":" Ravi ","email":"RAVI@example.com"}`, http.StatusOK},
		{"admin demotes manager", f.admin, f.manager, `{"role":"staff"}`, http.StatusOK},
		{"admin cannot promote to admin", f.admin, f.manager, `{"role":"admin"}`, http.StatusForbidden},
		{"admin cannot touch another restaurant", f.admin, f.outsider, `{"name":"x"}`, http.StatusForbidden},
		{"admin cannot touch super admin", f.admin, f.superAdmin, `{"name":"x"}`, http.StatusForbidden},
		{"super admin promotes to admin", f.superAdmin, f.manager, `{"role":"admin"}`, http.StatusOK},
		{"nobody grants super admin", f.superAdmin, f.manager, `{"role":"super_admin"}`, http.StatusBadRequest},
		{"unknown role", f.admin, f.manager, `{"role":"chef"}`, http.StatusBadRequest},
		{"blank name", f.admin, f.manager, `{"name":"  "}`, http.StatusBadRequest},
		{"weak password", f.admin, f.manager, `{"password":"short"}`, http.StatusBadRequest},
		{"cannot deactivate self", f.admin, f.admin, `{"active":false}`, http.StatusBadRequest},
		{"super admin moves user", f.superAdmin, f.manager, `{"restaurant_id":"` + newRID.String() + `"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.accounts.updated = nil
			h := NewUserHandler(f.accounts, f.tokens, 4, logger.Nop())
			c, rec := request(http.MethodPut, "/v1/users/"+tt.target.ID.String(), tt.body, f.as(tt.caller), "id", tt.target.ID.String())
			if err := h.Update(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if tt.want != http.StatusOK && f.accounts.updated != nil {
				t.Error("rejected update reached the store")
			}
		})
	}
}

func TestUpdateUserNormalisesAndMoves(t *testing.T) {
	f := newUserFixture()
	h := NewUserHandler(f.accounts, f.tokens, 4, logger.Nop())

	c, _ := request(http.MethodPut, "/", `{"name":" Ravi ","email":" RAVI@Example.com ","restaurant_id":"`+uuid.NewString()+`"}`,
		f.as(f.admin), "id", f.manager.ID.String())
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	u := f.accounts.updated
	if u == nil || u.Name != "Ravi" || u.Email != "ravi@example.com" {
		t.Fatalf("updated = %+v", u)
	}
	if *u.RestaurantID != f.rid {
		t.Errorf("admin moved a user to %s", *u.RestaurantID)
	}
}

func TestUpdateUserPasswordEndsSessions(t *testing.T) {
	f := newUserFixture()
	f.tokens.rows["a"] = &storedToken{user: f.manager.ID}
	f.tokens.rows["b"] = &storedToken{user: f.admin.ID}
	h := NewUserHandler(f.accounts, f.tokens, 4, logger.Nop())

	c, rec := request(http.MethodPut, "/", `{"password":"new-longer-secret"}`, f.as(f.admin), "id", f.manager.ID.String())
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !utils.VerifyPassword(f.accounts.updated.PasswordHash, "new-longer-secret") {
		t.Error("password not rehashed")
	}
	if !f.tokens.rows["a"].revoked {
		t.Error("manager session still valid after password change")
	}
	if f.tokens.rows["b"].revoked {
		t.Error("unrelated session revoked")
	}
	if strings.Contains(rec.Body.String(), f.accounts.updated.PasswordHash) {
		t.Error("password hash rendered")
	}
}

func TestDeleteUser(t *testing.T) {
	f := newUserFixture()

	tests := []struct {
		name   string
		caller *model.User
		target uuid.UUID
		want   int
	}{
		{"admin deletes manager", f.admin, f.manager.ID, http.StatusNoContent},
		{"admin cannot delete another restaurant", f.admin, f.outsider.ID, http.StatusForbidden},
		{"super admin accounts stay", f.superAdmin, f.superAdmin.ID, http.StatusForbidden},
		{"admin cannot delete self", f.admin, f.admin.ID, http.StatusBadRequest},
		{"super admin deletes anywhere", f.superAdmin, f.outsider.ID, http.StatusNoContent},
		{"unknown user", f.admin, uuid.New(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.accounts.deleted = uuid.Nil
			h := NewUserHandler(f.accounts, f.tokens, 4, logger.Nop())
			c, rec := request(http.MethodDelete, "/", "", f.as(tt.caller), "id", tt.target.String())
			if err := h.Delete(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			deleted := f.accounts.deleted == tt.target
			if deleted != (tt.want == http.StatusNoContent) {
				t.Errorf("deleted = %v", deleted)
			}
		})
	}
}
