package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

var errInjected = errors.New("injected failure")

// memStore is an in-memory Store. WithTx holds the store lock for the
// whole callback and restores a snapshot when the callback fails, which
// gives the same all-or-nothing behaviour as a serialisable transaction.
type memStore struct {
	mu     sync.Mutex
	menu   map[uuid.UUID]*model.MenuItem
	tables map[uuid.UUID]*model.Table
	orders map[uuid.UUID]*model.Order
	kots   map[uuid.UUID]*model.KOT
	log    []model.StatusChange
	seq    map[uuid.UUID]int64

	// failOn names a tx method that returns errInjected.
	failOn string
	// beforeTx runs at the start of every transaction, under the lock.
	beforeTx func(s *memStore)
}

func newMemStore() *memStore {
	return &memStore{
		menu:   map[uuid.UUID]*model.MenuItem{},
		tables: map[uuid.UUID]*model.Table{},
		orders: map[uuid.UUID]*model.Order{},
		kots:   map[uuid.UUID]*model.KOT{},
		seq:    map[uuid.UUID]int64{},
	}
}

func (s *memStore) addMenuItem(rid uuid.UUID, name, price string, stock int) *model.MenuItem {
	m := &model.MenuItem{
		ID: uuid.New(), Name: name, Category: "Mains", Price: decimal.RequireFromString(price),
		Stock: stock, Available: true, RestaurantID: rid,
	}
	s.menu[m.ID] = m
	return m
}

func (s *memStore) addTable(rid uuid.UUID, number int) *model.Table {
	t := &model.Table{ID: uuid.New(), Number: number, Capacity: 4, Location: "Hall",
		Status: model.TableAvailable, RestaurantID: rid}
	s.tables[t.ID] = t
	return t
}

func (s *memStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menu[id].Stock
}

func (s *memStore) table(id uuid.UUID) model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tables[id]
}

func (s *memStore) order(id uuid.UUID) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.orders[id]
}

func (s *memStore) counts() (orders, kots, logs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.kots), len(s.log)
}

func copyOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

func copyKOT(k *model.KOT) *model.KOT {
	c := *k
	c.Items = append([]model.KOTItem(nil), k.Items...)
	return &c
}

type memSnapshot struct {
	menu   map[uuid.UUID]model.MenuItem
	tables map[uuid.UUID]model.Table
	orders map[uuid.UUID]*model.Order
	kots   map[uuid.UUID]*model.KOT
	log    []model.StatusChange
	seq    map[uuid.UUID]int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		menu:   map[uuid.UUID]model.MenuItem{},
		tables: map[uuid.UUID]model.Table{},
		orders: map[uuid.UUID]*model.Order{},
		kots:   map[uuid.UUID]*model.KOT{},
		log:    append([]model.StatusChange(nil), s.log...),
		seq:    map[uuid.UUID]int64{},
	}
	for k, v := range s.menu {
		snap.menu[k] = *v
	}
	for k, v := range s.tables {
		snap.tables[k] = *v
	}
	for k, v := range s.orders {
		snap.orders[k] = copyOrder(v)
	}
	for k, v := range s.kots {
		snap.kots[k] = copyKOT(v)
	}
	for k, v := range s.seq {
		snap.seq[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.menu = map[uuid.UUID]*model.MenuItem{}
	for k, v := range snap.menu {
		v := v
		s.menu[k] = &v
	}
	s.tables = map[uuid.UUID]*model.Table{}
	for k, v := range snap.tables {
		v := v
		s.tables[k] = &v
	}
	s.orders, s.kots, s.log, s.seq = snap.orders, snap.kots, snap.log, snap.seq
}

func (s *memStore) GetOrder(_ context.Context, rid, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.RestaurantID != rid {
		return nil, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *memStore) ListOrders(_ context.Context, rid uuid.UUID, f model.OrderFilter) ([]*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Order
	for _, o := range s.orders {
		if o.RestaurantID != rid || (f.Status != nil && o.Status != *f.Status) || (f.Type != nil && o.Type != *f.Type) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (s *memStore) OrderHistory(_ context.Context, rid, orderID uuid.UUID) ([]model.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StatusChange
	for _, c := range s.log {
		if c.OrderID == orderID && c.RestaurantID == rid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetKOT(_ context.Context, rid, id uuid.UUID) (*model.KOT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.kots[id]
	if !ok || k.RestaurantID != rid {
		return nil, repository.ErrNotFound
	}
	return copyKOT(k), nil
}

func (s *memStore) GetKOTByOrder(_ context.Context, rid, orderID uuid.UUID) (*model.KOT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.kots {
		if k.OrderID == orderID && k.RestaurantID == rid {
			return copyKOT(k), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) ListKOTs(_ context.Context, rid uuid.UUID, status *model.KOTStatus) ([]*model.KOT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.KOT
	for _, k := range s.kots {
		if k.RestaurantID == rid && (status == nil || k.Status == *status) {
			out = append(out, copyKOT(k))
		}
	}
	return out, nil
}

func (s *memStore) GetMenuItems(_ context.Context, rid uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuItems(rid, ids), nil
}

func (s *memStore) menuItems(rid uuid.UUID, ids []uuid.UUID) map[uuid.UUID]*model.MenuItem {
	out := map[uuid.UUID]*model.MenuItem{}
	for _, id := range ids {
		if m, ok := s.menu[id]; ok && m.RestaurantID == rid {
			c := *m
			out[id] = &c
		}
	}
	return out
}

func (s *memStore) GetTable(_ context.Context, rid, id uuid.UUID) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok || t.RestaurantID != rid {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (s *memStore) WithTx(_ context.Context, fn func(repository.OrderTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeTx != nil {
		s.beforeTx(s)
	}
	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// memTx runs with memStore.mu already held.
type memTx struct{ s *memStore }

func (t *memTx) fail(op string) error {
	if t.s.failOn == op {
		return errInjected
	}
	return nil
}

func (t *memTx) LockMenuItems(_ context.Context, rid uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*model.MenuItem, error) {
	if err := t.fail("LockMenuItems"); err != nil {
		return nil, err
	}
	return t.s.menuItems(rid, ids), nil
}

func (t *memTx) DecrementStock(_ context.Context, rid, id uuid.UUID, qty int) error {
	if err := t.fail("DecrementStock"); err != nil {
		return err
	}
	m, ok := t.s.menu[id]
	if !ok || m.RestaurantID != rid || m.Stock < qty {
		return repository.ErrStockExhausted
	}
	m.Stock -= qty
	return nil
}

func (t *memTx) RestoreStock(_ context.Context, rid, id uuid.UUID, qty int) error {
	if err := t.fail("RestoreStock"); err != nil {
		return err
	}
	if m, ok := t.s.menu[id]; ok && m.RestaurantID == rid {
		m.Stock += qty
	}
	return nil
}

func (t *memTx) LockTable(_ context.Context, rid, id uuid.UUID) (*model.Table, error) {
	tb, ok := t.s.tables[id]
	if !ok || tb.RestaurantID != rid {
		return nil, repository.ErrNotFound
	}
	c := *tb
	return &c, nil
}

func (t *memTx) OccupyTable(_ context.Context, rid, id, orderID uuid.UUID) error {
	if err := t.fail("OccupyTable"); err != nil {
		return err
	}
	tb, ok := t.s.tables[id]
	if !ok || tb.RestaurantID != rid || tb.Status != model.TableAvailable || tb.CurrentOrderID != nil {
		return repository.ErrTableTaken
	}
	tb.Status = model.TableOccupied
	tb.CurrentOrderID = &orderID
	return nil
}

func (t *memTx) ReleaseTable(_ context.Context, rid, id, orderID uuid.UUID) error {
	if err := t.fail("ReleaseTable"); err != nil {
		return err
	}
	tb, ok := t.s.tables[id]
	if ok && tb.RestaurantID == rid && tb.CurrentOrderID != nil && *tb.CurrentOrderID == orderID {
		tb.Status = model.TableAvailable
		tb.CurrentOrderID = nil
	}
	return nil
}

func (t *memTx) NextOrderSequence(_ context.Context, rid uuid.UUID) (int64, error) {
	t.s.seq[rid]++
	return t.s.seq[rid], nil
}

func (t *memTx) InsertOrder(_ context.Context, o *model.Order) error {
	if err := t.fail("InsertOrder"); err != nil {
		return err
	}
	t.s.orders[o.ID] = copyOrder(o)
	return nil
}

func (t *memTx) InsertKOT(_ context.Context, k *model.KOT) error {
	if err := t.fail("InsertKOT"); err != nil {
		return err
	}
	t.s.kots[k.ID] = copyKOT(k)
	return nil
}

func (t *memTx) LockOrder(_ context.Context, rid, id uuid.UUID) (*model.Order, error) {
	o, ok := t.s.orders[id]
	if !ok || o.RestaurantID != rid {
		return nil, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

func (t *memTx) SetOrderStatus(_ context.Context, rid, id uuid.UUID, st model.OrderStatus, at time.Time) error {
	if err := t.fail("SetOrderStatus"); err != nil {
		return err
	}
	o, ok := t.s.orders[id]
	if !ok || o.RestaurantID != rid {
		return repository.ErrNotFound
	}
	o.Status, o.UpdatedAt = st, at
	return nil
}

func (t *memTx) LockKOT(_ context.Context, rid, id uuid.UUID) (*model.KOT, error) {
	k, ok := t.s.kots[id]
	if !ok || k.RestaurantID != rid {
		return nil, repository.ErrNotFound
	}
	return copyKOT(k), nil
}

func (t *memTx) SetKOTStatus(_ context.Context, rid, id uuid.UUID, st model.KOTStatus, at time.Time) error {
	if err := t.fail("SetKOTStatus"); err != nil {
		return err
	}
	k, ok := t.s.kots[id]
	if !ok || k.RestaurantID != rid {
		return repository.ErrNotFound
	}
	k.Status, k.UpdatedAt = st, at
	return nil
}

func (t *memTx) AppendStatusLog(_ context.Context, c *model.StatusChange) error {
	if err := t.fail("AppendStatusLog"); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	t.s.log = append(t.s.log, *c)
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store *memStore
	pub   *recordingPublisher
	svc   *OrderService
	id    Identity
}

func newFixture(policy config.OrderPolicy) *fixture {
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := NewOrderService(store, policy, pub, logger.Nop())
	return &fixture{
		store: store,
		pub:   pub,
		svc:   svc,
		id:    Identity{UserID: uuid.New(), Role: model.RoleStaff, RestaurantID: uuid.New()},
	}
}
