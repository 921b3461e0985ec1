package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"academy-platform/internal/domain"
	"academy-platform/internal/repository"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockDealerRepository struct {
	dealers map[uuid.UUID]*domain.Dealer
	aliases map[string]uuid.UUID // verified aliases only
	calls   int
	err     error
}

func newMockDealerRepository(dealers ...*domain.Dealer) *mockDealerRepository {
	m := &mockDealerRepository{
		dealers: make(map[uuid.UUID]*domain.Dealer),
		aliases: make(map[string]uuid.UUID),
	}
	for _, d := range dealers {
		m.dealers[d.ID] = d
	}
	return m
}

func (m *mockDealerRepository) FindByOwnDomain(ctx context.Context, host, subdomainLabel string) (*domain.Dealer, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.dealers {
		if !d.IsPublic() {
			continue
		}
		if d.CustomDomain != nil && *d.CustomDomain == host {
			return d, nil
		}
		if d.Subdomain != nil && (*d.Subdomain == host || (subdomainLabel != "" && *d.Subdomain == subdomainLabel)) {
			return d, nil
		}
	}
	return nil, repository.ErrDealerNotFound
}

func (m *mockDealerRepository) FindByVerifiedAlias(ctx context.Context, host string) (*domain.Dealer, error) {
	m.calls++
	if id, ok := m.aliases[host]; ok {
		if d := m.dealers[id]; d.IsPublic() {
			return d, nil
		}
	}
	return nil, repository.ErrDealerNotFound
}

func (m *mockDealerRepository) FindBySlug(ctx context.Context, slug string) (*domain.Dealer, error) {
	m.calls++
	for _, d := range m.dealers {
		if d.Slug == slug {
			return d, nil
		}
	}
	return nil, repository.ErrDealerNotFound
}

func (m *mockDealerRepository) Get(ctx context.Context, scope tenant.Scope) (*domain.Dealer, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	d, ok := m.dealers[scope.DealerID()]
	if !ok {
		return nil, repository.ErrDealerNotFound
	}
	return d, nil
}

func (m *mockDealerRepository) UpdateTheme(ctx context.Context, scope tenant.Scope, presetID *uuid.UUID, themeOverrides, layoutOverrides json.RawMessage) error {
	if err := scope.Check(); err != nil {
		return err
	}
	d, ok := m.dealers[scope.DealerID()]
	if !ok {
		return repository.ErrDealerNotFound
	}
	d.ThemePresetID = presetID
	d.ThemeOverrides = themeOverrides
	d.LayoutOverrides = layoutOverrides
	return nil
}

type mockThemePresetRepository struct {
	presets map[uuid.UUID]*domain.ThemePreset
}

func newMockThemePresetRepository(presets ...*domain.ThemePreset) *mockThemePresetRepository {
	m := &mockThemePresetRepository{presets: make(map[uuid.UUID]*domain.ThemePreset)}
	for _, p := range presets {
		m.presets[p.ID] = p
	}
	return m
}

func (m *mockThemePresetRepository) available(scope tenant.Scope, p *domain.ThemePreset) bool {
	return p.IsSystem || (p.DealerID != nil && *p.DealerID == scope.DealerID())
}

func (m *mockThemePresetRepository) ListAvailable(ctx context.Context, scope tenant.Scope) ([]*domain.ThemePreset, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	var out []*domain.ThemePreset
	for _, p := range m.presets {
		if m.available(scope, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockThemePresetRepository) FindAvailable(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.ThemePreset, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	p, ok := m.presets[id]
	if !ok || !m.available(scope, p) {
		return nil, repository.ErrThemePresetNotFound
	}
	return p, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	variants map[uuid.UUID]*domain.ProductVariant
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
		variants: make(map[uuid.UUID]*domain.ProductVariant),
	}
}

func (m *mockProductRepository) addProduct(dealerID uuid.UUID, name string, price float64) *domain.Product {
	p := &domain.Product{ID: uuid.New(), DealerID: dealerID, Name: name, Price: price, IsActive: true}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepository) addVariant(productID uuid.UUID, name string, stock int, price *float64) *domain.ProductVariant {
	v := &domain.ProductVariant{ID: uuid.New(), ProductID: productID, Name: name, Stock: stock, Price: price, IsActive: true}
	m.variants[v.ID] = v
	return v
}

func (m *mockProductRepository) Create(ctx context.Context, scope tenant.Scope, product *domain.Product) error {
	product.DealerID = scope.DealerID()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) CreateVariant(ctx context.Context, scope tenant.Scope, variant *domain.ProductVariant) error {
	m.variants[variant.ID] = variant
	return nil
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*domain.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok && p.DealerID == scope.DealerID() {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockProductRepository) FindVariantsByIDs(ctx context.Context, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]*domain.ProductVariant, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*domain.ProductVariant)
	for _, id := range ids {
		v, ok := m.variants[id]
		if !ok {
			continue
		}
		if p, ok := m.products[v.ProductID]; ok && p.DealerID == scope.DealerID() {
			out[id] = v
		}
	}
	return out, nil
}

func (m *mockProductRepository) ListVariants(ctx context.Context, scope tenant.Scope, productIDs []uuid.UUID) (map[uuid.UUID][]*domain.ProductVariant, error) {
	out := make(map[uuid.UUID][]*domain.ProductVariant)
	for _, pid := range productIDs {
		for _, v := range m.variants {
			if v.ProductID == pid && v.IsActive {
				out[pid] = append(out[pid], v)
			}
		}
	}
	return out, nil
}

func (m *mockProductRepository) List(ctx context.Context, scope tenant.Scope, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	if err := scope.Check(); err != nil {
		return nil, 0, err
	}
	var out []*domain.Product
	for _, p := range m.products {
		if p.DealerID != scope.DealerID() || (filter.ActiveOnly && !p.IsActive) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

// mockOrderRepository mimics the conditional stock decrement of the real one.
type mockOrderRepository struct {
	mu       sync.Mutex
	products *mockProductRepository
	orders   map[uuid.UUID]*domain.ShopOrder
	numbers  map[string]bool
	calls    int
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{
		products: products,
		orders:   make(map[uuid.UUID]*domain.ShopOrder),
		numbers:  make(map[string]bool),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, scope tenant.Scope, order *domain.ShopOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := scope.Check(); err != nil {
		return err
	}
	if m.numbers[order.OrderNumber] {
		return repository.ErrOrderNumberTaken
	}
	for _, item := range order.Items {
		if item.VariantID == nil {
			continue
		}
		if m.products.variants[*item.VariantID].Stock < item.Quantity {
			return repository.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		if item.VariantID != nil {
			m.products.variants[*item.VariantID].Stock -= item.Quantity
		}
	}
	order.DealerID = scope.DealerID()
	m.numbers[order.OrderNumber] = true
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.ShopOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.DealerID != scope.DealerID() {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

type mockPublisher struct {
	published []*domain.ShopOrder
	err       error
}

func (m *mockPublisher) PublishOrderCreated(ctx context.Context, order *domain.ShopOrder) error {
	m.published = append(m.published, order)
	return m.err
}

type mockDealerCache struct {
	entries map[string]uuid.UUID
	err     error
}

func newMockDealerCache() *mockDealerCache {
	return &mockDealerCache{entries: make(map[string]uuid.UUID)}
}

func (m *mockDealerCache) Get(ctx context.Context, host string) (uuid.UUID, bool, error) {
	if m.err != nil {
		return uuid.Nil, false, m.err
	}
	id, ok := m.entries[host]
	return id, ok, nil
}

func (m *mockDealerCache) Set(ctx context.Context, host string, dealerID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.entries[host] = dealerID
	return nil
}

func (m *mockDealerCache) Delete(ctx context.Context, host string) error {
	delete(m.entries, host)
	return nil
}

type mockCategoryRepository struct {
	categories []*domain.Category
}

func (m *mockCategoryRepository) Create(ctx context.Context, scope tenant.Scope, category *domain.Category) error {
	category.DealerID = scope.DealerID()
	m.categories = append(m.categories, category)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context, scope tenant.Scope) ([]*domain.Category, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	out := []*domain.Category{}
	for _, c := range m.categories {
		if c.DealerID == scope.DealerID() {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockGroupRepository struct {
	groups map[uuid.UUID]*domain.Group
}

func newMockGroupRepository(groups ...*domain.Group) *mockGroupRepository {
	m := &mockGroupRepository{groups: make(map[uuid.UUID]*domain.Group)}
	for _, g := range groups {
		m.groups[g.ID] = g
	}
	return m
}

func (m *mockGroupRepository) FindByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Group, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	g, ok := m.groups[id]
	if !ok || g.DealerID != scope.DealerID() {
		return nil, repository.ErrGroupNotFound
	}
	return g, nil
}

func (m *mockGroupRepository) Copy(ctx context.Context, scope tenant.Scope, sourceID uuid.UUID, target *domain.Group) error {
	source, err := m.FindByID(ctx, scope, sourceID)
	if err != nil {
		return err
	}
	target.DealerID = source.DealerID
	target.TrainerName = source.TrainerName
	target.Schedule = source.Schedule
	target.IsActive = source.IsActive
	target.StudentIDs = append([]uuid.UUID{}, source.StudentIDs...)
	m.groups[target.ID] = target
	return nil
}

type mockAttendanceRepository struct {
	sessions map[string]*domain.AttendanceSession
}

func newMockAttendanceRepository() *mockAttendanceRepository {
	return &mockAttendanceRepository{sessions: make(map[string]*domain.AttendanceSession)}
}

func sessionKey(groupID uuid.UUID, date time.Time) string {
	return groupID.String() + "/" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepository) Upsert(ctx context.Context, scope tenant.Scope, session *domain.AttendanceSession) error {
	key := sessionKey(session.GroupID, session.SessionDate)
	existing, ok := m.sessions[key]
	if !ok {
		session.ID = uuid.New()
		session.DealerID = scope.DealerID()
		m.sessions[key] = session
		return nil
	}
	byStudent := map[uuid.UUID]int{}
	for i, r := range existing.Records {
		byStudent[r.StudentID] = i
	}
	for _, r := range session.Records {
		if i, ok := byStudent[r.StudentID]; ok {
			existing.Records[i].Status = r.Status
		} else {
			existing.Records = append(existing.Records, r)
		}
	}
	existing.Notes = session.Notes
	*session = *existing
	return nil
}

func (m *mockAttendanceRepository) FindByGroupAndDate(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, date time.Time) (*domain.AttendanceSession, error) {
	s, ok := m.sessions[sessionKey(groupID, date)]
	if !ok || s.DealerID != scope.DealerID() {
		return nil, repository.ErrAttendanceSessionNotFound
	}
	return s, nil
}

func mustScope(id uuid.UUID) tenant.Scope {
	s, err := tenant.NewScope(id)
	if err != nil {
		panic(err)
	}
	return s
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
