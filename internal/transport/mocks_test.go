package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"academy-platform/internal/domain"
	"academy-platform/internal/middleware"
	"academy-platform/internal/repository"
	"academy-platform/internal/service"
	"academy-platform/internal/tenant"
	"academy-platform/internal/theme"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock services for testing

type mockResolver struct {
	dealers map[string]*domain.Dealer
	err     error
}

func (m *mockResolver) ResolveByHost(ctx context.Context, host string) (*domain.Dealer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.dealers[service.NormalizeHost(host)]; ok {
		return d, nil
	}
	return nil, service.ErrTenantNotFound
}

type mockThemeService struct {
	effective  theme.Effective
	presets    []*domain.ThemePreset
	err        error
	lastScope  tenant.Scope
	lastUpdate *service.ThemeUpdate
}

func (m *mockThemeService) Effective(ctx context.Context, dealer *domain.Dealer) (theme.Effective, error) {
	return m.effective, m.err
}

func (m *mockThemeService) ListPresets(ctx context.Context, scope tenant.Scope) ([]*domain.ThemePreset, error) {
	m.lastScope = scope
	return m.presets, m.err
}

func (m *mockThemeService) UpdateTheme(ctx context.Context, scope tenant.Scope, update service.ThemeUpdate) (theme.Effective, error) {
	m.lastScope = scope
	m.lastUpdate = &update
	if m.err != nil {
		return theme.Effective{}, m.err
	}
	return m.effective, nil
}

type mockCatalogService struct {
	categories map[uuid.UUID][]*domain.Category
	products   []service.CatalogProduct
	total      int
	lastScope  tenant.Scope
	lastFilter repository.ProductFilter
	err        error
}

func (m *mockCatalogService) ListCategories(ctx context.Context, scope tenant.Scope) ([]*domain.Category, error) {
	m.lastScope = scope
	if m.err != nil {
		return nil, m.err
	}
	return m.categories[scope.DealerID()], nil
}

func (m *mockCatalogService) ListStorefrontProducts(ctx context.Context, scope tenant.Scope, filter repository.ProductFilter) ([]service.CatalogProduct, int, error) {
	m.lastScope = scope
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.products, m.total, nil
}

type mockOrderService struct {
	order     *domain.ShopOrder
	err       error
	lastInput *service.PlaceOrderInput
	calls     int
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, input service.PlaceOrderInput) (*domain.ShopOrder, error) {
	m.calls++
	m.lastInput = &input
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type mockAcademyService struct {
	group     *domain.Group
	session   *domain.AttendanceSession
	err       error
	lastScope tenant.Scope
	lastName  string
	lastMark  *service.MarkAttendanceInput
	lastDate  time.Time
}

func (m *mockAcademyService) CopyGroup(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, name string) (*domain.Group, error) {
	m.lastScope = scope
	m.lastName = name
	if m.err != nil {
		return nil, m.err
	}
	return m.group, nil
}

func (m *mockAcademyService) MarkAttendance(ctx context.Context, scope tenant.Scope, input service.MarkAttendanceInput) (*domain.AttendanceSession, error) {
	m.lastScope = scope
	m.lastMark = &input
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAcademyService) GetAttendance(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, date time.Time) (*domain.AttendanceSession, error) {
	m.lastScope = scope
	m.lastDate = date
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

const testJWTSecret = "test-secret"

func testAuth() func(http.Handler) http.Handler {
	return middleware.AuthMiddleware(testJWTSecret, zap.NewNop())
}

func dashboardToken(t *testing.T, dealerID uuid.UUID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   uuid.NewString(),
		"role":      role,
		"dealer_id": dealerID.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

type testRequest struct {
	method string
	path   string
	host   string
	token  string
	body   interface{}
}

func serve(t *testing.T, router chi.Router, tr testRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if tr.body != nil {
		switch b := tr.body.(type) {
		case string:
			body.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&body).Encode(b))
		}
	}

	req := httptest.NewRequest(tr.method, tr.path, &body)
	if tr.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tr.host != "" {
		req.Host = tr.host
	}
	if tr.token != "" {
		req.Header.Set("Authorization", "Bearer "+tr.token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func validationFields(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp struct {
		Error struct {
			Details struct {
				ValidationErrors []middleware.ValidationError `json:"validation_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, w, &resp)

	fields := make(map[string]string)
	for _, ve := range resp.Error.Details.ValidationErrors {
		fields[ve.Field] = ve.Message
	}
	return fields
}
