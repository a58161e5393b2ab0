package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/auth"
	"crm/internal/directory"
	"crm/internal/domain"
	"crm/internal/providers/whatsapp"
	"crm/internal/service"
	"crm/internal/store"
	"crm/internal/worker"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memStore struct {
	mu          sync.Mutex
	audit       []store.NotificationInsert
	contacts    []domain.Recipient
	contactsErr error
	customers   []domain.Customer
	users       map[string]domain.User
}

func (m *memStore) InsertNotification(ctx context.Context, in store.NotificationInsert) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, in)
	return int64(len(m.audit)), nil
}

func (m *memStore) ListNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	return []domain.Notification{}, nil
}

func (m *memStore) ListCustomerContacts(ctx context.Context, category string) ([]domain.Recipient, error) {
	if m.contactsErr != nil {
		return nil, m.contactsErr
	}
	var out []domain.Recipient
	for _, r := range m.contacts {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return m.customers, nil
}

func (m *memStore) CreateCustomer(ctx context.Context, in store.CustomerInsert) (domain.Customer, error) {
	c := domain.Customer{ID: int64(len(m.customers) + 1), Name: in.Name, Phone: in.Phone, Type: in.Type}
	m.customers = append(m.customers, c)
	return c, nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	u, ok := m.users[email]
	return u, ok, nil
}

type gatewayRecorder struct {
	mu     sync.Mutex
	phones []string
}

func (g *gatewayRecorder) handler(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.phones = append(g.phones, r.URL.Query().Get("phone"))
	g.mu.Unlock()
	_, _ = w.Write([]byte(`{"status":true}`))
}

func (g *gatewayRecorder) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.phones...)
}

type testEnv struct {
	store   *memStore
	gateway *gatewayRecorder
	tokens  *auth.Tokens
	notify  *service.NotificationService
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gw := &gatewayRecorder{}
	gwSrv := httptest.NewServer(http.HandlerFunc(gw.handler))
	t.Cleanup(gwSrv.Close)

	tokens, err := auth.NewTokens(testSecret, time.Hour)
	require.NoError(t, err)

	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	ms := &memStore{
		contacts: []domain.Recipient{
			{Destination: "9000000001", Category: "student"},
			{Destination: "9000000002", Category: "student"},
			{Destination: "9000000003", Category: "student"},
			{Destination: "  ", Category: "student"},
			{Destination: "9000000009", Category: "business"},
		},
		users: map[string]domain.User{
			"admin@cybercity.in": {ID: 1, Name: "Admin", Email: "admin@cybercity.in", Role: domain.RoleAdmin, PasswordHash: hash},
		},
	}
	client := &whatsapp.Client{BaseURL: gwSrv.URL, APIKey: "key", CountryCode: "91"}
	notify := &service.NotificationService{
		Audit:      ms,
		Audience:   &directory.Directory{Store: ms},
		Gateway:    client,
		Dispatcher: &worker.Dispatcher{Sender: client, Pacer: worker.NoPacing{}},
		Jobs:       worker.NewRegistry(10),
		IDGen:      func() string { return "bc_01" },
	}

	s := New()
	api := &API{
		Notifications: notify,
		Auth:          &service.AuthService{Users: ms, Tokens: tokens},
		Customers:     &service.CustomerService{Store: ms},
		Tokens:        tokens,
	}
	api.Register(s.Mux)
	s.Mux.HandleFunc("/healthz", Healthz())

	return &testEnv{store: ms, gateway: gw, tokens: tokens, notify: notify, handler: s.Mux}
}

func (e *testEnv) token(t *testing.T, role domain.Role) string {
	t.Helper()
	tok, err := e.tokens.Issue(domain.User{ID: 1, Role: role, Email: "x@cybercity.in"})
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestBroadcastRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodPost, "/notifications", "", map[string]string{"message": "hi", "targetType": "all"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrNoToken, body["message"])

	rec, body = env.do(t, http.MethodPost, "/notifications", "garbage", map[string]string{"message": "hi", "targetType": "all"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrInvalidTokenMsg, body["message"])
}

func TestBroadcastAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodPost, "/notifications", env.token(t, domain.RoleEmployee), map[string]string{"message": "hi", "targetType": "all"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.gateway.calls())
}

func TestBroadcastMissingFields(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, domain.RoleAdmin)

	for _, body := range []map[string]string{
		{"message": "", "targetType": "student"},
		{"message": "hi"},
		{"message": "   ", "targetType": "student"},
	} {
		rec, out := env.do(t, http.MethodPost, "/notifications", tok, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrBroadcastRequired, out["message"])
	}
	assert.Empty(t, env.store.audit)
	assert.Empty(t, env.gateway.calls())
}

func TestBroadcastToStudents(t *testing.T) {
	env := newTestEnv(t)

	rec, out := env.do(t, http.MethodPost, "/notifications", env.token(t, domain.RoleAdmin),
		map[string]string{"message": "Exam forms open", "targetType": "student"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "bc_01", out["id"])
	assert.EqualValues(t, 3, out["total"])
	assert.EqualValues(t, 3, out["sent"])
	assert.EqualValues(t, 0, out["failed"])

	assert.Equal(t, []string{"919000000001", "919000000002", "919000000003"}, env.gateway.calls())
	require.Len(t, env.store.audit, 1)
	assert.Equal(t, "student", env.store.audit[0].TargetType)
}

func TestBroadcastDirectoryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.contactsErr = errors.New("connection reset")

	rec, out := env.do(t, http.MethodPost, "/notifications", env.token(t, domain.RoleAdmin),
		map[string]string{"message": "hi", "targetType": "all"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrServer, out["message"])
	assert.Empty(t, env.gateway.calls())
}

func TestBroadcastAsync(t *testing.T) {
	env := newTestEnv(t)
	env.notify.Mode = service.ModeAsync
	tok := env.token(t, domain.RoleAdmin)

	rec, out := env.do(t, http.MethodPost, "/notifications", tok, map[string]string{"message": "hi", "targetType": "all"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "bc_01", out["id"])
	assert.EqualValues(t, 4, out["total"])

	require.Eventually(t, func() bool {
		rec, out := env.do(t, http.MethodGet, "/notifications/bc_01", tok, nil)
		return rec.Code == http.StatusOK && out["state"] == string(worker.JobCompleted)
	}, 2*time.Second, 10*time.Millisecond)

	_, out = env.do(t, http.MethodGet, "/notifications/bc_01", tok, nil)
	assert.EqualValues(t, 4, out["sent"])

	rec, _ = env.do(t, http.MethodGet, "/notifications/bc_nope", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec, out := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@cybercity.in", "password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code)
	tok, _ := out["token"].(string)
	claims, err := env.tokens.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	user, _ := out["user"].(map[string]any)
	assert.NotContains(t, user, "password")

	rec, out = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@cybercity.in", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrInvalidCredentials, out["message"])

	rec, out = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email must be a valid email", out["message"])
}

func TestCreateCustomer(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, domain.RoleEmployee)

	rec, out := env.do(t, http.MethodPost, "/customers", tok, map[string]string{"name": "Asha", "phone": "9000000011", "type": "student"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Asha", out["name"])

	rec, out = env.do(t, http.MethodPost, "/customers", tok, map[string]string{"phone": "9000000011"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", out["message"])
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec, out := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestReadyzFailure(t *testing.T) {
	h := Readyz(time.Second, func(ctx context.Context) error { return errors.New("down") })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
