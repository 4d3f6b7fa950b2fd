package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"tool-market/internal/handlers"
	"tool-market/internal/models"
	"tool-market/internal/repository"
	"tool-market/internal/services"
)

type fakeProcessor struct {
	mu       sync.Mutex
	amounts  []int64
	captured map[string]bool
}

func (p *fakeProcessor) CreateIntent(_ context.Context, amount int64, currency, key string) (*models.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.amounts = append(p.amounts, amount)
	id := fmt.Sprintf("pi_%d", len(p.amounts))
	return &models.PaymentIntent{ID: id, ClientSecret: id + "_secret", Amount: amount, Currency: currency}, nil
}

func (p *fakeProcessor) RetrieveIntent(_ context.Context, id string) (*models.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.captured[id] {
		return nil, models.ErrUnknownIntent
	}
	return &models.PaymentIntent{ID: id, Status: models.PaymentIntentSucceeded}, nil
}

type fixture struct {
	t      *testing.T
	router http.Handler
	auth   *services.AuthService
	users  *repository.MemoryUserRepository
	proc   *fakeProcessor
}

func newFixture(t *testing.T, strict, verify bool) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	proc := &fakeProcessor{captured: map[string]bool{}}
	auth := services.NewAuthService("test-secret", time.Hour, logger)
	users := repository.NewMemoryUserRepository()
	payments := services.NewPaymentService(proc, nil, time.Hour, "usd", logger)

	var verifier services.ChargeVerifier
	if verify {
		verifier = payments
	}

	deps := Deps{
		Auth:     auth,
		Users:    services.NewUserService(users, auth, logger),
		Tools:    services.NewToolService(repository.NewMemoryToolRepository(), logger),
		Orders:   services.NewOrderService(repository.NewMemoryOrderRepository(), verifier, logger),
		Reviews:  services.NewReviewService(repository.NewMemoryReviewRepository(), logger),
		Payments: payments,
		Checks: map[string]handlers.Pinger{
			"store": handlers.PingFunc(func(context.Context) error { return nil }),
		},
	}
	opts := Options{Strict: strict, RateLimit: rate.Inf}

	return &fixture{
		t:      t,
		router: SetupRouter(deps, opts, logger),
		auth:   auth,
		users:  users,
		proc:   proc,
	}
}

func (f *fixture) token(email string) string {
	f.t.Helper()
	tok, err := f.auth.Issue(email)
	require.NoError(f.t, err)
	return tok
}

func (f *fixture) admin(email string) string {
	f.t.Helper()
	ctx := context.Background()
	_, err := f.users.UpsertByEmail(ctx, email, nil)
	require.NoError(f.t, err)
	_, err = f.users.SetRole(ctx, email, models.RoleAdmin)
	require.NoError(f.t, err)
	return f.token(email)
}

func (f *fixture) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *fixture) placeOrder(email string) string {
	f.t.Helper()
	rec := f.do("POST", "/orders", map[string]interface{}{"tool": "T1", "email": email, "quantity": 1}, "")
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.InsertResult](f.t, rec).InsertedID
}

func TestOrderPlacedThenPaidScenario(t *testing.T) {
	for _, strict := range []bool{false, true} {
		t.Run(fmt.Sprintf("strict=%v", strict), func(t *testing.T) {
			f := newFixture(t, strict, false)
			id := f.placeOrder("u@x.com")

			rec := f.do("GET", "/order/"+id, nil, "")
			require.Equal(t, http.StatusOK, rec.Code)
			raw := decode[map[string]interface{}](t, rec)
			assert.Equal(t, false, raw["paid"])
			assert.Contains(t, raw, "transactionId")
			assert.Nil(t, raw["transactionId"])

			token := ""
			if strict {
				token = f.token("u@x.com")
			}
			rec = f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "tx1"}, token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			order := decode[models.Order](t, f.do("GET", "/order/"+id, nil, ""))
			assert.True(t, order.Paid)
			require.NotNil(t, order.TransactionID)
			assert.Equal(t, "tx1", *order.TransactionID)

			rec = f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "tx1"}, token)
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "tx2"}, token)
			assert.Equal(t, http.StatusConflict, rec.Code)
		})
	}
}

func TestConfirmPaymentRequiresCapturedIntent(t *testing.T) {
	f := newFixture(t, true, true)
	id := f.placeOrder("u@x.com")
	token := f.token("u@x.com")

	rec := f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "pi_forged"}, token)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	order := decode[models.Order](t, f.do("GET", "/order/"+id, nil, ""))
	assert.False(t, order.Paid)
	assert.Nil(t, order.TransactionID)

	f.proc.captured["pi_7"] = true
	rec = f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "pi_7"}, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStrictOrderMutationGuards(t *testing.T) {
	f := newFixture(t, true, false)
	id := f.placeOrder("u@x.com")

	rec := f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "tx1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "tx1"}, f.token("other@x.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do("DELETE", "/order/u@x.com", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do("DELETE", "/order/u@x.com", nil, f.token("u@x.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do("GET", "/manageOrders", nil, f.token("u@x.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do("PUT", "/tool/64b7f0c2a1b2c3d4e5f60718", map[string]int{"quantity": 1}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	root := f.admin("root@x.com")
	rec = f.do("PATCH", "/order/"+id, map[string]string{"transactionId": "tx1"}, root)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do("GET", "/manageOrders", nil, root)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Order](t, rec), 1)

	rec = f.do("DELETE", "/order/u@x.com", nil, root)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.DeleteResult](t, rec).DeletedCount)
}

func TestLegacyGuardTable(t *testing.T) {
	f := newFixture(t, false, false)
	f.placeOrder("u@x.com")

	rec := f.do("GET", "/manageOrders", nil, f.token("u@x.com"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do("GET", "/manageOrders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do("GET", "/manageOrders", nil, "garbage")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do("DELETE", "/order/u@x.com", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do("POST", "/tools", map[string]interface{}{"name": "Drill", "price": 10}, f.token("u@x.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthGateRejections(t *testing.T) {
	f := newFixture(t, true, false)

	expired, err := services.NewAuthService("test-secret", -time.Minute, zerolog.Nop()).Issue("u@x.com")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, f.do("GET", "/orders?email=u@x.com", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do("GET", "/orders?email=u@x.com", nil, "not.a.jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do("GET", "/orders?email=u@x.com", nil, expired).Code)
}

func TestListOrdersOnlyForCaller(t *testing.T) {
	f := newFixture(t, true, false)
	f.placeOrder("a@x.com")
	f.placeOrder("b@x.com")
	token := f.token("a@x.com")

	rec := f.do("GET", "/orders?email=a@x.com", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[[]models.Order](t, rec)
	require.Len(t, own, 1)
	assert.Equal(t, "a@x.com", own[0].Email)

	rec = f.do("GET", "/orders?email=b@x.com", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCustomerCannotElevate(t *testing.T) {
	f := newFixture(t, true, false)

	rec := f.do("PUT", "/user/bob@x.com", map[string]string{"name": "Bob"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.UpsertUserResponse](t, rec)
	assert.NotEmpty(t, res.Token)

	rec = f.do("PUT", "/user/cust@x.com", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	customer := decode[models.UpsertUserResponse](t, rec).Token

	rec = f.do("PUT", "/user/admin/bob@x.com", nil, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	status := decode[models.AdminStatus](t, f.do("GET", "/admin/bob@x.com", nil, ""))
	assert.False(t, status.Admin)

	rec = f.do("PUT", "/user/admin/bob@x.com", nil, f.admin("root@x.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	status = decode[models.AdminStatus](t, f.do("GET", "/admin/bob@x.com", nil, ""))
	assert.True(t, status.Admin)
}

func TestUpsertUserCannotSetRole(t *testing.T) {
	f := newFixture(t, true, false)

	rec := f.do("PUT", "/user/eve@x.com", map[string]string{"name": "Eve", "role": "admin"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[models.AdminStatus](t, f.do("GET", "/admin/eve@x.com", nil, ""))
	assert.False(t, status.Admin)
}

func TestCreatePaymentIntentMinorUnits(t *testing.T) {
	f := newFixture(t, true, false)

	rec := f.do("POST", "/create-payment-intent", map[string]float64{"toolPrice": 25}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "pi_1_secret", decode[models.PaymentIntentResponse](t, rec).ClientSecret)
	assert.Equal(t, []int64{2500}, f.proc.amounts)

	rec = f.do("POST", "/create-payment-intent", map[string]float64{"toolPrice": 0}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogAndReviews(t *testing.T) {
	f := newFixture(t, true, false)
	root := f.admin("root@x.com")

	rec := f.do("POST", "/tools", map[string]interface{}{"name": "Drill", "price": 49.5, "quantity": 10}, root)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := decode[models.InsertResult](t, rec).InsertedID

	tool := decode[models.Tool](t, f.do("GET", "/tool/"+id, nil, ""))
	assert.Equal(t, "Drill", tool.Name)

	assert.Len(t, decode[[]models.Tool](t, f.do("GET", "/tools", nil, "")), 1)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/tool/64b7f0c2a1b2c3d4e5f60718", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do("GET", "/tool/not-an-id", nil, "").Code)

	rec = f.do("POST", "/reviews", map[string]interface{}{"email": "u@x.com", "review": "Great", "rating": 5}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Review](t, f.do("GET", "/reviews", nil, "")), 1)
}

func TestAmbientEndpoints(t *testing.T) {
	f := newFixture(t, true, false)

	assert.Equal(t, http.StatusOK, f.do("GET", "/", nil, "").Code)

	rec := f.do("GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", decode[map[string]string](t, rec)["store"])

	f.do("GET", "/tools", nil, "")
	rec = f.do("GET", "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toolmarket_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, true, false)

	for _, path := range []string{"/order/abc", "/orders", "/user/admin/bob@x.com"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "https://shop.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			req.Header.Set("Access-Control-Request-Headers", "Authorization, Idempotency-Key")
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			assert.Less(t, rec.Code, 300)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
			assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestCORSHeadersOnSimpleRequest(t *testing.T) {
	f := newFixture(t, true, false)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOversizedBodyRejected(t *testing.T) {
	f := newFixture(t, true, false)

	huge := bytes.Repeat([]byte("a"), 2<<20)
	rec := f.do("POST", "/reviews", map[string]string{"email": "u@x.com", "review": string(huge)}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, decode[[]models.Review](t, f.do("GET", "/reviews", nil, "")))
}

func TestCreatePaymentIntentRejectsOutOfRangePrice(t *testing.T) {
	f := newFixture(t, true, false)

	rec := f.do("POST", "/create-payment-intent", map[string]float64{"toolPrice": 2e17}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.proc.amounts)
}
