package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pixelift/internal/config"
	identitydomain "github.com/smallbiznis/pixelift/internal/identity/domain"
	"github.com/smallbiznis/pixelift/internal/plan"
	removaldomain "github.com/smallbiznis/pixelift/internal/removal/domain"
	txndomain "github.com/smallbiznis/pixelift/internal/transaction/domain"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserService struct {
	balance int64
	err     error
}

func (f *fakeUserService) Create(ctx context.Context, req userdomain.CreateUserRequest) (userdomain.User, error) {
	return userdomain.User{}, nil
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, req userdomain.UpdateProfileRequest) error {
	return nil
}

func (f *fakeUserService) Delete(ctx context.Context, clerkID string) error { return nil }

func (f *fakeUserService) GetByClerkID(ctx context.Context, clerkID string) (userdomain.User, error) {
	return userdomain.User{ClerkID: clerkID, CreditBalance: f.balance}, f.err
}

func (f *fakeUserService) Credits(ctx context.Context, clerkID string) (int64, error) {
	return f.balance, f.err
}

func (f *fakeUserService) AddCredits(ctx context.Context, clerkID string, credits int64) error {
	return f.err
}

func (f *fakeUserService) DebitCredit(ctx context.Context, clerkID string) error { return f.err }

type fakeIdentityService struct {
	err     error
	payload []byte
}

func (f *fakeIdentityService) ProcessWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	f.payload = payload
	return f.err
}

type fakeTxnService struct {
	order      txndomain.CheckoutOrder
	result     txndomain.VerifyPaymentResult
	err        error
	lastCreate txndomain.CreateOrderRequest
	lastVerify txndomain.VerifyPaymentRequest
}

func (f *fakeTxnService) CreateOrder(ctx context.Context, req txndomain.CreateOrderRequest) (txndomain.CheckoutOrder, error) {
	f.lastCreate = req
	return f.order, f.err
}

func (f *fakeTxnService) VerifyPayment(ctx context.Context, req txndomain.VerifyPaymentRequest) (txndomain.VerifyPaymentResult, error) {
	f.lastVerify = req
	return f.result, f.err
}

func (f *fakeTxnService) ListByClerkID(ctx context.Context, clerkID string, cursor string, limit int) ([]txndomain.Transaction, string, error) {
	return nil, "", f.err
}

type fakeRemovalService struct {
	result  removaldomain.RemoveBackgroundResult
	err     error
	lastReq removaldomain.RemoveBackgroundRequest
	calls   int
}

func (f *fakeRemovalService) RemoveBackground(ctx context.Context, req removaldomain.RemoveBackgroundRequest) (removaldomain.RemoveBackgroundResult, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

type serverFakes struct {
	users    *fakeUserService
	identity *fakeIdentityService
	txns     *fakeTxnService
	removal  *fakeRemovalService
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *serverFakes) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fakes := &serverFakes{
		users:    &fakeUserService{balance: 5},
		identity: &fakeIdentityService{},
		txns:     &fakeTxnService{},
		removal:  &fakeRemovalService{},
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ErrorHandlingMiddleware(cfg))

	srv := NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		Log:         zap.NewNop(),
		UserSvc:     fakes.users,
		IdentitySvc: fakes.identity,
		TxnSvc:      fakes.txns,
		RemovalSvc:  fakes.removal,
	})
	return srv, fakes
}

func testToken(t *testing.T, claims map[string]string) string {
	t.Helper()

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	encode := base64.RawURLEncoding.EncodeToString
	return encode([]byte(`{"alg":"none"}`)) + "." + encode(payload) + "." + encode([]byte("sig"))
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestGetCredits(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.users.balance = 42

	req := httptest.NewRequest(http.MethodGet, "/api/user/credits", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool  `json:"success"`
		Credit  int64 `json:"credit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.EqualValues(t, 42, body.Credit)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/credits", nil)
	w := doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMalformedToken(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/credits", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsLegacyTokenHeader(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/credits", nil)
	req.Header.Set("token", testToken(t, map[string]string{"clerkID": "user_2"}))
	w := doRequest(srv, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsTokenWithoutSubject(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/credits", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"role": "admin"}))
	w := doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func multipartImage(t *testing.T, field, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestRemoveBackground(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.removal.result = removaldomain.RemoveBackgroundResult{
		ResultImage: "data:image/png;base64,AAAA",
		Balance:     4,
	}

	body, contentType := multipartImage(t, "image", "photo.jpg", []byte("rawbytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/image/remove-bg", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp removeBackgroundResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "data:image/png;base64,AAAA", resp.ResultImage)
	assert.EqualValues(t, 4, resp.CreditBalance)

	assert.Equal(t, "user_1", fakes.removal.lastReq.ClerkID)
	assert.Equal(t, []byte("rawbytes"), fakes.removal.lastReq.Image)
}

func TestRemoveBackgroundWithoutFile(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/image/remove-bg", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, fakes.removal.calls)
}

func TestRemoveBackgroundInsufficientCredits(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.removal.err = userdomain.ErrInsufficientCredits

	body, contentType := multipartImage(t, "image", "photo.jpg", []byte("raw"))
	req := httptest.NewRequest(http.MethodPost, "/api/image/remove-bg", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "creditBalance")
}

func TestRemoveBackgroundWithoutAPIKey(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.removal.err = removaldomain.ErrNotConfigured

	body, contentType := multipartImage(t, "image", "photo.jpg", []byte("raw"))
	req := httptest.NewRequest(http.MethodPost, "/api/image/remove-bg", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "configuration_error")
}

func TestCreatePaymentOrder(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.txns.order = txndomain.CheckoutOrder{
		TransactionID: "123",
		OrderID:       "order_abc",
		Amount:        25000,
		Currency:      "USD",
		Plan:          "business",
		Credits:       5000,
	}

	req := httptest.NewRequest(http.MethodPost, "/api/user/payment", bytes.NewBufferString(`{"clerkID":"user_1","planID":"business"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "user_1", fakes.txns.lastCreate.ClerkID)
	assert.Equal(t, "business", fakes.txns.lastCreate.PlanID)
	assert.Contains(t, w.Body.String(), "order_abc")
	assert.Contains(t, w.Body.String(), "25000")
}

func TestCreatePaymentOrderAcceptsLowerCamelPlanKey(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.txns.order = txndomain.CheckoutOrder{OrderID: "order_abc"}

	req := httptest.NewRequest(http.MethodPost, "/api/user/payment", bytes.NewBufferString(`{"planId":"advanced"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "advanced", fakes.txns.lastCreate.PlanID)
}

func TestCreatePaymentOrderUnknownPlan(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.txns.err = plan.ErrUnknownPlan

	req := httptest.NewRequest(http.MethodPost, "/api/user/payment", bytes.NewBufferString(`{"planId":"platinum"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "basic, advanced, business")
}

func TestVerifyPayment(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.txns.result = txndomain.VerifyPaymentResult{Credited: true, Credits: 100, Balance: 105}

	payload := `{"razorpay_payment_id":"pay_1","razorpay_order_id":"order_1","razorpay_signature":"sig"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/verify-payment", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "order_1", fakes.txns.lastVerify.OrderID)
	assert.Equal(t, "pay_1", fakes.txns.lastVerify.PaymentID)
	assert.Equal(t, "user_1", fakes.txns.lastVerify.ClerkID)
	assert.Contains(t, w.Body.String(), `"credited":true`)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.txns.err = txndomain.ErrSignatureMismatch

	payload := `{"razorpay_payment_id":"pay_1","razorpay_order_id":"order_1","razorpay_signature":"bad"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/verify-payment", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")
}

func TestIdentityWebhook(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})

	payload := `{"type":"user.created","data":{"id":"user_1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/webhooks", bytes.NewBufferString(payload))

	w := doRequest(srv, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"webhook processed"}`, w.Body.String())
	assert.Equal(t, []byte(payload), fakes.identity.payload)
}

func TestIdentityWebhookBadSignature(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.identity.err = identitydomain.ErrInvalidSignature

	req := httptest.NewRequest(http.MethodPost, "/api/user/webhook", bytes.NewBufferString(`{}`))
	w := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestIdentityWebhookSwallowsInternalFailures(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.identity.err = context.DeadlineExceeded

	req := httptest.NewRequest(http.MethodPost, "/api/user/webhook", bytes.NewBufferString(`{"type":"user.created"}`))
	w := doRequest(srv, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "webhook received")
}

func TestIdentityWebhookRedelivery(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{})
	fakes.identity.err = identitydomain.ErrEventAlreadyProcessed

	req := httptest.NewRequest(http.MethodPost, "/api/user/webhook", bytes.NewBufferString(`{}`))
	w := doRequest(srv, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already processed")
}

func TestErrorDetailsHiddenInProduction(t *testing.T) {
	srv, fakes := newTestServer(t, config.Config{Environment: "production"})
	fakes.users.err = context.DeadlineExceeded

	req := httptest.NewRequest(http.MethodGet, "/api/user/credits", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, map[string]string{"sub": "user_1"}))

	w := doRequest(srv, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "deadline")
}
