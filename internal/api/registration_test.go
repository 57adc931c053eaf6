package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medicamp/internal/domain"
	"medicamp/internal/middleware"
	"medicamp/internal/payment"
	"medicamp/internal/repository"
	"medicamp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store     *repository.MemoryStore
	processor *payment.MemoryProcessor
	svc       *service.RegistrationService
	rdb       *redis.Client
}

func newEnv() *testEnv {
	store := repository.NewMemoryStore()
	store.AddUser(domain.User{ID: 1, Email: "p@x.com", Name: "Pat", Role: domain.RoleParticipant})
	store.AddUser(domain.User{ID: 2, Email: "org@x.com", Name: "Org", Role: domain.RoleOrganizer})
	store.AddCamp(domain.Camp{ID: 1, Name: "Eye Camp", Location: "Dhaka", Fees: 50, OrganizerEmail: "org@x.com"})
	processor := payment.NewMemoryProcessor()
	return &testEnv{
		store:     store,
		processor: processor,
		svc:       service.NewRegistrationService(store, processor, "usd"),
		// Nothing listens here; cache reads miss and invalidations are no-ops,
		// which is exactly the degraded path the handlers tolerate.
		rdb: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}),
	}
}

// identityStub plays the JWT middleware's part for a fixed identity.
func identityStub(id service.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id.UserID)
		c.Set(middleware.CtxEmail, id.Email)
		c.Set(middleware.CtxRole, id.Role)
		c.Next()
	}
}

func (e *testEnv) router(id service.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", identityStub(id))
	g.POST("/registrations", CreateRegistrationHandler(e.svc, e.rdb))
	g.GET("/registrations/participant", ListParticipantRegistrationsHandler(e.svc, e.rdb))
	g.GET("/registrations/organizer", ListOrganizerRegistrationsHandler(e.svc))
	g.POST("/api/create-payment-intent", CreatePaymentIntentHandler(e.svc))
	g.POST("/api/confirm-payment", ConfirmPaymentHandler(e.svc, e.rdb))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registrationBody() map[string]any {
	return map[string]any{
		"campId":           1,
		"participantName":  "Pat",
		"phone":            "+8801000000",
		"age":              30,
		"gender":           "female",
		"emergencyContact": "+8801000001",
	}
}

func participantIdentity() service.Identity {
	return service.Identity{UserID: 1, Email: "p@x.com", Role: domain.RoleParticipant}
}

func TestCreateRegistrationHandler(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	w := doJSON(t, r, http.MethodPost, "/registrations", registrationBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		RegistrationID uint                `json:"registrationId"`
		Registration   domain.Registration `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.RegistrationID)
	assert.Equal(t, domain.PaymentStatusPending, resp.Registration.PaymentStatus)
}

func TestCreateRegistrationHandlerDuplicate(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	w := doJSON(t, r, http.MethodPost, "/registrations", registrationBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/registrations", registrationBody())
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestCreateRegistrationHandlerOrganizerForbidden(t *testing.T) {
	env := newEnv()
	r := env.router(service.Identity{UserID: 2, Email: "org@x.com", Role: domain.RoleOrganizer})

	w := doJSON(t, r, http.MethodPost, "/registrations", registrationBody())
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
}

func TestCreateRegistrationHandlerUnknownCamp(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	body := registrationBody()
	body["campId"] = 99
	w := doJSON(t, r, http.MethodPost, "/registrations", body)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestCreateRegistrationHandlerMissingFields(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	body := registrationBody()
	delete(body, "phone")
	w := doJSON(t, r, http.MethodPost, "/registrations", body)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestCreateRegistrationHandlerUnauthenticated(t *testing.T) {
	env := newEnv()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// No identity middleware on this route.
	r.POST("/registrations", CreateRegistrationHandler(env.svc, env.rdb))

	w := doJSON(t, r, http.MethodPost, "/registrations", registrationBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePaymentIntentHandler(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	w := doJSON(t, r, http.MethodPost, "/api/create-payment-intent", map[string]any{
		"campId":          1,
		"participantName": "Pat",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ClientSecret    string `json:"clientSecret"`
		PaymentIntentID string `json:"paymentIntentId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ClientSecret)
	assert.NotEmpty(t, resp.PaymentIntentID)
}

func TestCreatePaymentIntentHandlerUnknownCamp(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	w := doJSON(t, r, http.MethodPost, "/api/create-payment-intent", map[string]any{
		"campId":          99,
		"participantName": "Pat",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestConfirmPaymentHandler(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	intent, err := env.processor.CreateIntent(context.Background(), 5000, "usd", payment.Metadata{})
	require.NoError(t, err)
	require.NoError(t, env.processor.CompletePayment(intent.ID))

	body := registrationBody()
	body["paymentIntentId"] = intent.ID
	w := doJSON(t, r, http.MethodPost, "/api/confirm-payment", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		RegistrationID  uint                `json:"registrationId"`
		PaymentIntentID string              `json:"paymentIntentId"`
		Registration    domain.Registration `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, intent.ID, resp.PaymentIntentID)
	assert.Equal(t, domain.PaymentStatusPaid, resp.Registration.PaymentStatus)
	assert.Equal(t, 50.0, resp.Registration.AmountPaid)
}

func TestConfirmPaymentHandlerRejectsUnpaidIntent(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	// Intent never completed by the payer.
	intent, err := env.processor.CreateIntent(context.Background(), 5000, "usd", payment.Metadata{})
	require.NoError(t, err)

	body := registrationBody()
	body["paymentIntentId"] = intent.ID
	w := doJSON(t, r, http.MethodPost, "/api/confirm-payment", body)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// Nothing was written.
	regs, err := env.store.RegistrationsByParticipant(context.Background(), "p@x.com")
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestListParticipantRegistrationsHandler(t *testing.T) {
	env := newEnv()
	r := env.router(participantIdentity())

	w := doJSON(t, r, http.MethodPost, "/registrations", registrationBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/registrations/participant", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Registrations []domain.Registration `json:"registrations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Registrations, 1)
}

func TestListOrganizerRegistrationsHandler(t *testing.T) {
	env := newEnv()

	// A participant registers for the organizer's camp.
	w := doJSON(t, env.router(participantIdentity()), http.MethodPost, "/registrations", registrationBody())
	require.Equal(t, http.StatusCreated, w.Code)

	r := env.router(service.Identity{UserID: 2, Email: "org@x.com", Role: domain.RoleOrganizer})
	w = doJSON(t, r, http.MethodGet, "/registrations/organizer", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Registrations []domain.Registration `json:"registrations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Registrations, 1)
}
