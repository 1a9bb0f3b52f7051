package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aliasrafbd/hostel-management-server/controllers"
	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/models"
	"github.com/aliasrafbd/hostel-management-server/services"
	"github.com/aliasrafbd/hostel-management-server/testutil"
	"github.com/aliasrafbd/hostel-management-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	args := m.Called(ctx, amount, currency)
	return args.String(0), args.Error(1)
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	tokens   *utils.TokenIssuer
	provider *mockProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	provider := &mockProvider{}

	hub := services.NewRealtimeHub()
	activity := services.NewActivityLogService(db)
	bus := services.NewEventBus(hub, activity)

	users := services.NewUserService(db, nil)
	meals := services.NewMealService(db, bus, true)
	reactions := services.NewReactionService(db, bus)
	reviews := services.NewReviewService(db, bus)
	requests := services.NewRequestService(db, bus, nil)
	payments := services.NewPaymentService(db, provider, "usd", bus)

	h := &Handlers{
		Auth:       controllers.NewAuthController(tokens, time.Hour, false),
		Meals:      controllers.NewMealController(meals, reactions, 2),
		Upcoming:   controllers.NewUpcomingMealController(meals, reactions),
		Reviews:    controllers.NewReviewController(reviews),
		Requests:   controllers.NewRequestController(requests, users),
		Users:      controllers.NewUserController(users),
		Payments:   controllers.NewPaymentController(payments),
		Stats:      controllers.NewStatsController(services.NewStatsService(db, nil)),
		Images:     controllers.NewImageController(services.NewImageService(nil, nil)),
		Realtime:   controllers.NewRealtimeController(hub, nil),
		Activity:   controllers.NewActivityController(activity),
		Authorizer: middlewares.NewAuthorizer(tokens, users),
	}

	require.NoError(t, db.Create(&models.User{Email: "admin@x.test", Role: models.RoleAdmin}).Error)
	require.NoError(t, db.Create(&models.User{Email: "student@x.test"}).Error)

	return &testServer{router: SetupRouter(h), db: db, tokens: tokens, provider: provider}
}

// do sends a request as email; an empty email sends no cookie.
func (s *testServer) do(t *testing.T, method, path, email string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		token, err := s.tokens.Issue(email, "")
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middlewares.TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) seedMeal(t *testing.T, title string, ingredients ...string) uint {
	t.Helper()
	m := models.Meal{MealContent: models.MealContent{Title: title, Category: "Lunch", Ingredients: ingredients, Price: 3}}
	require.NoError(t, s.db.Create(&m).Error)
	return m.ID
}

func TestRoutes_Health(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middlewares.RequestIDHeader))
}

func TestRoutes_TokenCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/jwt", "", map[string]string{"email": "student@x.test"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["status"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middlewares.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	claims, err := s.tokens.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "student@x.test", claims.Email)

	w = s.do(t, http.MethodPost, "/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
}

func TestRoutes_AuthFailures(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/upcomingmeals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthenticated", body["error"])

	req := httptest.NewRequest(http.MethodGet, "/upcomingmeals", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.TokenCookie, Value: "garbage"})
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "InvalidToken", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/users", "student@x.test", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", decode(t, w)["error"])

	// a token for an email with no user record is not an admin either
	w = s.do(t, http.MethodGet, "/users", "stranger@x.test", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/users", "admin@x.test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_SelfOnly(t *testing.T) {
	s := newTestServer(t)
	id := s.seedMeal(t, "Dal")

	w := s.do(t, http.MethodGet, "/requestedmeals/other@x.test", "student@x.test", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/meals/1/like", "student@x.test", map[string]string{"userEmail": "other@x.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/requestedmeals/student@x.test", "student@x.test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	// the body survives the self check and reaches the handler
	w = s.do(t, http.MethodPut, "/meals/1/like", "student@x.test", map[string]string{"userEmail": "student@x.test"})
	require.Equal(t, http.StatusOK, w.Code)
	reaction := decode(t, w)["reaction"].(map[string]any)
	assert.EqualValues(t, 1, reaction["count"])
	assert.Equal(t, []any{"student@x.test"}, reaction["userEmails"])

	w = s.do(t, http.MethodPut, "/meals/1/like", "student@x.test", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Conflict", body["error"])
	assert.Equal(t, "User has already liked this meal", body["message"])

	w = s.do(t, http.MethodGet, "/meal/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, id, decode(t, w)["_id"])
}

func TestRoutes_ListMealsSearchAndPaging(t *testing.T) {
	s := newTestServer(t)
	s.seedMeal(t, "Fried Rice", "rice", "egg")
	s.seedMeal(t, "Beef Curry", "beef", "Basmati Rice")
	s.seedMeal(t, "Rice Pudding", "milk")
	s.seedMeal(t, "Pancakes", "flour")

	w := s.do(t, http.MethodGet, "/meals?search=rice&page=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 2)
	assert.Equal(t, map[string]any{"total": 3.0, "page": 1.0, "limit": 2.0, "totalPages": 2.0}, body["pagination"])

	w = s.do(t, http.MethodGet, "/meals?search=rice&page=9", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])

	w = s.do(t, http.MethodGet, "/mealscount", "", nil)
	assert.JSONEq(t, `{"count":4}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/meal/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/meal/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", decode(t, w)["error"])
}

func TestRoutes_ListMealsIgnoresNaNPriceBounds(t *testing.T) {
	s := newTestServer(t)
	s.seedMeal(t, "Fried Rice", "rice")

	for _, q := range []string{"minPrice=NaN", "maxPrice=NaN", "minPrice=nan&maxPrice=NaN"} {
		w := s.do(t, http.MethodGet, "/meals?"+q, "", nil)
		require.Equal(t, http.StatusOK, w.Code, q)
		pagination := decode(t, w)["pagination"].(map[string]any)
		assert.Equal(t, 1.0, pagination["total"], q)
	}
}

func TestRoutes_RegisterUser(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/users", "", map[string]string{"name": "New", "email": "new@x.test"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["insertedId"])

	w = s.do(t, http.MethodPost, "/users", "", map[string]string{"name": "New", "email": "new@x.test"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"User already Exist","insertedId":null}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/users", "", map[string]string{"name": "Bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationError", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/user/admin/admin@x.test", "", nil)
	assert.JSONEq(t, `{"admin":true}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/users/premium/new@x.test", "", nil)
	assert.JSONEq(t, `{"premiumMember":false}`, w.Body.String())
}

func TestRoutes_PaymentIntent(t *testing.T) {
	s := newTestServer(t)
	s.provider.On("CreatePaymentIntent", mock.Anything, int64(1999), "usd").Return("pi_secret", nil).Once()

	w := s.do(t, http.MethodPost, "/create-payment-intent", "student@x.test", map[string]any{"amount": 1999})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"amount":1999,"clientSecret":"pi_secret"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/create-payment-intent", "student@x.test", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Amount is required in the request body.", decode(t, w)["message"])

	s.provider.AssertExpectations(t)
}

func TestRoutes_RequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	mealID := s.seedMeal(t, "Khichuri")

	w := s.do(t, http.MethodPost, "/requestedmeals", "student@x.test", map[string]any{"mealId": mealID, "title": "Khichuri"})
	require.Equal(t, http.StatusOK, w.Code)
	reqID := decode(t, w)["insertedId"]

	w = s.do(t, http.MethodPost, "/requestedmeals", "student@x.test", map[string]any{"mealId": mealID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You have already requested this meal.", decode(t, w)["message"])

	path := "/servedmeals/" + jsonNumber(reqID)
	w = s.do(t, http.MethodPatch, path, "admin@x.test", map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, path, "admin@x.test", map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/activity/student@x.test", "student@x.test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.NotEmpty(t, feed)
	assert.Equal(t, services.EventRequestStatusChanged, feed[0]["kind"])

	// someone else cannot withdraw the request
	require.NoError(t, s.db.Create(&models.User{Email: "other@x.test"}).Error)
	w = s.do(t, http.MethodDelete, "/requestedmeals/"+jsonNumber(reqID), "other@x.test", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/requestedmeals/"+jsonNumber(reqID), "student@x.test", nil)
	assert.JSONEq(t, `{"deletedCount":1}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/requestedmeals/"+jsonNumber(reqID), "student@x.test", nil)
	assert.JSONEq(t, `{"deletedCount":0}`, w.Body.String())
}

func TestRoutes_RequestKeepsReviewCount(t *testing.T) {
	s := newTestServer(t)
	mealID := s.seedMeal(t, "Khichuri")

	w := s.do(t, http.MethodPost, "/requestedmeals", "student@x.test",
		map[string]any{"mealId": mealID, "title": "Khichuri", "likes": 4, "reviewCount": 6})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/requestedmeals/student@x.test", "student@x.test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reqs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reqs))
	require.Len(t, reqs, 1)
	assert.Equal(t, 6.0, reqs[0]["reviewCount"])
	assert.Equal(t, 4.0, reqs[0]["likes"])
	assert.NotContains(t, reqs[0], "reviews_count")
}

func TestRoutes_ImageUploadUnconfigured(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/meals/image", "admin@x.test", map[string]string{"image_base64": "data:image/png;base64,AA=="})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "InternalError", decode(t, w)["error"])
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
