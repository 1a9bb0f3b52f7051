package routes

import (
	"net/http"
	"time"

	"github.com/aliasrafbd/hostel-management-server/controllers"
	"github.com/aliasrafbd/hostel-management-server/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Level is the minimum caller a route admits.
type Level int

const (
	Public Level = iota
	Authenticated
	Admin
)

// Policy is the access rule of one route. Self, when set, additionally
// requires the email the route acts on to be the caller's own.
type Policy struct {
	Level Level
	Self  *middlewares.SelfSource
}

type Route struct {
	Method  string
	Path    string
	Policy  Policy
	Handler gin.HandlerFunc
}

var (
	public = Policy{Level: Public}
	authed = Policy{Level: Authenticated}
	admin  = Policy{Level: Admin}
)

func selfParam(key string) Policy {
	return Policy{Level: Authenticated, Self: &middlewares.SelfSource{From: middlewares.FromParam, Key: key}}
}

func selfBody(key string) Policy {
	return Policy{Level: Authenticated, Self: &middlewares.SelfSource{From: middlewares.FromBody, Key: key}}
}

func adminSelfQuery(key string) Policy {
	return Policy{Level: Admin, Self: &middlewares.SelfSource{From: middlewares.FromQuery, Key: key}}
}

// Handlers bundles every controller the router mounts.
type Handlers struct {
	Auth         *controllers.AuthController
	Meals        *controllers.MealController
	Upcoming     *controllers.UpcomingMealController
	Reviews      *controllers.ReviewController
	Requests     *controllers.RequestController
	Users        *controllers.UserController
	Payments     *controllers.PaymentController
	Stats        *controllers.StatsController
	Images       *controllers.ImageController
	Realtime     *controllers.RealtimeController
	Activity     *controllers.ActivityController
	Authorizer   *middlewares.Authorizer
	AllowOrigins []string
}

// Table lists every route with its policy.
func (h *Handlers) Table() []Route {
	return []Route{
		{http.MethodGet, "/", public, health},
		{http.MethodPost, "/jwt", public, h.Auth.IssueToken},
		{http.MethodPost, "/logout", public, h.Auth.Logout},

		// meals
		{http.MethodGet, "/meals", public, h.Meals.ListMeals},
		{http.MethodGet, "/meals/hostel", public, h.Meals.ListHostelMeals},
		{http.MethodGet, "/meals/search", public, h.Meals.SearchMeals},
		{http.MethodGet, "/mealssorted", public, h.Meals.SortedMeals},
		{http.MethodGet, "/meal/:id", public, h.Meals.GetMeal},
		{http.MethodGet, "/mealscount", public, h.Meals.CountMeals},
		{http.MethodGet, "/reviews", admin, h.Meals.ReviewPage},
		{http.MethodGet, "/allreviews", authed, h.Meals.AllReviews},
		{http.MethodPost, "/meals", admin, h.Meals.CreateMeal},
		{http.MethodPut, "/meals/:id", admin, h.Meals.UpdateMeal},
		{http.MethodDelete, "/mealssorted/:id", admin, h.Meals.DeleteMeal},
		{http.MethodGet, "/admin-data", adminSelfQuery("adminEmail"), h.Meals.AdminData},
		{http.MethodPost, "/meals/image", admin, h.Images.UploadMealImage},
		{http.MethodPut, "/meals/:id/like", selfBody("userEmail"), h.Meals.LikeMeal},

		// upcoming meals
		{http.MethodGet, "/upcomingmeals", authed, h.Upcoming.ListUpcoming},
		{http.MethodGet, "/upcomingmealsall", authed, h.Upcoming.ListAllUpcoming},
		{http.MethodGet, "/upcomingmeals/search", public, h.Upcoming.SearchUpcoming},
		{http.MethodGet, "/upcomingmealscount", authed, h.Upcoming.CountUpcoming},
		{http.MethodPost, "/upcomingmeals", admin, h.Upcoming.CreateUpcoming},
		{http.MethodPut, "/upcomingmeals/:id/like", selfBody("userEmail"), h.Upcoming.LikeUpcoming},
		{http.MethodPost, "/publish-meal/:id", admin, h.Upcoming.Publish},

		// reviews & rating
		{http.MethodPut, "/api/update-review/:id", selfBody("userEmail"), h.Reviews.AddReview},
		{http.MethodDelete, "/meals/:id/reviews", selfBody("userEmail"), h.Reviews.DeleteReview},
		{http.MethodPut, "/mealssorted/:id/reviews", admin, h.Reviews.ResetReviews},
		{http.MethodGet, "/reviews/:email", selfParam("email"), h.Reviews.ReviewsByUser},
		{http.MethodPatch, "/meals/:id/rating", authed, h.Reviews.RateMeal},

		// requests & serving
		{http.MethodPost, "/requestedmeals", selfBody("userEmail"), h.Requests.CreateRequest},
		{http.MethodGet, "/requestedmeals", admin, h.Requests.ListRequests},
		{http.MethodGet, "/requestedmeals/:email", selfParam("email"), h.Requests.RequestsByUser},
		{http.MethodDelete, "/requestedmeals/:id", authed, h.Requests.DeleteRequest},
		{http.MethodGet, "/servedmeals", admin, h.Requests.ServedMeals},
		{http.MethodPatch, "/servedmeals/:id", admin, h.Requests.UpdateStatus},
		{http.MethodPost, "/insert-served-meals", admin, h.Requests.InsertServed},
		{http.MethodGet, "/servemealscount", public, h.Requests.CountRequests},

		// users & payments
		{http.MethodPost, "/users", public, h.Users.Register},
		{http.MethodGet, "/users", admin, h.Users.ListUsers},
		{http.MethodGet, "/users/email/:email", selfParam("email"), h.Users.GetByEmail},
		{http.MethodDelete, "/users/:id", admin, h.Users.DeleteUser},
		{http.MethodPatch, "/users/admin/:id", admin, h.Users.MakeAdmin},
		{http.MethodGet, "/user/admin/:email", public, h.Users.IsAdmin},
		{http.MethodGet, "/users/premium/:email", public, h.Users.IsPremium},
		{http.MethodPatch, "/update-badge", selfBody("userEmail"), h.Users.UpdateBadge},
		{http.MethodPost, "/create-payment-intent", authed, h.Payments.CreatePaymentIntent},
		{http.MethodPost, "/package-payment-data", selfBody("userEmail"), h.Payments.RecordPayment},
		{http.MethodGet, "/payments/:email", selfParam("email"), h.Payments.PaymentsByUser},

		{http.MethodGet, "/overview-stats", public, h.Stats.Overview},
		{http.MethodGet, "/ws/meals", authed, h.Realtime.MealsWS},
		{http.MethodGet, "/activity/:email", selfParam("email"), h.Activity.Recent},
	}
}

func (h *Handlers) chain(r Route) []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if r.Policy.Level >= Authenticated || r.Policy.Self != nil {
		chain = append(chain, h.Authorizer.Authenticate())
	}
	if r.Policy.Level == Admin {
		chain = append(chain, h.Authorizer.RequireAdmin())
	}
	if r.Policy.Self != nil {
		chain = append(chain, h.Authorizer.RequireSelf(*r.Policy.Self))
	}
	return append(chain, r.Handler)
}

func SetupRouter(h *Handlers) *gin.Engine {
	corsCfg := cors.Config{
		AllowOrigins:     h.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(h.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(), cors.New(corsCfg), middlewares.ErrorHandler())

	for _, route := range h.Table() {
		r.Handle(route.Method, route.Path, h.chain(route)...)
	}
	return r
}

func health(c *gin.Context) {
	c.String(http.StatusOK, "Hostel management server is running")
}
