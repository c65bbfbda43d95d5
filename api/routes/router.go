package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mangohub/mangostore-backend/api/controllers"
	"github.com/mangohub/mangostore-backend/api/middleware"
	"github.com/mangohub/mangostore-backend/internal/analytics"
	authsvc "github.com/mangohub/mangostore-backend/internal/auth"
	cartsvc "github.com/mangohub/mangostore-backend/internal/cart"
	"github.com/mangohub/mangostore-backend/internal/catalog"
	checkoutsvc "github.com/mangohub/mangostore-backend/internal/checkout"
	ordersvc "github.com/mangohub/mangostore-backend/internal/orders"
	paymentsvc "github.com/mangohub/mangostore-backend/internal/payments"
	recsvc "github.com/mangohub/mangostore-backend/internal/recommendations"
	reviewsvc "github.com/mangohub/mangostore-backend/internal/reviews"
	"github.com/mangohub/mangostore-backend/pkg/config"
	"github.com/mangohub/mangostore-backend/pkg/enums"
	"github.com/mangohub/mangostore-backend/pkg/logger"
	"github.com/mangohub/mangostore-backend/pkg/metrics"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth            authsvc.Service
	Catalog         catalog.Service
	Cart            cartsvc.Service
	GuestCart       controllers.GuestCartStore
	Checkout        checkoutsvc.Service
	Orders          ordersvc.Service
	Reviews         reviewsvc.Service
	Recommendations recsvc.Service
	Analytics       analytics.Service
	Payments        paymentsvc.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, registry *prometheus.Registry, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(metrics.NewHTTPMetrics(registry)),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	requireAuth := middleware.Auth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(logg, enums.UserRoleAdmin)

	r.Get("/health", controllers.Health())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(svcs.Auth, logg))
		r.Post("/login", controllers.Login(svcs.Auth, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
		r.Get("/trending", controllers.TrendingProducts(svcs.Recommendations, logg))
		r.Get("/{productID}", controllers.GetProduct(svcs.Catalog, logg))
		r.Get("/{productID}/reviews", controllers.ListProductReviews(svcs.Reviews, logg))
		r.Get("/{productID}/related", controllers.RelatedProducts(svcs.Recommendations, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", controllers.CreateProduct(svcs.Catalog, logg))
			r.Put("/{productID}", controllers.UpdateProduct(svcs.Catalog, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(svcs.Catalog, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.GetCart(svcs.Cart, logg))
		r.Post("/items", controllers.AddCartItem(svcs.Cart, logg))
		r.Delete("/items/{productID}", controllers.RemoveCartItem(svcs.Cart, logg))
		r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
		r.Put("/sync", controllers.SyncCart(svcs.Cart, logg))
	})

	r.Route("/api/v1/guest-cart", func(r chi.Router) {
		r.Get("/", controllers.GetGuestCart(svcs.GuestCart, logg))
		r.Post("/actions", controllers.ApplyGuestCartAction(svcs.GuestCart, svcs.Catalog, logg))
		r.Delete("/", controllers.DropGuestCart(svcs.GuestCart, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/start", controllers.StartCheckout(svcs.Checkout, logg))
		r.Get("/", controllers.GetCheckout(svcs.Checkout, logg))
		r.Post("/next", controllers.CheckoutNext(svcs.Checkout, logg))
		r.Post("/back", controllers.CheckoutBack(svcs.Checkout, logg))
		r.Get("/review", controllers.CheckoutReview(svcs.Checkout, logg))
		r.Post("/submit", controllers.SubmitCheckout(svcs.Checkout, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
		r.Get("/mine", controllers.ListMyOrders(svcs.Orders, logg))
		r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
		r.Post("/{orderID}/cancel", controllers.CancelOrder(svcs.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", controllers.ListAllOrders(svcs.Orders, logg))
			r.Post("/{orderID}/pay", controllers.PayOrder(svcs.Orders, logg))
			r.Post("/{orderID}/deliver", controllers.DeliverOrder(svcs.Orders, logg))
			r.Put("/{orderID}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
		})
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.CreateReview(svcs.Reviews, logg))
		r.Get("/mine", controllers.ListMyReviews(svcs.Reviews, logg))
		r.Put("/{reviewID}", controllers.UpdateReview(svcs.Reviews, logg))
		r.Delete("/{reviewID}", controllers.DeleteReview(svcs.Reviews, logg))
	})

	r.Route("/api/v1/search-history", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.TrackSearch(svcs.Recommendations, logg))
		r.Get("/", controllers.SearchHistory(svcs.Recommendations, logg))
		r.Delete("/", controllers.ClearSearchHistory(svcs.Recommendations, logg))
	})

	r.With(requireAuth).
		Get("/api/v1/recommendations", controllers.PersonalizedRecommendations(svcs.Recommendations, logg))

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Get("/methods", controllers.ListPaymentMethods(svcs.Payments, logg))
		r.With(requireAuth, requireAdmin).
			Post("/cod/{orderID}/confirm", controllers.ConfirmCODPayment(svcs.Payments, logg))
	})

	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Get("/dashboard", controllers.Dashboard(svcs.Analytics, logg))
		r.Get("/sales-report", controllers.SalesReport(svcs.Analytics, logg))
		r.Get("/product-performance", controllers.ProductPerformance(svcs.Analytics, logg))
		r.Get("/customer-insights", controllers.CustomerInsights(svcs.Analytics, logg))
		r.Get("/inventory", controllers.InventoryStatus(svcs.Analytics, logg))
	})

	return r
}
