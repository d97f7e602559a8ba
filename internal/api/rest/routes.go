package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clublaunch/payments-service/internal/api/rest/handlers"
	"github.com/clublaunch/payments-service/internal/api/rest/middleware"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// Handlers обработчики, подключаемые к роутеру
type Handlers struct {
	Connect  *handlers.ConnectHandler
	Checkout *handlers.CheckoutHandler
	Webhook  *handlers.WebhookHandler
	Club     *handlers.ClubHandler
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, h Handlers) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Stripe Connect и checkout
	stripeGroup := r.Group("/stripe")
	{
		connect := stripeGroup.Group("/connect")
		{
			connect.POST("/express/accounts", h.Connect.CreateExpressAccount)
			connect.POST("/express/accounts/:account_id/onboard", h.Connect.CreateOnboardingLink)
			connect.GET("/oauth/start", h.Connect.StartOAuth)
			connect.GET("/oauth/callback", h.Connect.CompleteOAuth)
		}

		checkout := stripeGroup.Group("/checkout")
		{
			checkout.POST("/one-time", h.Checkout.CreateOneTimeSession)
			checkout.POST("/subscription", h.Checkout.CreateSubscriptionSession)
			checkout.POST("/service", h.Checkout.CreateServiceBookingSession)
		}
	}

	// API для клубов
	v1 := r.Group("/api/v1")
	{
		clubs := v1.Group("/clubs")
		{
			clubs.POST("", h.Club.CreateClub)
			clubs.GET("", h.Club.ListClubs)
			clubs.GET("/slug/:slug", h.Club.GetClubBySlug)
			clubs.GET("/:id", h.Club.GetClub)
			clubs.PATCH("/:id", h.Club.UpdateClub)
			clubs.DELETE("/:id", h.Club.DeleteClub)

			clubs.POST("/:id/members", h.Club.AddMember)
			clubs.GET("/:id/members", h.Club.ListMembers)

			clubs.POST("/:id/services", h.Club.CreateBookingService)
			clubs.GET("/:id/services", h.Club.ListBookingServices)

			clubs.GET("/:id/payments", h.Club.ListPayments)
		}
	}

	// Вебхуки на корневом уровне роутера: у платформы и Connect разные секреты
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.Webhook.HandlePlatformWebhook)
		webhooks.POST("/stripe/connect", h.Webhook.HandleConnectWebhook)
	}

	return r
}
