package api

import (
	"log"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/limbo/zenjournal/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	mx               *chi.Mux
	userService      service.UserServiceI
	entriesService   service.EntriesServiceI
	analyticsService service.AnalyticsServiceI
	insightsService  service.InsightsServiceI
	insightsLimiter  service.LimiterI
	jwtService       JWTServiceI
	authThrottle     *ipThrottle
	trustedProxies   []netip.Prefix
}

type ServicesList struct {
	UserService      service.UserServiceI
	EntriesService   service.EntriesServiceI
	AnalyticsService service.AnalyticsServiceI
	InsightsService  service.InsightsServiceI
	// Optional, insights are not limited when nil
	InsightsLimiter service.LimiterI
	JwtService      JWTServiceI
	AllowedOrigins  []string
	// Peers allowed to set X-Forwarded-For, as addresses or CIDR prefixes
	TrustedProxies []string
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:               chi.NewMux(),
		userService:      servicesOptions.UserService,
		entriesService:   servicesOptions.EntriesService,
		analyticsService: servicesOptions.AnalyticsService,
		insightsService:  servicesOptions.InsightsService,
		insightsLimiter:  servicesOptions.InsightsLimiter,
		jwtService:       servicesOptions.JwtService,
		authThrottle:     newIPThrottle(authThrottleEvery, authThrottleBurst),
	}
	trusted, err := parseTrustedProxies(servicesOptions.TrustedProxies)
	if err != nil {
		log.Fatal("api server config error: " + err.Error())
	}
	s.trustedProxies = trusted
	s.routes(servicesOptions.AllowedOrigins)
	return s
}

func (s *Server) routes(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	s.mx.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)

	s.mx.Get("/health", s.Health)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.AuthThrottleMiddleware)
			r.Post("/auth/signup", s.Register)
			r.Post("/auth/login", s.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)

			r.Get("/auth/me", s.Me)
			r.Put("/auth/profile", s.UpdateProfile)
			r.Put("/auth/change-password", s.ChangePassword)
			r.Delete("/auth/account", s.DeleteAccount)
			r.Get("/auth/notification-settings", s.GetNotificationSettings)
			r.Put("/auth/notification-settings", s.UpdateNotificationSettings)
			r.Get("/auth/export-data", s.ExportData)

			r.Post("/journal", s.CreateEntry)
			r.Get("/journal", s.ListEntries)
			r.Get("/journal/recent", s.RecentEntries)
			r.Put("/journal/{id}", s.UpdateEntry)
			r.Delete("/journal/{id}", s.DeleteEntry)

			r.Get("/analytics/overview", s.Overview)
			r.Get("/analytics/trends", s.Trends)
			r.Get("/analytics/activity", s.Activity)

			r.Get("/mood/calendar", s.MoodCalendar)
			r.Get("/mood/stats", s.MoodStats)
			r.With(s.InsightsLimitMiddleware).Get("/mood/insights", s.MoodInsights)
			r.Post("/mood/log", s.LogMood)
		})
	})
}

// Handler returns the router wrapped with request tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.mx, "zenjournal-api")
}
