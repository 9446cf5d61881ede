package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tablebook/internal/domain/user"
	"tablebook/internal/handler/api"
	"tablebook/internal/handler/middleware"
	"tablebook/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth        *api.AuthHandler
	Reservation *api.ReservationHandler
	Table       *api.TableHandler
	Customer    *api.CustomerHandler
	Waitlist    *api.WaitlistHandler
	Analytics   *api.AnalyticsHandler
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	requestLogger *middleware.RequestLogger,
) {
	setupMiddleware(engine, cfg, requestLogger)
	setupRoutes(engine, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, requestLogger *middleware.RequestLogger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(requestLogger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodGet, Path: "/timeline", Handler: h.Reservation.Timeline},
				{Method: http.MethodPost, Path: "", Handler: h.Reservation.Create},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.Get},
				{Method: http.MethodPut, Path: "/:id", Handler: h.Reservation.Update},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Reservation.Delete},
				{Method: http.MethodPost, Path: "/:id/move", Handler: h.Reservation.Move},
				{Method: http.MethodPost, Path: "/:id/status", Handler: h.Reservation.ChangeStatus},
			})
		}

		tables := apiGroup.Group("/tables")
		tables.Use(authMiddleware.RequireAuth())
		{
			manager := authMiddleware.RequireRoleAtLeast(user.RoleManager)
			addRoutes(tables, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Table.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Table.Get},
				{Method: http.MethodPost, Path: "", Handler: h.Table.Create, Mw: []gin.HandlerFunc{manager}},
				{Method: http.MethodPut, Path: "/:id", Handler: h.Table.Update, Mw: []gin.HandlerFunc{manager}},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Table.Delete, Mw: []gin.HandlerFunc{manager}},
			})
		}

		customers := apiGroup.Group("/customers")
		customers.Use(authMiddleware.RequireAuth())
		{
			addRoutes(customers, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Customer.Search},
				{Method: http.MethodGet, Path: "/match", Handler: h.Customer.Match},
				{Method: http.MethodPost, Path: "", Handler: h.Customer.Create},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Customer.Get},
				{Method: http.MethodPut, Path: "/:id", Handler: h.Customer.Update},
				{Method: http.MethodGet, Path: "/:id/reservations", Handler: h.Customer.History},
				{Method: http.MethodPost, Path: "/:id/reservations/:reservation_id", Handler: h.Customer.LinkReservation},
			})
		}

		waitlist := apiGroup.Group("/waitlist")
		waitlist.Use(authMiddleware.RequireAuth())
		{
			addRoutes(waitlist, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Waitlist.Board},
				{Method: http.MethodPost, Path: "", Handler: h.Waitlist.Enqueue},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Waitlist.Get},
				{Method: http.MethodPut, Path: "/:id", Handler: h.Waitlist.Update},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Waitlist.Remove},
				{Method: http.MethodPost, Path: "/:id/status", Handler: h.Waitlist.ChangeStatus},
				{Method: http.MethodPost, Path: "/:id/seat", Handler: h.Waitlist.Seat},
			})
		}

		analytics := apiGroup.Group("/analytics")
		analytics.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleManager))
		{
			addRoutes(analytics, []route{
				{Method: http.MethodGet, Path: "/summary", Handler: h.Analytics.Summary},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/sweep", Handler: h.Analytics.RunSweep},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
