package handler

import (
	"net/http"

	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/handler/api"
	"mikvah-scheduler/internal/handler/middleware"
	"mikvah-scheduler/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type RouterParams struct {
	fx.In

	Engine             *gin.Engine
	Config             config.Config
	AppointmentHandler *api.AppointmentHandler
	AdminHandler       *api.AdminHandler
	AuthMiddleware     *middleware.AuthMiddleware
	Gatherer           prometheus.Gatherer
}

func NewRouter(p RouterParams) {
	setupMiddleware(p.Engine, p.Config)
	setupRoutes(p)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(p RouterParams) {
	engine := p.Engine
	engine.GET("/health", healthCheck)

	if p.Config.Metrics.Enabled {
		engine.GET(p.Config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := p.AuthMiddleware
	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/hours", Handler: p.AppointmentHandler.WeekHours},
			{Method: http.MethodGet, Path: "/appointments/available", Handler: p.AppointmentHandler.Available},
		})

		appointments := apiGroup.Group("/appointments")
		appointments.Use(auth.RequireAuth())
		{
			addRoutes(appointments, []route{
				{Method: http.MethodPost, Path: "", Handler: p.AppointmentHandler.Reserve},
				{Method: http.MethodDelete, Path: "/:id", Handler: p.AppointmentHandler.Cancel},
			})
		}

		attendant := apiGroup.Group("/attendant")
		attendant.Use(auth.RequireAuth())
		{
			addRoutes(attendant, []route{
				{
					Method:  http.MethodGet,
					Path:    "/daily-list",
					Handler: p.AdminHandler.AttendantList,
					Mw:      []gin.HandlerFunc{auth.RequireRoleAtLeast(user.RoleOperator)},
				},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(auth.RequireAuth(), auth.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/daily-list", Handler: p.AdminHandler.AdminList},
				{Method: http.MethodPatch, Path: "/appointments/:id", Handler: p.AdminHandler.Edit},
				{Method: http.MethodGet, Path: "/hours/preview", Handler: p.AdminHandler.PreviewWeek},
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
