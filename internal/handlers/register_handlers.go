package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_ledger/cmd/docs"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/SscSPs/banking_ledger/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter builds the gin engine with the global middleware and every route.
func NewRouter(cfg *config.Config, services *portssvc.ServiceContainer, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	r.Use(
		otelgin.Middleware(cfg.ServiceName),
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(corsConfig(cfg)),
	)

	if err := RegisterRoutes(r, cfg, services); err != nil {
		return nil, err
	}
	return r, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", middleware.TenantHeader, middleware.RequestIDHeader)
	c.ExposeHeaders = []string{middleware.RequestIDHeader}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if err := setupLedgerRoutes(r, cfg, services); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupLedgerRoutes configures the /ledger group. Bearer auth applies only when a secret is configured.
func setupLedgerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	var chain []gin.HandlerFunc
	if cfg.RateLimit != "" {
		lim, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return err
		}
		chain = append(chain, middleware.RateLimit(lim))
	}
	if cfg.JWTSecret != "" {
		chain = append(chain, middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	}

	ledger := r.Group("/ledger", chain...)
	registerLedgerRoutes(ledger, services)
	registerAccountRoutes(ledger, services.Accounts)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
