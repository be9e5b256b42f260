package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/gymdesk/internal/billingsession"
	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
	"github.com/smallbiznis/gymdesk/internal/observability"
	obslogger "github.com/smallbiznis/gymdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/gymdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/gymdesk/internal/observability/tracing"
	"github.com/smallbiznis/gymdesk/internal/providers/pdf"
	"github.com/smallbiznis/gymdesk/internal/ratelimit"
	"github.com/smallbiznis/gymdesk/internal/tax"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	tax.Module,
	pdf.Module,
	invoice.Module,
	billingsession.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	billing    *config.BillingConfigHolder
	taxSvc     taxdomain.Service
	invoiceSvc invoicedomain.Service
	sessions   *billingsession.Manager
	limiter    *ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Billing    *config.BillingConfigHolder
	TaxSvc     taxdomain.Service
	InvoiceSvc invoicedomain.Service
	Sessions   *billingsession.Manager
	Limiter    *ratelimit.Limiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		billing:    p.Billing,
		taxSvc:     p.TaxSvc,
		invoiceSvc: p.InvoiceSvc,
		sessions:   p.Sessions,
		limiter:    p.Limiter,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Tax Settings --------
	api.GET("/tax-settings", s.ListTaxSettings)
	api.POST("/tax-settings", s.CreateTaxSetting)
	api.GET("/tax-settings/:id", s.GetTaxSetting)
	api.PATCH("/tax-settings/:id", s.UpdateTaxSetting)
	api.POST("/tax-settings/:id/activate", s.ActivateTaxSetting)
	api.POST("/tax-settings/:id/deactivate", s.DeactivateTaxSetting)

	// -------- Tax Calculations --------
	api.POST("/tax-calculations", s.RateLimit(ratelimit.ScopeTaxQuote), s.QuoteTaxCalculation)

	// -------- Billing Sessions --------
	api.POST("/billing-sessions", s.RateLimit(ratelimit.ScopeSessionOpen), s.OpenBillingSession)
	api.GET("/billing-sessions/:session_id", s.GetBillingSession)
	api.POST("/billing-sessions/:session_id/toggle", s.ToggleBillingSessionTax)
	api.POST("/billing-sessions/:session_id/clear", s.ClearBillingSession)
	api.PUT("/billing-sessions/:session_id/selection", s.SetBillingSessionSelection)
	api.PUT("/billing-sessions/:session_id/base-amount", s.SetBillingSessionBaseAmount)
	api.DELETE("/billing-sessions/:session_id", s.CloseBillingSession)
	api.POST("/billing-sessions/:session_id/invoice", s.CreateInvoiceFromSession)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/void", s.VoidInvoice)
	api.GET("/invoices/:id/selection", s.GetInvoiceSelection)
	api.PUT("/invoices/:id/from-session/:session_id", s.UpdateInvoiceFromSession)
	api.GET("/invoices/:id/receipt.pdf", s.DownloadInvoiceReceipt)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
