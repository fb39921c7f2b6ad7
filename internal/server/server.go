package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taxops/fbrgate/internal/auth"
	authdomain "github.com/taxops/fbrgate/internal/auth/domain"
	"github.com/taxops/fbrgate/internal/authorization"
	"github.com/taxops/fbrgate/internal/buyer"
	buyerdomain "github.com/taxops/fbrgate/internal/buyer/domain"
	"github.com/taxops/fbrgate/internal/config"
	"github.com/taxops/fbrgate/internal/gateway"
	"github.com/taxops/fbrgate/internal/invoice"
	invoicedomain "github.com/taxops/fbrgate/internal/invoice/domain"
	"github.com/taxops/fbrgate/internal/observability"
	obslogger "github.com/taxops/fbrgate/internal/observability/logger"
	obsmetrics "github.com/taxops/fbrgate/internal/observability/metrics"
	obstracing "github.com/taxops/fbrgate/internal/observability/tracing"
	"github.com/taxops/fbrgate/internal/product"
	productdomain "github.com/taxops/fbrgate/internal/product/domain"
	"github.com/taxops/fbrgate/internal/providers/pdf"
	"github.com/taxops/fbrgate/internal/ratetable"
	ratetabledomain "github.com/taxops/fbrgate/internal/ratetable/domain"
	"github.com/taxops/fbrgate/internal/tenant"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	gateway.Module,
	tenant.Module,
	buyer.Module,
	product.Module,
	ratetable.Module,
	invoice.Module,
	pdf.Module,
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
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	authsvc      authdomain.Service
	authzSvc     authorization.Service
	tenantSvc    tenantdomain.Service
	buyerSvc     buyerdomain.Service
	productSvc   productdomain.Service
	rateTableSvc ratetabledomain.Service
	invoiceSvc   invoicedomain.Service
	pdfProvider  pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	Authsvc      authdomain.Service
	AuthzSvc     authorization.Service
	TenantSvc    tenantdomain.Service
	BuyerSvc     buyerdomain.Service
	ProductSvc   productdomain.Service
	RateTableSvc ratetabledomain.Service
	InvoiceSvc   invoicedomain.Service
	PDFProvider  pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		authsvc:      p.Authsvc,
		authzSvc:     p.AuthzSvc,
		tenantSvc:    p.TenantSvc,
		buyerSvc:     p.BuyerSvc,
		productSvc:   p.ProductSvc,
		rateTableSvc: p.RateTableSvc,
		invoiceSvc:   p.InvoiceSvc,
		pdfProvider:  p.PDFProvider,
	}
	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/v1/auth")
	auth.POST("/login", s.Login)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")
	api.Use(s.AuthRequired(), s.TenantContext())

	api.GET("/me", s.CurrentUser)
	api.POST("/users", s.requireAuthz(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	api.POST("/users/:id/password", s.ChangePassword)

	api.GET("/tenant", s.requireAuthz(authorization.ObjectTenant, authorization.ActionView), s.GetTenant)
	api.PUT("/tenant/gateway", s.requireAuthz(authorization.ObjectTenant, authorization.ActionTenantManageGateway), s.UpdateTenantGateway)

	api.GET("/provinces", s.ListProvinces)
	api.GET("/provinces/resolve", s.ResolveProvince)

	api.GET("/buyers", s.requireAuthz(authorization.ObjectBuyer, authorization.ActionView), s.ListBuyers)
	api.POST("/buyers", s.requireAuthz(authorization.ObjectBuyer, authorization.ActionCreate), s.CreateBuyer)
	api.GET("/buyers/:id", s.requireAuthz(authorization.ObjectBuyer, authorization.ActionView), s.GetBuyerByID)
	api.PUT("/buyers/:id", s.requireAuthz(authorization.ObjectBuyer, authorization.ActionUpdate), s.UpdateBuyer)
	api.DELETE("/buyers/:id", s.requireAuthz(authorization.ObjectBuyer, authorization.ActionDelete), s.DeleteBuyer)
	api.POST("/buyers/bulk", s.requireAuthz(authorization.ObjectBuyer, authorization.ActionBuyerUpload), s.BulkUploadBuyers)
	api.POST("/buyers/check", s.requireAuthz(authorization.ObjectBuyer, authorization.ActionView), s.CheckExistingBuyers)

	api.GET("/products", s.requireAuthz(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	api.POST("/products", s.requireAuthz(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	api.GET("/products/:id", s.requireAuthz(authorization.ObjectProduct, authorization.ActionView), s.GetProductByID)
	api.PUT("/products/:id", s.requireAuthz(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)
	api.DELETE("/products/:id", s.requireAuthz(authorization.ObjectProduct, authorization.ActionDelete), s.DeleteProduct)

	api.GET("/ratetable/transaction-types", s.requireAuthz(authorization.ObjectRateTable, authorization.ActionView), s.ListTransactionTypes)
	api.GET("/ratetable/rates", s.requireAuthz(authorization.ObjectRateTable, authorization.ActionView), s.ListRates)
	api.GET("/ratetable/schedules", s.requireAuthz(authorization.ObjectRateTable, authorization.ActionView), s.ListSROSchedules)
	api.GET("/ratetable/items", s.requireAuthz(authorization.ObjectRateTable, authorization.ActionView), s.ListSROItems)

	api.GET("/invoices", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	api.POST("/invoices", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionCreate), s.SaveInvoiceDraft)
	api.GET("/invoices/:id", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceByID)
	api.PUT("/invoices/:id", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionUpdate), s.UpdateInvoiceDraft)
	api.DELETE("/invoices/:id", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionDelete), s.DeleteInvoice)
	api.POST("/invoices/derive", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionUpdate), s.DeriveInvoiceItem)
	api.POST("/invoices/:id/validate", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionInvoiceValidate), s.ValidateInvoice)
	api.POST("/invoices/:id/submit", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionInvoiceSubmit), s.SubmitInvoice)
	api.GET("/invoices/:id/pdf", s.requireAuthz(authorization.ObjectInvoice, authorization.ActionView), s.RenderInvoicePDF)
}
