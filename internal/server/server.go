package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/finbook/internal/auth"
	authdomain "github.com/smallbiznis/finbook/internal/auth/domain"
	"github.com/smallbiznis/finbook/internal/auth/session"
	"github.com/smallbiznis/finbook/internal/backup"
	"github.com/smallbiznis/finbook/internal/config"
	"github.com/smallbiznis/finbook/internal/document"
	documentdomain "github.com/smallbiznis/finbook/internal/document/domain"
	"github.com/smallbiznis/finbook/internal/expense"
	expensedomain "github.com/smallbiznis/finbook/internal/expense/domain"
	"github.com/smallbiznis/finbook/internal/item"
	itemdomain "github.com/smallbiznis/finbook/internal/item/domain"
	"github.com/smallbiznis/finbook/internal/party"
	partydomain "github.com/smallbiznis/finbook/internal/party/domain"
	"github.com/smallbiznis/finbook/internal/payment"
	paymentdomain "github.com/smallbiznis/finbook/internal/payment/domain"
	"github.com/smallbiznis/finbook/internal/report"
	reportdomain "github.com/smallbiznis/finbook/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	MetricsModule,
	fx.Provide(registerGin),
	auth.Module,
	item.Module,
	party.Module,
	document.Module,
	expense.Module,
	payment.Module,
	report.Module,
	backup.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
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
	engine      *gin.Engine
	cfg         config.Config
	settings    *config.SettingsHolder
	sessions    *session.Manager
	genID       *snowflake.Node
	authSvc     authdomain.Service
	itemSvc     itemdomain.Service
	partySvc    partydomain.Service
	documentSvc documentdomain.Service
	expenseSvc  expensedomain.Service
	paymentSvc  paymentdomain.Service
	reportSvc   reportdomain.Service
	backupSvc   *backup.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Settings    *config.SettingsHolder
	Sessions    *session.Manager
	GenID       *snowflake.Node
	AuthSvc     authdomain.Service
	ItemSvc     itemdomain.Service
	PartySvc    partydomain.Service
	DocumentSvc documentdomain.Service
	ExpenseSvc  expensedomain.Service
	PaymentSvc  paymentdomain.Service
	ReportSvc   reportdomain.Service
	BackupSvc   *backup.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		settings:    p.Settings,
		sessions:    p.Sessions,
		genID:       p.GenID,
		authSvc:     p.AuthSvc,
		itemSvc:     p.ItemSvc,
		partySvc:    p.PartySvc,
		documentSvc: p.DocumentSvc,
		expenseSvc:  p.ExpenseSvc,
		paymentSvc:  p.PaymentSvc,
		reportSvc:   p.ReportSvc,
		backupSvc:   p.BackupSvc,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) registerAuthRoutes() {
	s.engine.POST("/api/login", s.login)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())
	api.Use(s.MaintenanceGuard())

	api.POST("/logout", s.logout)
	api.GET("/me", s.currentUser)

	api.GET("/users", s.listUsers)
	api.POST("/users", s.createUser)
	api.GET("/users/:id", s.getUser)
	api.PUT("/users/:id", s.updateUser)
	api.DELETE("/users/:id", s.deleteUser)
	api.POST("/users/:id/reset-password", s.resetPassword)

	api.GET("/items", s.listItems)
	api.POST("/items", s.createItem)
	api.GET("/items/:id", s.getItem)
	api.PUT("/items/:id", s.updateItem)
	api.DELETE("/items/:id", s.deleteItem)

	s.registerPartyRoutes(api, "customers", partydomain.KindCustomer)
	s.registerPartyRoutes(api, "vendors", partydomain.KindVendor)

	s.registerDocumentRoutes(api, "invoices", documentdomain.KindInvoice)
	s.registerDocumentRoutes(api, "purchases", documentdomain.KindPurchase)

	api.GET("/expenses", s.listExpenses)
	api.POST("/expenses", s.createExpense)
	api.GET("/expenses/:id", s.getExpense)
	api.PUT("/expenses/:id", s.updateExpense)
	api.DELETE("/expenses/:id", s.deleteExpense)

	api.GET("/payment-methods", s.listPaymentMethods)
	api.POST("/payment-methods", s.createPaymentMethod)
	api.GET("/payment-methods/:id", s.getPaymentMethod)
	api.PUT("/payment-methods/:id", s.updatePaymentMethod)
	api.DELETE("/payment-methods/:id", s.deletePaymentMethod)

	api.GET("/currencies", s.listCurrencies)
	api.POST("/currencies", s.createCurrency)
	api.DELETE("/currencies/:id", s.deleteCurrency)

	api.GET("/transactions", s.listTransactions)
	api.POST("/transactions", s.createTransaction)
	api.GET("/transactions/:id", s.getTransaction)
	api.DELETE("/transactions/:id", s.deleteTransaction)

	api.GET("/dashboard", s.dashboard)
	api.GET("/report", s.fullReport)

	api.GET("/backup", s.downloadBackup)
	api.POST("/restore", s.restoreBackup)
}
