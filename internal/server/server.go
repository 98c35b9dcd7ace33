package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pixelift/internal/config"
	"github.com/smallbiznis/pixelift/internal/gateway/razorpay"
	"github.com/smallbiznis/pixelift/internal/identity"
	identitydomain "github.com/smallbiznis/pixelift/internal/identity/domain"
	"github.com/smallbiznis/pixelift/internal/ratelimit"
	"github.com/smallbiznis/pixelift/internal/removal"
	removaldomain "github.com/smallbiznis/pixelift/internal/removal/domain"
	"github.com/smallbiznis/pixelift/internal/transaction"
	txndomain "github.com/smallbiznis/pixelift/internal/transaction/domain"
	"github.com/smallbiznis/pixelift/internal/user"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(registerGin),
	user.Module,
	identity.Module,
	transaction.Module,
	razorpay.Module,
	removal.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func registerGin(cfg config.Config, log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	userSvc        userdomain.Service
	identitySvc    identitydomain.Service
	txnSvc         txndomain.Service
	removalSvc     removaldomain.Service
	removalLimiter *ratelimit.RemovalLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	UserSvc        userdomain.Service
	IdentitySvc    identitydomain.Service
	TxnSvc         txndomain.Service
	RemovalSvc     removaldomain.Service
	RemovalLimiter *ratelimit.RemovalLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		userSvc:        p.UserSvc,
		identitySvc:    p.IdentitySvc,
		txnSvc:         p.TxnSvc,
		removalSvc:     p.RemovalSvc,
		removalLimiter: p.RemovalLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Image --------
	api.POST("/image/remove-bg", s.UserAuthRequired(), s.RemovalRateLimit(), s.RemoveBackground)

	// -------- User --------
	api.GET("/user/credits", s.UserAuthRequired(), s.GetCredits)
	api.GET("/user/credit", s.UserAuthRequired(), s.GetCredits)
	api.GET("/user/transactions", s.UserAuthRequired(), s.ListTransactions)
	api.POST("/user/payment", s.UserAuthRequired(), s.CreatePaymentOrder)
	api.POST("/user/verify-payment", s.UserAuthRequired(), s.VerifyPayment)

	// -------- Identity Webhooks --------
	api.POST("/user/webhook", s.HandleIdentityWebhook)
	api.POST("/user/webhooks", s.HandleIdentityWebhook)
}
