package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"centavo/internal/auth"
	"centavo/internal/budget"
	"centavo/internal/category"
	"centavo/internal/config"
	"centavo/internal/notify"
	"centavo/internal/team"
	"centavo/internal/transaction"
	"centavo/internal/user"
	"centavo/internal/wallet"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	notify *notify.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifyService *notify.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	categoryRepo := category.NewRepository(db)
	budgetRepo := budget.NewRepository(db)
	notifyRepo := notify.NewRepository(db)

	alertService := budget.NewAlertService(budgetRepo, notifyService)
	transactionService := transaction.NewService(transaction.NewRepository(db), categoryRepo, alertService)
	budgetService := budget.NewService(budgetRepo, categoryRepo, walletRepo)
	teamService := team.NewService(team.NewRepository(db), userRepo)

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	walletHandler := wallet.NewHandler(db)
	categoryHandler := category.NewHandler(db)
	transactionHandler := transaction.NewHandler(transactionService)
	budgetHandler := budget.NewHandler(budgetService)
	teamHandler := team.NewHandler(teamService)
	notifyHandler := notify.NewHandler(notifyRepo)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/wallets", walletHandler.CreateWallet)
		protected.GET("/wallets", walletHandler.ListWallets)
		protected.GET("/wallets/:walletID", walletHandler.GetWallet)
		protected.PUT("/wallets/:walletID", walletHandler.UpdateWallet)
		protected.DELETE("/wallets/:walletID", walletHandler.DeleteWallet)

		protected.POST("/categories", categoryHandler.CreateCategory)
		protected.GET("/categories", categoryHandler.ListCategories)
		protected.PUT("/categories/:categoryID", categoryHandler.UpdateCategory)
		protected.DELETE("/categories/:categoryID", categoryHandler.DeleteCategory)

		protected.POST("/transactions", transactionHandler.CreateTransaction)
		protected.GET("/transactions", transactionHandler.ListTransactions)
		protected.GET("/transactions/:transactionID", transactionHandler.GetTransaction)
		protected.PUT("/transactions/:transactionID", transactionHandler.UpdateTransaction)
		protected.DELETE("/transactions/:transactionID", transactionHandler.DeleteTransaction)

		protected.POST("/budgets", budgetHandler.CreateBudget)
		protected.GET("/budgets", budgetHandler.ListBudgets)
		protected.GET("/budgets/:id", budgetHandler.GetBudget)
		protected.PUT("/budgets/:id", budgetHandler.UpdateBudget)
		protected.DELETE("/budgets/:id", budgetHandler.DeleteBudget)

		protected.POST("/teams", teamHandler.CreateTeam)
		protected.GET("/teams", teamHandler.ListTeams)
		protected.GET("/teams/:id", teamHandler.GetTeam)
		protected.DELETE("/teams/:id", teamHandler.DeleteTeam)
		protected.POST("/teams/:id/members", teamHandler.AddMember)
		protected.DELETE("/teams/:id/members/:userId", teamHandler.RemoveMember)
		protected.POST("/teams/:id/expenses", teamHandler.RecordExpense)
		protected.GET("/teams/:id/expenses", teamHandler.ListExpenses)
		protected.POST("/teams/:id/settlements", teamHandler.SettleDebt)
		protected.GET("/teams/:id/settlements", teamHandler.ListSettlements)

		protected.GET("/notifications", notifyHandler.ListNotifications)
		protected.PUT("/notifications/:id/read", notifyHandler.MarkNotificationRead)
		protected.POST("/notifications/read-all", notifyHandler.MarkAllNotificationsRead)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		notify: notifyService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
