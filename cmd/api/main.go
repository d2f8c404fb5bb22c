package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/settleup/docs"
	"github.com/fkhayef/settleup/internal/balance"
	"github.com/fkhayef/settleup/internal/config"
	"github.com/fkhayef/settleup/internal/database"
	"github.com/fkhayef/settleup/internal/expense"
	expensesplit "github.com/fkhayef/settleup/internal/expense/split"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/settlement"
	"github.com/fkhayef/settleup/internal/user"
	mw "github.com/fkhayef/settleup/pkg/middleware"
)

// @title           SettleUp API
// @version         1.0
// @description     Shared expense tracking with balance computation and debt simplification.

// @host      localhost:8080
// @BasePath  /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo)
	groupHandler := group.NewHandler(groupService)

	// Settlement feature
	settlementRepo := settlement.NewRepository(db)
	settlementService := settlement.NewService(settlementRepo, groupRepo)
	settlementHandler := settlement.NewHandler(settlementService)

	// Expense feature (with split factory injected)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, groupRepo, settlementRepo, splitFactory)
	expenseHandler := expense.NewHandler(expenseService)

	// Balance feature (pure reads over the other features' stores)
	balanceService := balance.NewService(groupRepo, expenseRepo, settlementRepo)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(mw.UserIdentity)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
