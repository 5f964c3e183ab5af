package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	v := newValidator()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Log: log}
	branchesHandler := &BranchesHandler{DB: db, Validate: v, Log: log}
	productsHandler := &ProductsHandler{DB: db, Validate: v, Log: log}
	inventoryHandler := &InventoryHandler{DB: db, Validate: v, Log: log}
	transfersHandler := &TransfersHandler{DB: db, Validate: v, Log: log}

	authMW := AuthMiddleware(jwtSecret, db, log)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Branches and products: read (all roles), write (manager+).
	mux.Handle("GET /api/branches", authMW(http.HandlerFunc(branchesHandler.List)))
	mux.Handle("POST /api/branches", authMW(requireManager(http.HandlerFunc(branchesHandler.Create))))
	mux.Handle("GET /api/products", authMW(http.HandlerFunc(productsHandler.List)))
	mux.Handle("POST /api/products", authMW(requireManager(http.HandlerFunc(productsHandler.Create))))

	// Inventory: read (all), stock intake (manager+).
	mux.Handle("GET /api/inventory", authMW(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("POST /api/inventory/stock", authMW(requireManager(http.HandlerFunc(inventoryHandler.AddStock))))

	// Transfers (all roles).
	mux.Handle("POST /api/transfers", authMW(http.HandlerFunc(transfersHandler.Create)))
	mux.Handle("GET /api/transfers", authMW(http.HandlerFunc(transfersHandler.List)))
	mux.Handle("GET /api/transfers/export", authMW(http.HandlerFunc(transfersHandler.Export)))
	mux.Handle("GET /api/transfers/{id}", authMW(http.HandlerFunc(transfersHandler.Get)))

	return mux
}
