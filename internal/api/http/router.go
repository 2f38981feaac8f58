package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/repository"
	"bliss-balance-backend/internal/security"
	"bliss-balance-backend/internal/service"
)

// RouterDeps carries everything the route table needs.
type RouterDeps struct {
	Tokens       security.TokenManager
	Directory    service.AccountDirectory
	Ledger       service.LedgerEngine
	Provisioning service.ProvisioningService
	Auth         service.AuthService
	Idempotency  repository.IdempotencyRepository
}

// NewRouter builds the full route table. Money-moving POST routes sit
// behind the idempotency middleware; admin routes re-check the stored role
// on every request.
func NewRouter(deps RouterDeps) *mux.Router {
	authHandler := NewAuthHandler(deps.Auth, deps.Provisioning)
	accountHandler := NewAccountHandler(deps.Directory, deps.Ledger)
	adminHandler := NewAdminHandler(deps.Directory, deps.Ledger, deps.Provisioning)

	r := mux.NewRouter()
	r.Use(RequestLogging)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Public surface: login, token refresh, and the two admin recovery
	// endpoints that the provisioning service itself guards.
	r.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/setup/admin", authHandler.BootstrapAdmin).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/setup/reset-admins", authHandler.ResetAdmins).Methods(http.MethodPost)

	authenticated := r.PathPrefix("/api/v1").Subrouter()
	authenticated.Use(Authenticate(deps.Tokens))

	authenticated.HandleFunc("/me", accountHandler.GetMe).Methods(http.MethodGet)
	authenticated.HandleFunc("/me/transactions", accountHandler.GetMyTransactions).Methods(http.MethodGet)
	authenticated.HandleFunc("/me/balance", accountHandler.GetMyBalance).Methods(http.MethodGet)
	authenticated.HandleFunc("/merchants/lookup", accountHandler.GetMerchantByCode).Methods(http.MethodGet)

	purchases := authenticated.PathPrefix("/purchases").Subrouter()
	purchases.Use(RequireRole(deps.Directory, domain.RoleClient))
	purchases.Use(Idempotency(deps.Idempotency))
	purchases.HandleFunc("", accountHandler.CreatePurchase).Methods(http.MethodPost)

	admin := authenticated.PathPrefix("/admin").Subrouter()
	admin.Use(RequireRole(deps.Directory, domain.RoleAdmin))

	admin.HandleFunc("/clients", adminHandler.CreateClient).Methods(http.MethodPost)
	admin.HandleFunc("/merchants", adminHandler.CreateMerchant).Methods(http.MethodPost)
	admin.HandleFunc("/accounts", adminHandler.ListAccounts).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{id}", adminHandler.GetAccount).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{id}", adminHandler.DeactivateAccount).Methods(http.MethodDelete)
	admin.HandleFunc("/accounts/{id}/balance", adminHandler.AdjustBalance).Methods(http.MethodPost)
	admin.HandleFunc("/merchants/{id}/commission", adminHandler.SetMerchantCommission).Methods(http.MethodPut)
	admin.HandleFunc("/transactions", adminHandler.SearchTransactions).Methods(http.MethodGet)
	admin.HandleFunc("/settings/commission", adminHandler.GetCommission).Methods(http.MethodGet)
	admin.HandleFunc("/settings/commission", adminHandler.SetCommission).Methods(http.MethodPut)

	adminMoney := admin.NewRoute().Subrouter()
	adminMoney.Use(Idempotency(deps.Idempotency))
	adminMoney.HandleFunc("/recharges", adminHandler.CreateRecharge).Methods(http.MethodPost)
	adminMoney.HandleFunc("/payouts", adminHandler.CreatePayout).Methods(http.MethodPost)

	return r
}
