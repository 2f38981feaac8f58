package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/service"
)

// AdminHandler serves the administrator surface: provisioning, recharges,
// payouts, the full transaction log, and commission settings.
type AdminHandler struct {
	directory    service.AccountDirectory
	ledger       service.LedgerEngine
	provisioning service.ProvisioningService
}

func NewAdminHandler(directory service.AccountDirectory, ledger service.LedgerEngine, provisioning service.ProvisioningService) *AdminHandler {
	return &AdminHandler{directory: directory, ledger: ledger, provisioning: provisioning}
}

type createClientRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	InitialBalance int64  `json:"initial_balance"`
}

func (h *AdminHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := h.provisioning.CreateClient(r.Context(), req.Name, req.Email, req.Password, req.InitialBalance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

type createMerchantRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	MerchantCode   string   `json:"merchant_code"`
	CommissionRate *float64 `json:"commission_rate"`
}

func (h *AdminHandler) CreateMerchant(w http.ResponseWriter, r *http.Request) {
	var req createMerchantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := h.provisioning.CreateMerchant(r.Context(), req.Name, req.Email, req.Password, req.MerchantCode, req.CommissionRate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	switch role {
	case domain.RoleClient, domain.RoleMerchant, domain.RoleAdmin:
	default:
		writeBadRequest(w, "role must be one of client, merchant, admin")
		return
	}
	accounts, err := h.directory.ListAccounts(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *AdminHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.directory.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

type rechargeRequest struct {
	ClientID    string `json:"client_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *AdminHandler) CreateRecharge(w http.ResponseWriter, r *http.Request) {
	var req rechargeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ClientID == "" {
		writeBadRequest(w, "client_id is required")
		return
	}
	tx, err := h.ledger.RecordRecharge(r.Context(), req.ClientID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionView(*tx))
}

type payoutRequest struct {
	MerchantID  string `json:"merchant_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *AdminHandler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	var req payoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MerchantID == "" {
		writeBadRequest(w, "merchant_id is required")
		return
	}
	tx, err := h.ledger.RecordPayout(r.Context(), req.MerchantID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionView(*tx))
}

// SearchTransactions filters the full log by type, date range, and free
// text over descriptions and participant names.
func (h *AdminHandler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	filter := domain.TransactionFilter{
		Type:       domain.TransactionType(r.URL.Query().Get("type")),
		SearchText: r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "from must be an RFC 3339 timestamp")
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "to must be an RFC 3339 timestamp")
			return
		}
		filter.To = to
	}
	page, pageSize := paginationParams(r)

	transactions, total, err := h.ledger.SearchTransactions(r.Context(), filter, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: transactionViews(transactions),
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	})
}

type commissionResponse struct {
	CommissionPercent float64 `json:"commission_percent"`
}

func (h *AdminHandler) GetCommission(w http.ResponseWriter, r *http.Request) {
	percent, err := h.ledger.GetCommissionPercent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commissionResponse{CommissionPercent: percent})
}

type setCommissionRequest struct {
	CommissionPercent float64 `json:"commission_percent"`
}

func (h *AdminHandler) SetCommission(w http.ResponseWriter, r *http.Request) {
	var req setCommissionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.ledger.SetCommissionPercent(r.Context(), req.CommissionPercent); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commissionResponse{CommissionPercent: req.CommissionPercent})
}

type setMerchantCommissionRequest struct {
	CommissionRate *float64 `json:"commission_rate"`
}

// SetMerchantCommission overrides one merchant's rate; a null rate reverts
// the merchant to the global default.
func (h *AdminHandler) SetMerchantCommission(w http.ResponseWriter, r *http.Request) {
	var req setMerchantCommissionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.directory.UpdateMerchantCommission(r.Context(), mux.Vars(r)["id"], req.CommissionRate); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.DeactivateAccount(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustBalanceRequest struct {
	Delta       int64  `json:"delta"`
	Description string `json:"description"`
}

type adjustBalanceResponse struct {
	Balance int64 `json:"balance"`
}

// AdjustBalance applies a signed correction outside the normal recharge and
// payout flows, for reconciling drift found by the nightly check.
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req adjustBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	balance, err := h.directory.AdjustBalance(r.Context(), mux.Vars(r)["id"], req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustBalanceResponse{Balance: balance})
}
