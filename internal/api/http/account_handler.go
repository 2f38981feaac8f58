package http

import (
	"net/http"
	"strconv"

	"bliss-balance-backend/internal/service"
)

// AccountHandler serves the authenticated caller's own account: profile,
// balance, history, and purchases against a merchant code.
type AccountHandler struct {
	directory service.AccountDirectory
	ledger    service.LedgerEngine
}

func NewAccountHandler(directory service.AccountDirectory, ledger service.LedgerEngine) *AccountHandler {
	return &AccountHandler{directory: directory, ledger: ledger}
}

func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	account, err := h.directory.GetAccount(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

type transactionListResponse struct {
	Transactions []transactionView `json:"transactions"`
	Total        int32             `json:"total"`
	Page         int32             `json:"page"`
	PageSize     int32             `json:"page_size"`
}

func (h *AccountHandler) GetMyTransactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	page, pageSize := paginationParams(r)

	transactions, total, err := h.ledger.GetTransactions(r.Context(), claims.AccountID, page, pageSize)
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

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

func (h *AccountHandler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	balance, err := h.directory.GetBalance(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

type purchaseRequest struct {
	MerchantCode string `json:"merchant_code"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
}

// CreatePurchase pays a merchant identified by its public code. The code is
// resolved to an account first so the ledger engine only ever sees ids.
func (h *AccountHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	var req purchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MerchantCode == "" {
		writeBadRequest(w, "merchant_code is required")
		return
	}

	merchant, err := h.directory.GetMerchantByCode(r.Context(), req.MerchantCode)
	if err != nil {
		writeError(w, err)
		return
	}

	tx, err := h.ledger.RecordPurchase(r.Context(), claims.AccountID, merchant.ID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionView(*tx))
}

// GetMerchantByCode lets a client preview who they are about to pay.
func (h *AccountHandler) GetMerchantByCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeBadRequest(w, "code is required")
		return
	}
	merchant, err := h.directory.GetMerchantByCode(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":            merchant.ID,
		"display_name":  merchant.DisplayName,
		"merchant_code": merchant.MerchantCode,
	})
}

func paginationParams(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
