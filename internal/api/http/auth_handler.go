package http

import (
	"net/http"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/service"
)

type AuthHandler struct {
	auth         service.AuthService
	provisioning service.ProvisioningService
}

func NewAuthHandler(auth service.AuthService, provisioning service.ProvisioningService) *AuthHandler {
	return &AuthHandler{auth: auth, provisioning: provisioning}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Account      *domain.Account `json:"account"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	account, access, refresh, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Account:      account,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	access, refresh, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: access, RefreshToken: refresh})
}

type bootstrapAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BootstrapAdmin creates the first administrator. The provisioning service
// refuses it once any admin account exists.
func (h *AuthHandler) BootstrapAdmin(w http.ResponseWriter, r *http.Request) {
	var req bootstrapAdminRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.provisioning.BootstrapAdmin(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

type resetAdminsResponse struct {
	Removed int `json:"removed"`
}

// ResetAdmins is the recovery path when every admin credential is lost: it
// removes all admin accounts so BootstrapAdmin can run again.
func (h *AuthHandler) ResetAdmins(w http.ResponseWriter, r *http.Request) {
	removed, err := h.provisioning.ResetAdmins(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetAdminsResponse{Removed: removed})
}
