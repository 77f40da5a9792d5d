package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"resource_hub/internal/app/service"
	"resource_hub/internal/common"
	"resource_hub/internal/domain/model"
)

// IdentityHandler serves signup/signin for both tenants; the mounted route
// group fixes the tenant role.
type IdentityHandler struct {
	identityService *service.IdentityService
}

func NewIdentityHandler(identityService *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identityService: identityService}
}

func (h *IdentityHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/signUp", h.signUp(model.RoleAdmin))
	r.Post("/signIn", h.signIn(model.RoleAdmin))
}

func (h *IdentityHandler) RegisterUserRoutes(r chi.Router) {
	r.Post("/signUp", h.signUp(model.RoleUser))
	r.Post("/signIn", h.signIn(model.RoleUser))
}

func (h *IdentityHandler) signUp(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.SignUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}

		cred, err := h.identityService.SignUp(r.Context(), role, req)
		if err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}
		common.RespondWithData(w, http.StatusOK, "signUp successfully.", cred)
	}
}

func (h *IdentityHandler) signIn(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.SignInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}

		token, err := h.identityService.SignIn(r.Context(), role, req)
		if err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}
		common.RespondWithData(w, http.StatusOK, "signIn successfully.", token)
	}
}
