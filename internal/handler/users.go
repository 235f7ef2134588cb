package handler

import (
	"net/http"

	"github.com/dreamwise/dreamwise/internal/service"
)

type UserHandler struct {
	accountService *service.AccountService
	avatarService  *service.AvatarService
}

func NewUserHandler(accountService *service.AccountService, avatarService *service.AvatarService) *UserHandler {
	return &UserHandler{
		accountService: accountService,
		avatarService:  avatarService,
	}
}

// Show returns a public profile. Inactive and private accounts look the
// same as missing ones.
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.ByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if !account.IsPublic() {
		writeServiceError(w, r, service.ErrAccountNotFound)
		return
	}

	writeJSON(w, http.StatusOK, publicProfile(r.Context(), h.avatarService, account))
}
