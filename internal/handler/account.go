package handler

import (
	"context"
	"net/http"

	"github.com/dreamwise/dreamwise/internal/ctxkeys"
	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/service"
	"github.com/dreamwise/dreamwise/internal/validation"
)

type AccountHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
	avatarService  *service.AvatarService
}

func NewAccountHandler(authService *service.AuthService, accountService *service.AccountService, avatarService *service.AvatarService) *AccountHandler {
	return &AccountHandler{
		authService:    authService,
		accountService: accountService,
		avatarService:  avatarService,
	}
}

type changePasswordRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// profilePatch carries only the fields a client wants to change. The avatar
// is set through UploadAvatar only.
type profilePatch struct {
	DisplayName         *string   `json:"displayName"`
	Bio                 *string   `json:"bio"`
	SpiritualBackground *string   `json:"spiritualBackground"`
	DreamingExperience  *string   `json:"dreamingExperience"`
	Interests           *[]string `json:"interests"`
}

func (p profilePatch) apply(profile model.Profile) model.Profile {
	setIf(&profile.DisplayName, p.DisplayName)
	setIf(&profile.Bio, p.Bio)
	setIf(&profile.SpiritualBackground, p.SpiritualBackground)
	setIf(&profile.DreamingExperience, p.DreamingExperience)
	if p.Interests != nil {
		profile.Interests = model.Interests(*p.Interests)
	}
	return profile
}

type preferencesPatch struct {
	EmailNotifications *bool             `json:"emailNotifications"`
	CommunityUpdates   *bool             `json:"communityUpdates"`
	DreamReminders     *bool             `json:"dreamReminders"`
	ProfileVisibility  *model.Visibility `json:"profileVisibility"`
	JournalVisibility  *model.Visibility `json:"journalVisibility"`
}

func (p preferencesPatch) apply(prefs model.Preferences) model.Preferences {
	setIf(&prefs.EmailNotifications, p.EmailNotifications)
	setIf(&prefs.CommunityUpdates, p.CommunityUpdates)
	setIf(&prefs.DreamReminders, p.DreamReminders)
	setIf(&prefs.ProfileVisibility, p.ProfileVisibility)
	setIf(&prefs.JournalVisibility, p.JournalVisibility)
	return prefs
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())
	writeJSON(w, http.StatusOK, safeProfile(r.Context(), h.avatarService, account))
}

func (h *AccountHandler) RequestPasswordChange(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	err := h.authService.RequestPasswordChange(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, messageResponse{Message: "verification code sent"})
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.ChangePassword(r.Context(), account.ID, req.Code, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	var patch profilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.accountService.UpdateProfile(r.Context(), account.ID, patch.apply(account.Profile))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, safeProfile(r.Context(), h.avatarService, updated))
}

func (h *AccountHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	var patch preferencesPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.accountService.UpdatePreferences(r.Context(), account.ID, patch.apply(account.Preferences))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, safeProfile(r.Context(), h.avatarService, updated))
}

func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	maxSize := validation.ImageConstraints.MaxSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+(1<<20))

	err := r.ParseMultipartForm(maxSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	_, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}

	updated, err := h.avatarService.Upload(r.Context(), account.ID, header)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, safeProfile(r.Context(), h.avatarService, updated))
}

// Delete deactivates the account. The row is kept.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	err := h.accountService.Deactivate(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func safeProfile(ctx context.Context, avatars *service.AvatarService, account *model.Account) model.SafeProfile {
	p := account.SafeProfile()
	p.Profile.Avatar = avatars.URL(ctx, p.Profile.Avatar)
	return p
}

func publicProfile(ctx context.Context, avatars *service.AvatarService, account *model.Account) model.PublicProfile {
	p := account.PublicProfile()
	p.Profile.Avatar = avatars.URL(ctx, p.Profile.Avatar)
	return p
}
