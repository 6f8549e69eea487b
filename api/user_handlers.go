package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmcleod/postit/postit"
)

type userListData struct {
	Users []postit.User  `json:"users"`
	Meta  PaginationMeta `json:"meta"`
}

// GetUser returns a user's public profile.
func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.store.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		mapError(w, err)
		return
	}

	user.Password = ""
	writeOK(w, "User fetched", user)
}

// ListUsers returns the offset-paginated account list for the admin panel.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, total, err := a.store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		mapError(w, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}

	writeOK(w, "Users fetched", userListData{
		Users: users,
		Meta: PaginationMeta{
			TotalCount: total,
			Limit:      limit,
			Offset:     offset,
			HasMore:    offset+len(users) < total,
		},
	})
}

type updateUserRequest struct {
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	IsFirstTime *bool   `json:"isFirstTime"`
}

// UpdateUser changes a user's own account details. Admins may edit anyone.
// A password change revokes the account's session; the owner has to sign in
// again with the new password.
func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller := userFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")

	if caller.ID != targetID && caller.Role != postit.RoleAdmin {
		writeError(w, MsgForbidden, "You can only edit your own account")
		return
	}

	target, err := a.store.GetUser(r.Context(), targetID)
	if err != nil {
		mapError(w, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, MsgBadRequest, "invalid request body")
		return
	}

	passwordChanged := false

	if req.Username != nil {
		if err := postit.ValidateUsername(*req.Username); err != nil {
			mapError(w, err)
			return
		}
		target.Username = *req.Username
	}
	if req.Password != nil {
		if err := postit.ValidatePassword(*req.Password); err != nil {
			mapError(w, err)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, MsgInternalServerError, err.Error())
			return
		}
		target.Password = string(hash)
		passwordChanged = true
	}
	if req.IsFirstTime != nil {
		target.IsFirstTime = *req.IsFirstTime
	}

	if err := a.store.UpdateUser(r.Context(), target); err != nil {
		mapError(w, err)
		return
	}

	if passwordChanged {
		if err := a.cache.Remove(r.Context(), target.ID); err != nil {
			writeError(w, MsgInternalServerError, err.Error())
			return
		}
		a.audit.logEvent(AuditSessionRevoked, r, target.ID)
		if caller.ID == target.ID {
			clearTokenCookies(w, r)
		}
	}

	a.audit.logEvent(AuditUserUpdated, r, target.ID)
	target.Password = ""
	writeOK(w, "User updated", target)
}

// DeleteUser removes an account and revokes its session. Users delete
// themselves; admins delete anyone. The account's posts remain.
func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := userFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")

	if caller.ID != targetID && caller.Role != postit.RoleAdmin {
		writeError(w, MsgForbidden, "You can only delete your own account")
		return
	}

	if err := a.store.DeleteUser(r.Context(), targetID); err != nil {
		mapError(w, err)
		return
	}
	if err := a.cache.Remove(r.Context(), targetID); err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	if caller.ID == targetID {
		clearTokenCookies(w, r)
	}

	a.audit.logEvent(AuditUserDeleted, r, targetID)
	writeOK(w, "User deleted", nil)
}

type changeRoleRequest struct {
	Role postit.Role `json:"role"`
}

// ChangeRole promotes or demotes a user one step (user <-> mod). Admins are
// created out of band and cannot be assigned here.
func (a *API) ChangeRole(w http.ResponseWriter, r *http.Request) {
	target, err := a.store.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		mapError(w, err)
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, MsgBadRequest, "invalid request body")
		return
	}
	if req.Role != postit.RoleUser && req.Role != postit.RoleMod {
		writeError(w, MsgBadRequest, "invalid role")
		return
	}
	if req.Role != target.Role.Promoted() && req.Role != target.Role.Demoted() {
		writeError(w, MsgBadRequest, "invalid role transition")
		return
	}

	target.Role = req.Role
	if err := a.store.UpdateUser(r.Context(), target); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditRoleChanged, r, target.ID)
	target.Password = ""
	writeOK(w, "Role updated", target)
}

type changeRestrictionRequest struct {
	IsRestricted bool `json:"isRestricted"`
}

// ChangeRestriction toggles whether a user may create posts.
func (a *API) ChangeRestriction(w http.ResponseWriter, r *http.Request) {
	target, err := a.store.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		mapError(w, err)
		return
	}

	var req changeRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, MsgBadRequest, "invalid request body")
		return
	}

	target.IsRestricted = req.IsRestricted
	if err := a.store.UpdateUser(r.Context(), target); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditRestrictionChanged, r, target.ID)
	target.Password = ""
	writeOK(w, "Restriction updated", target)
}
