package handlers

import (
	"net/http"

	"github.com/aniscentsapp/aniscents/internal/services"
	"github.com/aniscentsapp/aniscents/internal/session"
)

// Register creates an account and signs the new customer in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), services.RegisterInput{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.startUserSession(w, r, user.ID, user.Email, user.IsStaff)
	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Login authenticates and merges the guest cart into the user's cart.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	guestKey := h.sessionManager.SessionKey(r)
	h.startUserSession(w, r, user.ID, user.Email, user.IsStaff)

	if guestKey != "" {
		if err := h.cartService.MergeOnLogin(r.Context(), user.ID, guestKey); err != nil {
			h.loggerFromContext(r.Context()).Warn("failed to merge guest cart on login",
				"user_id", user.ID, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.DestroySession(r.Context(), w, r); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to destroy session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ForgotPassword always responds 202 so the endpoint cannot be used to probe
// for registered addresses.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), body.Email); err != nil {
		h.loggerFromContext(r.Context()).Error("password reset request failed", "error", err)
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "If that address is registered, a reset email is on its way",
	})
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), body.Token, body.Password); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// Profile returns the logged-in customer's details.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromRequest(r.Context(), r)
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "Sign in to view your profile")
		return
	}

	user, err := h.authService.GetUser(r.Context(), sess.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromRequest(r.Context(), r)
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "Sign in to update your profile")
		return
	}

	var body struct {
		FirstName string      `json:"first_name"`
		LastName  string      `json:"last_name"`
		Phone     string      `json:"phone"`
		Address   addressBody `json:"address"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), sess.UserID, services.UpdateProfileInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Address:   body.Address.toAddress(),
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handlers) startUserSession(w http.ResponseWriter, r *http.Request, userID int64, email string, isStaff bool) {
	data := &session.Data{
		UserID:  userID,
		Email:   email,
		IsStaff: isStaff,
	}
	if _, err := h.sessionManager.CreateSession(r.Context(), w, data); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to create session", "error", err)
	}
}
