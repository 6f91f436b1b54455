package api

import (
	"net/http"
	"time"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/auth"
	"github.com/MediSynth-io/contactbook/internal/models"
)

const (
	sessionCookie      = "sessionId"
	refreshTokenCookie = "refreshToken"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sendResetEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	AccessToken string `json:"accessToken"`
}

// setSessionCookies hands the session id and refresh token to the client.
// Both live as long as the refresh token.
func setSessionCookies(w http.ResponseWriter, sess *models.Session) {
	for name, value := range map[string]string{
		sessionCookie:      sess.ID,
		refreshTokenCookie: sess.RefreshToken,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Expires:  sess.RefreshTokenValidUntil,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{sessionCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := api.decodeJSON(w, r, &req); err != nil {
		api.respondError(w, r, err)
		return
	}

	user, err := api.auth.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Successfully registered a user!", user)
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := api.decodeJSON(w, r, &req); err != nil {
		api.respondError(w, r, err)
		return
	}

	sess, err := api.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	setSessionCookies(w, sess)
	respond(w, http.StatusOK, "Successfully logged in an user!", sessionResponse{AccessToken: sess.AccessToken})
}

func (api *Api) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := cookieValue(r, sessionCookie)
	refreshToken := cookieValue(r, refreshTokenCookie)
	if sessionID == "" || refreshToken == "" {
		api.respondError(w, r, apperr.Unauthorized("Session ID or Refresh Token missing!"))
		return
	}

	sess, err := api.auth.Refresh(r.Context(), sessionID, refreshToken)
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	setSessionCookies(w, sess)
	respond(w, http.StatusOK, "Successfully refreshed a session!", sessionResponse{AccessToken: sess.AccessToken})
}

func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if sessionID := cookieValue(r, sessionCookie); sessionID != "" {
		if err := api.auth.Logout(r.Context(), sessionID); err != nil {
			api.respondError(w, r, err)
			return
		}
	}
	clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (api *Api) SendResetEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req sendResetEmailRequest
	if err := api.decodeJSON(w, r, &req); err != nil {
		api.respondError(w, r, err)
		return
	}

	if err := api.auth.RequestReset(r.Context(), req.Email); err != nil {
		api.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Reset password email has been successfully sent.", struct{}{})
}

func (api *Api) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := api.decodeJSON(w, r, &req); err != nil {
		api.respondError(w, r, err)
		return
	}

	if err := api.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		api.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Password has been successfully reset.", struct{}{})
}
