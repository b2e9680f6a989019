package login

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

const sessionTTL = 24 * time.Hour

// CustomerDirectory lists the charge provider's registered customer emails.
// Login is granted to emails the provider already knows.
type CustomerDirectory interface {
	CustomerEmails(ctx context.Context) ([]string, error)
}

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Login</title></head>
<body>
  <h1>Login</h1>
  <form method="post" action="/api/users/login">
    <label>Email <input type="email" name="email" required></label>
    <label>Password <input type="password" name="password" required></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>
`))

type HTTPHandler struct {
	customers CustomerDirectory
	secret    []byte
	logger    *slog.Logger
}

func NewHTTPHandler(customers CustomerDirectory, secret []byte, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		customers: customers,
		secret:    secret,
		logger:    logger,
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users/login", h.handleLoginForm)
	mux.HandleFunc("POST /api/users/login", h.handleLogin)
	mux.HandleFunc("GET /api/users/dashboard", RequireAuth(h.secret)(h.handleDashboard))
}

func (h *HTTPHandler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginPage.Execute(w, nil); err != nil {
		h.logger.Error("failed to render login form", slog.Any("error", err))
	}
}

func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid form data"})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email and password are required"})
		return
	}

	emails, err := h.customers.CustomerEmails(r.Context())
	if err != nil {
		h.logger.Error("failed to list customers", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login temporarily unavailable"})
		return
	}
	if len(emails) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Incorrect email or password"})
		return
	}

	if !slices.Contains(emails, email) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Email not found"})
		return
	}

	token, err := CreateToken(h.secret, email, sessionTTL)
	if err != nil {
		h.logger.Error("failed to create session token", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
		return
	}

	h.logger.Info("login successful", slog.String("email", email))

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
	http.Redirect(w, r, "/api/users/dashboard", http.StatusSeeOther)
}

func (h *HTTPHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims, err := VerifyToken(h.secret, tokenFromRequest(r))
	if err != nil {
		// RequireAuth already validated; this only happens on a race with expiry.
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome back",
		"email":   claims.Email,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
