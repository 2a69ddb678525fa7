package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/nholt/grocerly/internal/auth"
	"github.com/nholt/grocerly/internal/form"
	"github.com/nholt/grocerly/internal/store"
)

const sessionCookieName = "grocerly_session"

// AuthHandler serves sign up, log in, and log out.
type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		logger:       logger,
	}
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	data := pageData(r)
	data["Form"] = &form.SignUpForm{Errors: map[string]string{}}
	render(w, "signup.html", data)
}

// Signup validates the form, rejects taken usernames, hashes the password,
// and creates the account. New accounts land on the login page.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	f := form.ParseSignUpForm(r)
	if f.Validate() {
		taken, err := h.userStore.UsernameExists(f.Username)
		if err != nil {
			h.logger.Error("username lookup", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if taken {
			f.Errors["username"] = "That username is taken. Please choose a different one."
		}
	}

	if len(f.Errors) > 0 {
		data := pageData(r)
		data["Form"] = f
		render(w, "signup.html", data)
		return
	}

	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if _, err := h.userStore.Create(f.Username, hash); err != nil {
		h.logger.Error("create user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := pageData(r)
	data["Form"] = &form.LoginForm{Errors: map[string]string{}}
	data["Next"] = r.URL.Query().Get("next")
	render(w, "login.html", data)
}

// Login verifies the credentials and starts a session. Unknown usernames
// and wrong passwords get the same generic message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	f := form.ParseLoginForm(r)

	rerender := func(errMsg string) {
		data := pageData(r)
		data["Form"] = f
		data["Next"] = r.URL.Query().Get("next")
		if errMsg != "" {
			data["Error"] = errMsg
		}
		render(w, "login.html", data)
	}

	if !f.Validate() {
		rerender("")
		return
	}

	user, err := h.userStore.GetByUsername(f.Username)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, f.Password) {
		rerender("Invalid username or password.")
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

// Logout ends the current session, if any, and sends the user home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessionStore.GetByToken(cookie.Value); err == nil && sess != nil {
			if err := h.sessionStore.Delete(sess.ID); err != nil {
				h.logger.Error("delete session", "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site: only rooted local
// paths are honored. "//host" and "/\host" are protocol-relative URLs in
// browsers, so a second slash or backslash disqualifies the path.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, `/\`) {
		return next
	}
	return "/"
}
