package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/nholt/grocerly/internal/handler"
	"github.com/nholt/grocerly/internal/middleware"
	"github.com/nholt/grocerly/internal/store"
	ws "github.com/nholt/grocerly/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	groceryH     *handler.GroceryHandler
	authH        *handler.AuthHandler
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	groceryStore := store.NewGroceryStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		groceryH:     handler.NewGroceryHandler(groceryStore, hub, logger.With("component", "grocery")),
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		userStore:    userStore,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /", s.groceryH.Home)
	mux.Handle("GET /new_store", s.protected(s.groceryH.NewStorePage))
	mux.Handle("POST /new_store", s.protected(s.groceryH.NewStore))
	mux.HandleFunc("GET /store/{store_id}", s.groceryH.StoreDetail)
	mux.Handle("POST /store/{store_id}", s.protected(s.groceryH.StoreUpdate))
	mux.Handle("GET /new_item", s.protected(s.groceryH.NewItemPage))
	mux.Handle("POST /new_item", s.protected(s.groceryH.NewItem))
	mux.HandleFunc("GET /item/{item_id}", s.groceryH.ItemDetail)
	mux.Handle("POST /item/{item_id}", s.protected(s.groceryH.ItemUpdate))

	// Auth
	mux.HandleFunc("GET /signup", s.authH.SignupPage)
	mux.Handle("POST /signup", s.rateLimited(s.authH.Signup))
	mux.HandleFunc("GET /login", s.authH.LoginPage)
	mux.Handle("POST /login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("GET /logout", s.authH.Logout)

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))

	withUser := middleware.WithUser(s.sessionStore, s.userStore)
	logged := middleware.RequestLogger(s.logger.With("component", "http"))
	return logged(withUser(mux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)(h)
}
