// Package apitest provides an in-process commerce backend for exercising the
// client against real HTTP. It implements just enough of the API surface for
// the stores: session auth, cart replace, and order lifecycle.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const signingSecret = "test-secret"

// Server is a fake commerce backend. All state lives in memory and is safe
// for concurrent access.
type Server struct {
	mu       sync.Mutex
	httpd    *httptest.Server
	users    map[string]userRecord // username -> record
	tokens   map[string]string     // token -> userID
	carts    map[string]json.RawMessage
	orders   []map[string]any
	orderSeq int
}

type userRecord struct {
	ID       string
	Username string
	Email    string
	Password string
}

// NewServer starts the fake backend with a single known account.
func NewServer() *Server {
	s := &Server{
		users: map[string]userRecord{
			"asha": {ID: "u-1", Username: "asha", Email: "asha@example.com", Password: "secret"},
		},
		tokens: map[string]string{},
		carts:  map[string]json.RawMessage{},
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/verify", s.handleVerify)
		r.Get("/cart", s.handleGetCart)
		r.Post("/cart", s.handlePutCart)
		r.Get("/orders", s.handleListOrders)
		r.Post("/orders", s.handleCreateOrder)
		r.Get("/orders/{orderID}", s.handleGetOrder)
	})

	s.httpd = httptest.NewServer(r)
	return s
}

// URL is the base address clients should target.
func (s *Server) URL() string {
	return s.httpd.URL
}

func (s *Server) Close() {
	s.httpd.Close()
}

func (s *Server) mintToken(userID string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"iat":    time.Now().Unix(),
	}).SignedString([]byte(signingSecret))
	if err != nil {
		panic(err)
	}
	return token
}

// authenticate resolves the bearer token to a user id, empty when absent or
// unknown.
func (s *Server) authenticate(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
		return
	}

	s.mu.Lock()
	var found *userRecord
	for _, user := range s.users {
		if user.Username == req.UsernameOrEmail || user.Email == req.UsernameOrEmail {
			u := user
			found = &u
			break
		}
	}
	s.mu.Unlock()

	if found == nil || found.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Invalid credentials"})
		return
	}

	token := s.mintToken(found.ID)
	s.mu.Lock()
	s.tokens[token] = found.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"token": token,
		"user": map[string]any{
			"_id":      found.ID,
			"username": found.Username,
			"email":    found.Email,
		},
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
		return
	}
	if req.Password != req.ConfirmPassword {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Passwords do not match"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Username already taken"})
		return
	}
	s.users[req.Username] = userRecord{
		ID:       fmt.Sprintf("u-%d", len(s.users)+1),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == userID {
			writeJSON(w, http.StatusOK, map[string]any{
				"ok": true,
				"user": map[string]any{
					"_id":      user.ID,
					"username": user.Username,
					"email":    user.Email,
				},
			})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}
	s.mu.Lock()
	cart := s.carts[userID]
	s.mu.Unlock()
	if cart == nil {
		cart = json.RawMessage("[]")
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "cart": cart})
}

func (s *Server) handlePutCart(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}
	var req struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
		return
	}
	s.mu.Lock()
	s.carts[userID] = req.Items
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}
	s.mu.Lock()
	orders := make([]map[string]any, 0)
	for _, order := range s.orders {
		if order["userId"] == userID {
			orders = append(orders, order)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orders": orders})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
		return
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.orderSeq++
	orderID := fmt.Sprintf("ORD-%d", s.orderSeq)
	order := map[string]any{
		"_id":             fmt.Sprintf("o-%d", s.orderSeq),
		"orderId":         orderID,
		"userId":          userID,
		"items":           req["items"],
		"deliveryAddress": req["deliveryAddress"],
		"paymentInfo":     req["paymentInfo"],
		"pricing":         req["pricing"],
		"orderNotes":      req["orderNotes"],
		"status":          "pending",
		"timeline": []map[string]any{
			{"stage": "pending", "timestamp": now.Format(time.RFC3339), "description": "Order placed"},
		},
		"estimatedDelivery": now.AddDate(0, 0, 5).Format(time.RFC3339),
		"createdAt":         now.Format(time.RFC3339),
		"updatedAt":         now.Format(time.RFC3339),
	}
	s.orders = append([]map[string]any{order}, s.orders...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "order": order, "orderId": orderID})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}
	orderID := chi.URLParam(r, "orderID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order["userId"] == userID && (order["orderId"] == orderID || order["_id"] == orderID) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "order": order})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Order not found"})
}
