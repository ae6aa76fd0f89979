package http

import (
	"errors"
	"log/slog"
	"net/http"

	"budget/internal/core"
)

type authPage struct {
	Error string
	Name  string
	Email string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.auth.Current(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "landing.html", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", authPage{})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "login.html", authPage{Error: "Invalid request format"})
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	secret := r.Form.Get("password")

	_, err := s.auth.Login(r.Context(), email, secret)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, r, "login.html", authPage{Error: "Invalid email or password", Email: email})
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, r, "login.html", authPage{Error: "Something went wrong, try again", Email: email})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "register.html", authPage{})
	case http.MethodPost:
		s.handleRegisterSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "register.html", authPage{Error: "Invalid request format"})
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	email := sanitizeInput(r.Form.Get("email"))
	secret := r.Form.Get("password")

	_, err := s.auth.Register(r.Context(), name, email, secret)
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	case errors.Is(err, core.ErrDuplicateEmail):
		w.WriteHeader(http.StatusConflict)
		s.render(w, r, "register.html", authPage{Error: "That email is already registered", Name: name})
	case errors.Is(err, core.ErrMissingField):
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "register.html", authPage{Error: "Name, email, and password are all required", Name: name, Email: email})
	default:
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, r, "register.html", authPage{Error: "Something went wrong, try again", Name: name, Email: email})
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.auth.Logout(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Logout failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
