package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"nismah/internal/security"
	"nismah/internal/service"
	"nismah/internal/validation"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	authService  *service.AuthService
	emailService *service.EmailService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
	}
}

type registerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	UserType      string `json:"userType"`
	Phone         string `json:"phoneNumber"`
	BirthDate     string `json:"dateOfBirth"`
	GuardianEmail string `json:"parentEmail"`
	GuardianPhone string `json:"parentPhone"`
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	account, err := h.authService.Register(service.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.UserType,
		Phone:         req.Phone,
		BirthDate:     req.BirthDate,
		GuardianEmail: req.GuardianEmail,
		GuardianPhone: req.GuardianPhone,
	})
	if err != nil {
		h.respondRegisterError(w, err)
		return
	}

	// Welcome email failures must not fail the registration
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.emailService.SendWelcomeEmail(ctx, account.Email, account.Name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", account.Email, err)
		}
	}()

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Account created successfully",
		"user":    account.Public(),
	})
}

func (h *AuthHandler) respondRegisterError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "An account with this email already exists", "", nil)
	case errors.Is(err, service.ErrGuardianNotFound):
		respondWithError(w, http.StatusBadRequest, "No guardian account found for the given email", "", nil)
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidBirthDate),
		errors.Is(err, service.ErrNotAMinor):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Failed to create account", "Registration failed", err)
	}
}

// Unregister handles DELETE /api/register
func (h *AuthHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondWithError(w, http.StatusBadRequest, "Email parameter is required", "", nil)
		return
	}

	deleted, err := h.authService.DeleteAccount(email)
	if err != nil {
		var validationErr validation.ValidationError
		if errors.As(err, &validationErr) {
			respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete account", "Account deletion failed", err)
		return
	}
	if !deleted {
		respondWithError(w, http.StatusNotFound, "No account found for this email", "", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required", "", nil)
		return
	}

	session, account, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Login failed", "Login failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, "session_id", session.ID, session.ExpiresAt))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged in",
		"user":    account.Public(),
	})
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_id"); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, "session_id"))
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": account.Public()})
}
