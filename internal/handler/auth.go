package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ydahmen/student-records/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email"`
}

type registerResponse struct {
	StudentID string `json:"studentId"`
	EmailSent bool   `json:"emailSent"`
	Message   string `json:"message"`
}

// HandleRegister creates a student account.
//
// HTTP: POST /auth/register (no auth)
//
// The generated student ID is always in the response body; when an email
// address was supplied and delivery succeeded, emailSent is true.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Email:           req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	msg := "Account created. Save your student ID — you will need it."
	if result.EmailSent {
		msg = "Account created. Your student ID has been emailed to you."
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		StudentID: result.StudentID,
		EmailSent: result.EmailSent,
		Message:   msg,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	StudentID string `json:"studentId,omitempty"`
}

// HandleLogin validates credentials and returns a signed token plus the
// caller's identity.
//
// HTTP: POST /auth/login (no auth)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User: loginUser{
			ID:        result.User.ID,
			Username:  result.User.Username,
			Role:      string(result.User.Role),
			StudentID: result.User.StudentID,
		},
	})
}
