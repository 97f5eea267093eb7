package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calcpay/server/internal/common"
	"github.com/calcpay/server/internal/server/models"
)

type messageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	ID      string `json:"id,omitempty"`
}

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type saveCalculationRequest struct {
	Total   decimal.Decimal `json:"total"`
	Details json.RawMessage `json:"details"`
}

type calculationResponse struct {
	ID        string          `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeServiceError translates sentinel errors into the HTTP statuses the
// frontend expects.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorInvalidCode),
		errors.Is(err, common.ErrorInvalidOrExpiredToken),
		errors.Is(err, common.ErrorSamePassword):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "account not found")
	case errors.Is(err, common.ErrorDuplicateEmail):
		writeMessage(w, http.StatusConflict, "email already registered")
	case errors.Is(err, common.ErrorNotVerified):
		writeMessage(w, http.StatusForbidden, "account has not been verified, please check your email")
	case errors.Is(err, common.ErrorWrongPassword):
		writeMessage(w, http.StatusUnauthorized, "wrong password")
	case errors.Is(err, common.ErrorUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {

	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password != req.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "account registered", "email", account.Email)
	writeMessage(w, http.StatusCreated, "account registered, a verification code has been sent to your email")
}

func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {

	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" {
		writeMessage(w, http.StatusBadRequest, "email and code are required")
		return
	}

	if err := s.accounts.Verify(r.Context(), req.Email, req.Code); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "account verified, you can now log in")
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "login successful", Token: token})
}

func (s *HTTPServer) handleForgotPassword(w http.ResponseWriter, r *http.Request) {

	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	// same answer whether or not the address exists
	writeMessage(w, http.StatusOK, "if your email is registered, you will receive a password reset link")
}

func (s *HTTPServer) handleResetPassword(w http.ResponseWriter, r *http.Request) {

	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "token and password are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	if err := s.accounts.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "your password has been updated")
}

func (s *HTTPServer) handleSaveCalculation(w http.ResponseWriter, r *http.Request) {

	var req saveCalculationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	calc, err := s.calculations.Save(r.Context(), accountIDFromContext(r.Context()), req.Total, req.Details)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "calculation saved", "account", accountEmailFromContext(r.Context()), "id", calc.ID)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "calculation saved", ID: calc.ID})
}

func (s *HTTPServer) handleListCalculations(w http.ResponseWriter, r *http.Request) {

	list, err := s.calculations.List(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]calculationResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCalculationResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func toCalculationResponse(c *models.Calculation) calculationResponse {
	return calculationResponse{
		ID:        c.ID,
		Total:     c.Total,
		Details:   c.Details,
		CreatedAt: c.CreatedAt,
	}
}
