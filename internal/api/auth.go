package api

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gastrade/m/domain"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = "staff"
	}
	if req.Role != "admin" && req.Role != "staff" {
		respondError(w, http.StatusBadRequest, "role must be admin or staff")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	res, err := h.db.Exec(`INSERT INTO users (username, email, password, role) VALUES (?, ?, ?, ?)`,
		req.Username, strings.ToLower(req.Email), hashed, req.Role)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			respondError(w, http.StatusConflict, "email already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create user")
		}
		return
	}
	userID, _ := res.LastInsertId()

	token, err := h.generateToken(userID, req.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  domain.User{ID: userID, Username: req.Username, Email: strings.ToLower(req.Email), Role: req.Role},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user domain.User
	err := h.db.Get(&user, `SELECT id, username, email, password, role FROM users WHERE email = ?`, strings.ToLower(req.Email))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

const otpTTL = 10 * time.Minute

func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	// Respond identically whether or not the account exists.
	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email); err != nil || !exists {
		respondJSON(w, http.StatusOK, map[string]string{"status": "otp sent"})
		return
	}

	otp, err := generateOTP()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate otp")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure otp")
		return
	}
	expires := time.Now().Add(otpTTL).UTC().Format("2006-01-02 15:04:05")
	if _, err := h.db.Exec(`INSERT INTO password_resets (email, otp_hash, expires_at) VALUES (?, ?, ?)`,
		email, hashed, expires); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to store otp")
		return
	}

	// No mail transport here; operators read the code from the debug log.
	h.log.Debug("password reset otp issued", zap.String("email", email), zap.String("otp", otp))
	respondJSON(w, http.StatusOK, map[string]string{"status": "otp sent"})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.OTP == "" || payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "email, otp and new_password are required")
		return
	}

	var reset struct {
		ID      int64  `db:"id"`
		OTPHash string `db:"otp_hash"`
	}
	err := h.db.Get(&reset, `SELECT id, otp_hash FROM password_resets
        WHERE email = ? AND used = 0 AND expires_at > ?
        ORDER BY id DESC LIMIT 1`,
		email, time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired otp")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(reset.OTPHash), []byte(payload.OTP)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired otp")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start reset")
		return
	}
	if _, err := tx.Exec(`UPDATE users SET password = ? WHERE email = ?`, hashed, email); err != nil {
		_ = tx.Rollback()
		respondError(w, http.StatusInternalServerError, "unable to update password")
		return
	}
	if _, err := tx.Exec(`UPDATE password_resets SET used = 1 WHERE id = ?`, reset.ID); err != nil {
		_ = tx.Rollback()
		respondError(w, http.StatusInternalServerError, "unable to finalize reset")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete reset")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
