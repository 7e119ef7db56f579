package api

import (
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	res := ts.request(t, http.MethodPost, "/api/register", "", map[string]any{
		"username": "other", "email": "Admin@Example.com", "password": "secret123",
	})
	if res.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", res.Code)
	}

	res = ts.request(t, http.MethodPost, "/api/register", "", map[string]any{
		"username": "root", "email": "root@example.com", "password": "secret123", "role": "superuser",
	})
	if res.Code != http.StatusBadRequest {
		t.Errorf("bad role register = %d, want 400", res.Code)
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	res := ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": "admin@example.com", "password": "secret123",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("login = %d %s", res.Code, res.Body.String())
	}
	var auth authResponse
	decodeBody(t, res, &auth)
	if auth.Token == "" {
		t.Error("login returned empty token")
	}
	if auth.User.Password != "" {
		t.Error("login leaked password hash")
	}

	res = ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": "admin@example.com", "password": "wrong",
	})
	if res.Code != http.StatusUnauthorized {
		t.Errorf("wrong password login = %d, want 401", res.Code)
	}
	res = ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": "nobody@example.com", "password": "secret123",
	})
	if res.Code != http.StatusUnauthorized {
		t.Errorf("unknown email login = %d, want 401", res.Code)
	}
}

func TestPasswordResetRequestHidesAccountExistence(t *testing.T) {
	ts := newTestServer(t)

	for _, email := range []string{"admin@example.com", "ghost@example.com"} {
		res := ts.request(t, http.MethodPost, "/api/reset-password/request", "", map[string]any{"email": email})
		if res.Code != http.StatusOK {
			t.Errorf("reset request for %s = %d, want 200", email, res.Code)
		}
	}

	var count int
	if err := ts.db.Get(&count, `SELECT COUNT(*) FROM password_resets`); err != nil {
		t.Fatalf("count resets: %v", err)
	}
	if count != 1 {
		t.Errorf("stored resets = %d, want 1 (known account only)", count)
	}
}

// seedOTP plants a reset code directly so the flow is testable without
// reading the debug log.
func seedOTP(t *testing.T, ts *testServer, email, otp string, expires time.Time, used int) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash otp: %v", err)
	}
	if _, err := ts.db.Exec(`INSERT INTO password_resets (email, otp_hash, expires_at, used) VALUES (?, ?, ?, ?)`,
		email, hashed, expires.UTC().Format("2006-01-02 15:04:05"), used); err != nil {
		t.Fatalf("seed otp: %v", err)
	}
}

func TestResetPasswordWithOTP(t *testing.T) {
	ts := newTestServer(t)
	seedOTP(t, ts, "admin@example.com", "123456", time.Now().Add(5*time.Minute), 0)

	res := ts.request(t, http.MethodPost, "/api/reset-password", "", map[string]any{
		"email": "admin@example.com", "otp": "654321", "new_password": "newpass456",
	})
	if res.Code != http.StatusUnauthorized {
		t.Errorf("wrong otp = %d, want 401", res.Code)
	}

	res = ts.request(t, http.MethodPost, "/api/reset-password", "", map[string]any{
		"email": "admin@example.com", "otp": "123456", "new_password": "newpass456",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("reset = %d %s", res.Code, res.Body.String())
	}

	// Old password no longer works, new one does.
	res = ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": "admin@example.com", "password": "secret123",
	})
	if res.Code != http.StatusUnauthorized {
		t.Errorf("old password after reset = %d, want 401", res.Code)
	}
	res = ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": "admin@example.com", "password": "newpass456",
	})
	if res.Code != http.StatusOK {
		t.Errorf("new password login = %d, want 200", res.Code)
	}

	// The code is single use.
	res = ts.request(t, http.MethodPost, "/api/reset-password", "", map[string]any{
		"email": "admin@example.com", "otp": "123456", "new_password": "another789",
	})
	if res.Code != http.StatusUnauthorized {
		t.Errorf("reused otp = %d, want 401", res.Code)
	}
}

func TestResetPasswordRejectsExpiredOTP(t *testing.T) {
	ts := newTestServer(t)
	seedOTP(t, ts, "admin@example.com", "123456", time.Now().Add(-time.Minute), 0)

	res := ts.request(t, http.MethodPost, "/api/reset-password", "", map[string]any{
		"email": "admin@example.com", "otp": "123456", "new_password": "newpass456",
	})
	if res.Code != http.StatusUnauthorized {
		t.Errorf("expired otp = %d, want 401", res.Code)
	}
}
