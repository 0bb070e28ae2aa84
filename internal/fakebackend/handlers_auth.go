package fakebackend

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AddUser seeds an account whose authenticator currently shows code.
func (b *Backend) AddUser(name, username, password, role, code string) int {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextUserID
	b.nextUserID++
	b.accounts[username] = &account{
		ID:           id,
		Name:         name,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Code:         code,
	}
	return id
}

// SetCode changes the code the user's authenticator shows.
func (b *Backend) SetCode(username, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.accounts[username]; ok {
		a.Code = code
	}
}

// PasswordMatches reports whether password is the user's current password.
func (b *Backend) PasswordMatches(username, password string) bool {
	b.mu.Lock()
	a, ok := b.accounts[username]
	b.mu.Unlock()
	return ok && bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

func (b *Backend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !readJSON(r, &req) || req.Username == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	b.mu.Lock()
	_, exists := b.accounts[req.Username]
	b.mu.Unlock()
	if exists {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}

	b.AddUser(req.Name, req.Username, req.Password, "user", "000000")
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.QRCode)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !readJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if !b.PasswordMatches(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "2FA required"})
}

func (b *Backend) checkCode(w http.ResponseWriter, r *http.Request) (*account, bool) {
	var req struct {
		Username string `json:"username"`
		Token    string `json:"token"`
	}
	if !readJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return nil, false
	}

	b.mu.Lock()
	a, ok := b.accounts[req.Username]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	if strings.TrimSpace(req.Token) == "" || req.Token != a.Code {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return nil, false
	}
	return a, true
}

func (b *Backend) handleVerifyTOTP(w http.ResponseWriter, r *http.Request) {
	a, ok := b.checkCode(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	now := NowTimeFunc()
	a.LastLogin = &now
	issue, ttl := b.IssueToken, b.TokenTTL
	b.mu.Unlock()

	if !issue {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
		return
	}

	token, err := b.createToken(a, ttl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful", "token": token})
}

func (b *Backend) handleVerifyTOTPForReset(w http.ResponseWriter, r *http.Request) {
	a, ok := b.checkCode(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	a.ResetAllowed = true
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "TOTP verified"})
}

func (b *Backend) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		NewPassword string `json:"newPassword"`
	}
	if !readJSON(r, &req) || req.Username == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Username and new password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[req.Username]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !a.ResetAllowed {
		writeError(w, http.StatusForbidden, "TOTP verification required")
		return
	}
	a.PasswordHash = string(hash)
	a.ResetAllowed = false
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	b.revokeRequestToken(r)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
