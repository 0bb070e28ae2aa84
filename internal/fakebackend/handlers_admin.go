package fakebackend

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func (b *Backend) currentAccount(r *http.Request) *account {
	username, _ := r.Context().Value(contextKeyUsername).(string)
	return b.accounts[username]
}

func (b *Backend) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	a := b.currentAccount(r)
	b.mu.Unlock()
	if a == nil || a.Role != "admin" {
		writeError(w, http.StatusForbidden, "Admin access required")
		return false
	}
	return true
}

func userJSON(a *account) map[string]any {
	u := map[string]any{
		"id":       a.ID,
		"name":     a.Name,
		"username": a.Username,
		"role":     a.Role,
	}
	if a.LastLogin != nil {
		u["last_login"] = a.LastLogin.UTC().Format(time.RFC3339)
	} else {
		u["last_login"] = nil
	}
	return u
}

func (b *Backend) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	b.mu.Lock()
	list := make([]map[string]any, 0, len(b.accounts))
	for id := 1; id < b.nextUserID; id++ {
		for _, a := range b.accounts {
			if a.ID == id {
				list = append(list, userJSON(a))
			}
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"users": list})
}

func (b *Backend) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for username, a := range b.accounts {
		if a.ID == id {
			delete(b.accounts, username)
			writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "User not found")
}

func (b *Backend) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !readJSON(r, &req) || (req.Role != "admin" && req.Role != "user") {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if self := b.currentAccount(r); self != nil && self.ID == id {
		writeError(w, http.StatusForbidden, "You cannot change your own role")
		return
	}
	for _, a := range b.accounts {
		if a.ID == id {
			a.Role = req.Role
			writeJSON(w, http.StatusOK, userJSON(a))
			return
		}
	}
	writeError(w, http.StatusNotFound, "User not found")
}

// AddCamera seeds a camera and returns its id.
func (b *Backend) AddCamera(label, ip, src, status string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addCameraLocked(label, ip, src, status)
}

func (b *Backend) addCameraLocked(label, ip, src, status string) int {
	id := b.nextCameraID
	b.nextCameraID++
	now := NowTimeFunc().UTC().Format("2006-01-02T15:04:05.000000")
	b.cameras[id] = map[string]any{
		"id":         id,
		"label":      label,
		"ip":         ip,
		"src":        src,
		"status":     status,
		"created_at": now,
		"updated_at": now,
	}
	return id
}

func (b *Backend) handleListCameras(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := make([]map[string]any, 0, len(b.cameras))
	for id := 1; id < b.nextCameraID; id++ {
		if c, ok := b.cameras[id]; ok {
			list = append(list, c)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) handleAddCamera(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	var req struct {
		Label string `json:"label"`
		IP    string `json:"ip"`
		Src   string `json:"src"`
	}
	if !readJSON(r, &req) || req.Label == "" || req.IP == "" || req.Src == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "label, ip and src are required",
			"errors": map[string]string{"label": "required", "ip": "required", "src": "required"},
		})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.cameras {
		if c["label"] == req.Label || c["ip"] == req.IP {
			writeError(w, http.StatusConflict, "Camera with this label or IP already exists")
			return
		}
	}
	id := b.addCameraLocked(req.Label, req.IP, req.Src, "Inactive")
	writeJSON(w, http.StatusCreated, b.cameras[id])
}

func (b *Backend) handleUpdateCamera(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	var req map[string]any
	if !readJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cameras[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Camera not found")
		return
	}
	if status, ok := req["status"]; ok && status != "Active" && status != "Inactive" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Invalid status", "message": "Status must be Active or Inactive"})
		return
	}
	for _, field := range []string{"label", "ip", "src", "status"} {
		if v, ok := req[field]; ok {
			c[field] = v
		}
	}
	c["updated_at"] = NowTimeFunc().UTC().Format("2006-01-02T15:04:05.000000")
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) handleDeleteCamera(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cameras[id]; !ok {
		writeError(w, http.StatusNotFound, "Camera not found")
		return
	}
	delete(b.cameras, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Camera deleted"})
}

// AddLog seeds a detection log entry.
func (b *Backend) AddLog(cameraID int, cameraLabel, emotion string, confidence float64, at time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := len(b.logs) + 1
	b.logs = append(b.logs, map[string]any{
		"id":           id,
		"camera_id":    cameraID,
		"camera_label": cameraLabel,
		"emotion":      emotion,
		"confidence":   confidence,
		"image_path":   "alerts/alert_" + emotion + ".jpg",
		"timestamp":    at.UTC().Format("2006-01-02T15:04:05.000000"),
	})
	return id
}

func (b *Backend) handleListLogs(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := make([]map[string]any, 0, len(b.logs))
	for _, l := range b.logs {
		if l != nil {
			list = append(list, l)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) findLogLocked(id int) (int, bool) {
	for i, l := range b.logs {
		if l != nil && l["id"] == id {
			return i, true
		}
	}
	return 0, false
}

func (b *Backend) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findLogLocked(pathID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "Log not found")
		return
	}
	b.logs[i] = nil
	writeJSON(w, http.StatusOK, map[string]string{"message": "Log deleted"})
}

func (b *Backend) handleLogImage(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	_, ok := b.findLogLocked(pathID(r))
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Log not found")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xff, 0xd9})
}

func (b *Backend) handleEmotionDetect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if !readJSON(r, &req) || req.Image == "" {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	// An empty frame has no face in it
	if len(req.Image) < 40 {
		writeJSON(w, http.StatusOK, map[string]any{"message": "No face detected"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"label": "happiness", "confidence": 0.875})
}
