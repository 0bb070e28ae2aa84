package fakebackend

import (
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
)

func (b *Backend) initRoutes() {
	b.router.Use(b.recordMiddleware, b.faultMiddleware)

	b.router.HandleFunc("/api/auth/signup", b.handleSignup).Methods(http.MethodPost)
	b.router.HandleFunc("/api/auth/login", b.handleLogin).Methods(http.MethodPost)
	b.router.HandleFunc("/api/auth/verify-totp", b.handleVerifyTOTP).Methods(http.MethodPost)
	b.router.HandleFunc("/api/auth/verify-totp-for-reset", b.handleVerifyTOTPForReset).Methods(http.MethodPost)
	b.router.HandleFunc("/api/auth/reset-password", b.handleResetPassword).Methods(http.MethodPost)

	protected := b.router.NewRoute().Subrouter()
	protected.Use(b.requireAuth)
	protected.HandleFunc("/api/auth/logout", b.handleLogout).Methods(http.MethodPost)
	protected.HandleFunc("/api/auth/users", b.handleListUsers).Methods(http.MethodGet)
	protected.HandleFunc("/api/auth/users/{id:[0-9]+}", b.handleDeleteUser).Methods(http.MethodDelete)
	protected.HandleFunc("/api/auth/users/{id:[0-9]+}/role", b.handleChangeRole).Methods(http.MethodPut)
	protected.HandleFunc("/api/cameras", b.handleListCameras).Methods(http.MethodGet)
	protected.HandleFunc("/api/cameras/add", b.handleAddCamera).Methods(http.MethodPost)
	protected.HandleFunc("/api/cameras/update/{id:[0-9]+}", b.handleUpdateCamera).Methods(http.MethodPut)
	protected.HandleFunc("/api/cameras/delete/{id:[0-9]+}", b.handleDeleteCamera).Methods(http.MethodDelete)
	protected.HandleFunc("/api/detection_logs", b.handleListLogs).Methods(http.MethodGet)
	protected.HandleFunc("/api/detection_logs/{id:[0-9]+}", b.handleDeleteLog).Methods(http.MethodDelete)
	protected.HandleFunc("/api/detection_logs/{id:[0-9]+}/image", b.handleLogImage).Methods(http.MethodGet)
	protected.HandleFunc("/api/emotion-detect", b.handleEmotionDetect).Methods(http.MethodPost)
}

func routeKey(r *http.Request) string {
	tmpl := r.URL.Path
	if route := mux.CurrentRoute(r); route != nil {
		if t, err := route.GetPathTemplate(); err == nil {
			tmpl = t
		}
	}
	return r.Method + " " + stripPatterns(tmpl)
}

var routeVarPattern = regexp.MustCompile(`\{(\w+):[^}]+\}`)

// stripPatterns turns "{id:[0-9]+}" into "{id}" so callers use short keys.
func stripPatterns(tmpl string) string {
	return routeVarPattern.ReplaceAllString(tmpl, "{$1}")
}

func (b *Backend) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)
		b.mu.Lock()
		b.calls[key]++
		b.requests[key] = append(b.requests[key], r.Header.Clone())
		hook := b.BeforeHandle
		b.mu.Unlock()
		if hook != nil {
			hook(key)
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)
		b.mu.Lock()
		f, ok := b.faults[key]
		var fault Fault
		if ok && f.Count > 0 {
			f.Count--
			fault = *f
		} else {
			ok = false
		}
		b.mu.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if fault.Drop {
			if hj, isHijacker := w.(http.Hijacker); isHijacker {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return
				}
			}
		}
		writeJSON(w, fault.Status, fault.Body)
	})
}
