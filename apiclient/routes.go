package apiclient

// Backend route constants.
// All endpoints the client calls are defined here to keep paths consistent.
const (
	// Auth Routes - Two-step login
	RouteAuthLogin      = "/api/auth/login"
	RouteAuthVerifyTOTP = "/api/auth/verify-totp"
	RouteAuthLogout     = "/api/auth/logout"

	// Auth Routes - Signup & Password Reset
	RouteAuthSignup             = "/api/auth/signup"
	RouteAuthVerifyTOTPForReset = "/api/auth/verify-totp-for-reset"
	RouteAuthResetPassword      = "/api/auth/reset-password"

	// User administration
	RouteUsers    = "/api/auth/users"
	RouteUser     = "/api/auth/users/%d"
	RouteUserRole = "/api/auth/users/%d/role"

	// Cameras
	RouteCameras      = "/api/cameras"
	RouteCameraAdd    = "/api/cameras/add"
	RouteCameraUpdate = "/api/cameras/update/%d"
	RouteCameraDelete = "/api/cameras/delete/%d"
	RouteCameraFeed   = "/api/camera_feed/%d"

	// Detection logs & analytics
	RouteDetectionLogs     = "/api/detection_logs"
	RouteDetectionLog      = "/api/detection_logs/%d"
	RouteDetectionLogImage = "/api/detection_logs/%d/image"
	RouteEmotionDetect     = "/api/emotion-detect"
)
