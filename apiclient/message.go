package apiclient

import "net/http"

const (
	msgUnexpected = "An unexpected error occurred."
	msgNetwork    = "Network error. Please check your internet connection."
)

// Message turns an error from the client into a short text for the user.
// It only reads err: nothing is logged and no state changes, so the same
// error always yields the same text.
func Message(err error) string {
	if err == nil {
		return ""
	}

	apiErr, ok := AsAPIError(err)
	if !ok {
		return orDefault(err.Error(), msgUnexpected)
	}

	switch apiErr.Kind {
	case KindConnectivity:
		return msgNetwork
	case KindSetup:
		if apiErr.Err != nil {
			return orDefault(apiErr.Err.Error(), msgUnexpected)
		}
		return msgUnexpected
	}

	switch {
	case apiErr.Status == http.StatusBadRequest:
		return orDefault(apiErr.MessageText, "Invalid request. Please check your input.")
	case apiErr.Status == http.StatusUnauthorized:
		return "Authentication required. Please login again."
	case apiErr.Status == http.StatusForbidden:
		return "You don't have permission to perform this action."
	case apiErr.Status == http.StatusNotFound:
		return "The requested resource was not found."
	case apiErr.Status == http.StatusUnprocessableEntity:
		return orDefault(apiErr.MessageText, "Validation failed. Please check your input.")
	case apiErr.Status == http.StatusTooManyRequests:
		return "Too many requests. Please try again later."
	case apiErr.Status >= 500 && apiErr.Status < 600:
		return "Server error. Please try again later."
	default:
		return orDefault(apiErr.MessageText, msgUnexpected)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
