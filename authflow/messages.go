package authflow

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/PalashJyoti/mindsight-client/apiclient"
	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
)

const (
	msgInvalidLogin    = "Invalid login"
	msgInvalidTOTP     = "Invalid TOTP"
	msgLoginNetwork    = "Network error. Please try again."
	msgInvalidResponse = "Invalid server response"

	msgSignupFailed   = "Signup failed."
	msgSignupExists   = "Username already exists."
	msgSignupInvalid  = "Invalid request."
	msgSignupNetwork  = "Something went wrong. Please check your connection and try again."
	msgSignupRequired = "All fields are required"

	msgResetFailed   = "Password reset failed"
	msgResetNetwork  = "Something went wrong. Please try again."
	msgResetComplete = "Password reset successfully"
)

// noResponse reports whether the call failed before a response was read.
func noResponse(apiErr *apiclient.APIError) bool {
	return apiErr.Kind == apiclient.KindConnectivity || apiErr.Kind == apiclient.KindSetup
}

// jsonBody reports whether the error response carried a JSON body
func jsonBody(apiErr *apiclient.APIError) bool {
	return len(apiErr.Body) > 0 && json.Valid(apiErr.Body)
}

// loginFailureText is shown under the password or code field.
func loginFailureText(err error, fallback string) string {
	apiErr, ok := apiclient.AsAPIError(err)
	switch {
	case !ok:
		return msgInvalidResponse
	case noResponse(apiErr):
		return msgLoginNetwork
	case apiErr.ErrorText != "":
		return apiErr.ErrorText
	case !jsonBody(apiErr):
		return msgInvalidResponse
	default:
		return fallback
	}
}

func signupFailureText(err error) string {
	if clienterrors.Is(err, clienterrors.ErrMissingField) {
		return msgSignupRequired
	}
	apiErr, ok := apiclient.AsAPIError(err)
	switch {
	case !ok:
		return msgSignupFailed
	case noResponse(apiErr):
		return msgSignupNetwork
	case !jsonBody(apiErr):
		return msgSignupFailed
	case apiErr.ErrorText != "":
		return apiErr.ErrorText
	case apiErr.Status == http.StatusConflict:
		return msgSignupExists
	case apiErr.Status == http.StatusBadRequest:
		return msgSignupInvalid
	default:
		return fmt.Sprintf("Error: %d", apiErr.Status)
	}
}

func resetFailureText(err error, fallback string) string {
	apiErr, ok := apiclient.AsAPIError(err)
	switch {
	case !ok, noResponse(apiErr), !jsonBody(apiErr):
		return msgResetNetwork
	case apiErr.ErrorText != "":
		return apiErr.ErrorText
	default:
		return fallback
	}
}
