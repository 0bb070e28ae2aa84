package apiclient_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PalashJyoti/mindsight-client/apiclient"
	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/internal/fakebackend"
	"github.com/PalashJyoti/mindsight-client/internal/utils"
	"github.com/PalashJyoti/mindsight-client/users"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("login then code issues a token", func(t *testing.T) {
		f := setupTestFixture(t)

		resp, err := f.client.Auth().Login(ctx, adminUsername, adminPassword)
		require.NoError(t, err)
		require.Equal(t, "2FA required", resp.Message)

		token, err := f.client.Auth().VerifyTOTP(ctx, adminUsername, adminCode)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		u, err := users.DecodeCurrentUser(token)
		require.NoError(t, err)
		require.Equal(t, users.RoleAdmin, u.Role)
		require.True(t, u.Is(f.adminID))
	})

	t.Run("wrong code is an authentication failure", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.client.Auth().VerifyTOTP(ctx, adminUsername, "000000")
		apiErr, ok := apiclient.AsAPIError(err)
		require.True(t, ok)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
		require.Equal(t, "Invalid token", apiErr.ServerMessage())
		require.Empty(t, f.rec.navigations())
	})

	t.Run("code accepted without token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.IssueToken = false

		token, err := f.client.Auth().VerifyTOTP(ctx, adminUsername, adminCode)
		require.NoError(t, err)
		require.Empty(t, token)
	})

	t.Run("signup returns the qr code", func(t *testing.T) {
		f := setupTestFixture(t)

		qr, err := f.client.Auth().Signup(ctx, " Priya ", "priya", "pw")
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(qr, []byte("\x89PNG")))

		_, err = f.client.Auth().Signup(ctx, "Priya", "priya", "pw")
		require.Equal(t, apiclient.KindConflict, apiclient.KindOf(err))
		apiErr, _ := apiclient.AsAPIError(err)
		require.Equal(t, "User already exists", apiErr.ServerMessage())

		_, err = f.client.Auth().Signup(ctx, "", "priya", "pw")
		require.ErrorIs(t, err, clienterrors.ErrMissingField)
	})

	t.Run("password reset", func(t *testing.T) {
		f := setupTestFixture(t)

		err := f.client.Auth().ResetPassword(ctx, userUsername, "new-pass")
		require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))

		require.NoError(t, f.client.Auth().VerifyTOTPForReset(ctx, userUsername, userCode))
		require.NoError(t, f.client.Auth().ResetPassword(ctx, userUsername, "new-pass"))
		require.True(t, f.backend.PasswordMatches(userUsername, "new-pass"))

		err = f.client.Auth().VerifyTOTPForReset(ctx, "nobody", userCode)
		require.Equal(t, apiclient.KindNotFound, apiclient.KindOf(err))
	})

	t.Run("logout clears the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)

		require.NoError(t, f.client.Auth().Logout(ctx))
		token, _ := f.store.Token()
		require.Empty(t, token)
		u, _ := f.store.User()
		require.Nil(t, u)
	})

	t.Run("failed logout keeps the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)
		f.backend.Inject("POST /api/auth/logout", fakebackend.Fault{Status: http.StatusInternalServerError, Count: 1})

		require.Error(t, f.client.Auth().Logout(ctx))
		token, _ := f.store.Token()
		require.NotEmpty(t, token)
	})
}

func TestCameraService(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.signIn(t, adminUsername)

	cam, err := f.client.Cameras().Add(ctx, " Lobby ", "10.0.0.5", "rtsp://10.0.0.5/stream")
	require.NoError(t, err)
	require.Equal(t, "Lobby", cam.Label)
	require.Equal(t, apiclient.CameraInactive, cam.Status)
	require.False(t, cam.CreatedAt.IsZero())

	_, err = f.client.Cameras().Add(ctx, "Lobby", "10.0.0.6", "rtsp://10.0.0.6/stream")
	require.Equal(t, apiclient.KindConflict, apiclient.KindOf(err))

	_, err = f.client.Cameras().Add(ctx, "Gate", "", "rtsp://x")
	require.ErrorIs(t, err, clienterrors.ErrMissingField)

	active := apiclient.CameraActive
	updated, err := f.client.Cameras().Update(ctx, cam.ID, apiclient.CameraUpdate{Status: &active})
	require.NoError(t, err)
	require.Equal(t, apiclient.CameraActive, updated.Status)
	require.Equal(t, "Lobby", updated.Label)

	bogus := apiclient.CameraStatus("Broken")
	_, err = f.client.Cameras().Update(ctx, cam.ID, apiclient.CameraUpdate{Status: &bogus})
	require.Equal(t, apiclient.KindSemantic, apiclient.KindOf(err))
	require.Equal(t, "Status must be Active or Inactive", apiclient.Message(err))

	list, err := f.client.Cameras().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, apiclient.CameraActive, list[0].Status)

	require.NoError(t, f.client.Cameras().Delete(ctx, cam.ID))
	err = f.client.Cameras().Delete(ctx, cam.ID)
	require.Equal(t, apiclient.KindNotFound, apiclient.KindOf(err))

	require.ErrorIs(t, f.client.Cameras().Delete(ctx, 0), clienterrors.ErrInvalidID)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)

		list, err := f.client.Users().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, adminUsername, list[0].Username)
		require.Equal(t, users.RoleAdmin, list[0].Role)
		require.Nil(t, list[0].LastLogin)
	})

	t.Run("change role", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)

		u, err := f.client.Users().ChangeRole(ctx, f.userID, users.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, users.RoleAdmin, u.Role)
	})

	t.Run("own role is refused locally", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)

		_, err := f.client.Users().ChangeRole(ctx, f.adminID, users.RoleUser)
		require.ErrorIs(t, err, clienterrors.ErrOwnRole)
		require.Zero(t, f.backend.Calls("PUT /api/auth/users/{id}/role"))
	})

	t.Run("own role refused by backend", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)
		require.NoError(t, f.store.SetUser(nil))

		_, err := f.client.Users().ChangeRole(ctx, f.adminID, users.RoleUser)
		require.ErrorIs(t, err, clienterrors.ErrOwnRole)
		require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))
	})

	t.Run("delete", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t, adminUsername)

		require.NoError(t, f.client.Users().Delete(ctx, f.userID))
		err := f.client.Users().Delete(ctx, f.userID)
		require.Equal(t, apiclient.KindNotFound, apiclient.KindOf(err))
	})
}

func TestLogServiceAndAnalytics(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.signIn(t, adminUsername)

	at := time.Date(2025, 3, 1, 10, 22, 31, 0, time.UTC)
	f.backend.AddLog(1, "Lobby", "sad", 0.875, at)
	f.backend.AddLog(1, "Lobby", "angry", 0.6, at.Add(time.Minute))
	second := f.backend.AddLog(2, "Gate", "sad", 0.91, at.Add(2*time.Minute))

	logs, err := f.client.Logs().List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.True(t, logs[0].Timestamp.Equal(at))
	require.Equal(t, 0.875, *logs[0].Confidence)

	summary, err := f.client.Analytics().Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, []apiclient.EmotionSummary{{Emotion: "sad", Count: 2}, {Emotion: "angry", Count: 1}}, summary)

	img, contentType, err := f.client.Logs().Image(ctx, second)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", contentType)
	require.NotEmpty(t, img)
	require.Equal(t, f.backend.URL()+"/api/detection_logs/3/image", f.client.Logs().ImageURL(second))

	require.NoError(t, f.client.Logs().Delete(ctx, second))
	logs, err = f.client.Logs().List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	var buf bytes.Buffer
	require.NoError(t, apiclient.ExportCSV(&buf, logs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{
		"id,timestamp,camera_id,camera,emotion,confidence",
		"1,2025-03-01T10:22:31Z,1,Lobby,sad,87.50%",
		"2,2025-03-01T10:23:31Z,1,Lobby,angry,60.00%",
	}, lines)
}

func TestAnalyticsService_Detect(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.signIn(t, userUsername)

	d, err := f.client.Analytics().Detect(ctx, apiclient.ImageDataURL("image/png", make([]byte, 64)))
	require.NoError(t, err)
	require.Equal(t, &apiclient.Detection{Label: "happiness", Confidence: 0.875}, d)

	d, err = f.client.Analytics().Detect(ctx, apiclient.ImageDataURL("", nil))
	require.NoError(t, err)
	require.Nil(t, d)

	_, err = f.client.Analytics().Detect(ctx, "not-a-data-url")
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	logs := []apiclient.DetectionLog{
		{Emotion: "Fear"}, {Emotion: "anger"}, {Emotion: " fear "}, {Emotion: ""}, {Emotion: "disgust"},
	}
	require.Equal(t, []apiclient.EmotionSummary{
		{Emotion: "fear", Count: 2},
		{Emotion: "anger", Count: 1},
		{Emotion: "disgust", Count: 1},
	}, apiclient.Summarize(logs))
	require.Empty(t, apiclient.Summarize(nil))
}

func TestFormatConfidence(t *testing.T) {
	require.Equal(t, "87.50%", apiclient.FormatConfidence(0.875))
	require.Equal(t, "100.00%", apiclient.FormatConfidence(1))
	require.Equal(t, "0.00%", apiclient.FormatConfidence(0))
	require.Equal(t, "33.33%", apiclient.FormatConfidence(0.33333))
}

func TestExportCSV_MissingFields(t *testing.T) {
	var buf bytes.Buffer
	err := apiclient.ExportCSV(&buf, []apiclient.DetectionLog{{ID: 7, CameraLabel: "Gate, north", Confidence: utils.Ptr(0.5)}})
	require.NoError(t, err)
	require.Equal(t, "id,timestamp,camera_id,camera,emotion,confidence\n7,,0,\"Gate, north\",,50.00%\n", buf.String())
}
