package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestApp(in io.Reader) (*app, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &app{in: bufio.NewReader(in), stdin: in, out: out}, out
}

func TestPromptSecret(t *testing.T) {
	t.Run("piped input falls back to the line reader", func(t *testing.T) {
		a, out := newTestApp(strings.NewReader("meera\ns3cret-pass\n"))

		username, err := a.prompt("Username")
		require.NoError(t, err)
		require.Equal(t, "meera", username)

		password, err := a.promptSecret("Password")
		require.NoError(t, err)
		require.Equal(t, "s3cret-pass", password)
		require.Equal(t, "Username: Password: ", out.String())
	})

	t.Run("a file that is not a terminal falls back", func(t *testing.T) {
		r, w, err := os.Pipe()
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		_, err = w.WriteString("brand-new\r\n")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		a, _ := newTestApp(r)
		password, err := a.promptSecret("New password")
		require.NoError(t, err)
		require.Equal(t, "brand-new", password)
	})

	t.Run("empty input is io.EOF", func(t *testing.T) {
		a, _ := newTestApp(strings.NewReader(""))
		_, err := a.promptSecret("Password")
		require.ErrorIs(t, err, io.EOF)
	})
}
