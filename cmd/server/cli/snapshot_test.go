package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCommand(t *testing.T) {
	fixture, err := os.ReadFile("../../../internal/infrastructure/testdata/dashboard.json")
	require.NoError(t, err)

	var gotQuery string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer backend.Close()

	t.Setenv("API_URL", backend.URL)
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"snapshot", "--plan", "pro", "--status", "active"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "plan=pro", gotQuery)
	report := out.String()
	assert.Contains(t, report, "15 Jan 2025, 12:30")
	assert.Contains(t, report, "1,250")
	assert.Contains(t, report, "Ada Lovelace")
	assert.Contains(t, report, "?plan=pro")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "shieldboard dev\n", out.String())
}

func TestRootCommandServesByDefault(t *testing.T) {
	cmd, args, err := rootCmd.Find(nil)
	require.NoError(t, err)
	assert.Same(t, rootCmd, cmd)
	assert.Empty(t, args)
	assert.True(t, cmd.Runnable())
	assert.NotNil(t, cmd.Flags().Lookup("port"))
}
