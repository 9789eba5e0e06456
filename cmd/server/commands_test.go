package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/scry-scheduler/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `[
	{"state":"review","stability":3,"difficulty":5,"due":"2025-01-02","last_reviewed":"2024-12-30"},
	{"state":"review","stability":20,"difficulty":4,"due":"2025-01-05T09:30:00Z"},
	{"state":"review","stability":1,"difficulty":7,"due":"2024-12-20"},
	{"state":"new","stability":0,"difficulty":0,"due":"2025-01-01"}
]`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeCards(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestForecastCommand(t *testing.T) {
	path := writeCards(t, snapshot)
	args := []string{"forecast", "--cards", path, "--days", "10", "--seed", "42", "--reference-date", "2025-01-01"}

	first, err := execute(t, "", args...)
	require.NoError(t, err)
	second, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same seed, same forecast")

	var resp api.ForecastResponse
	require.NoError(t, json.Unmarshal([]byte(first), &resp))
	assert.Equal(t, uint64(42), resp.Seed)
	assert.Equal(t, "2025-01-01", resp.ReferenceDate)
	require.Len(t, resp.Days, 10)
	assert.Equal(t, "2025-01-10", resp.Days[9].Date)
	assert.GreaterOrEqual(t, resp.Days[0].DueCount, 1, "overdue card is reviewed on the first day")
}

func TestForecastCommandReadsStdin(t *testing.T) {
	out, err := execute(t, "[]", "forecast", "--cards", "-", "--seed", "1")
	require.NoError(t, err)

	var resp api.ForecastResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotNil(t, resp.Days)
	assert.Empty(t, resp.Days)
	assert.Contains(t, out, `"days": []`)
}

func TestForecastCommandErrors(t *testing.T) {
	path := writeCards(t, snapshot)

	tests := []struct {
		name string
		args []string
	}{
		{"missing cards flag", []string{"forecast"}},
		{"horizon beyond maximum", []string{"forecast", "--cards", path, "--days", "5000"}},
		{"negative horizon", []string{"forecast", "--cards", path, "--days", "-3"}},
		{"unknown profile", []string{"forecast", "--cards", path, "--profile", "turbo"}},
		{"retention out of range", []string{"forecast", "--cards", path, "--retention", "0.3"}},
		{"bad reference date", []string{"forecast", "--cards", path, "--reference-date", "01/02/2025"}},
		{"missing file", []string{"forecast", "--cards", filepath.Join(t.TempDir(), "nope.json")}},
		{"malformed file", []string{"forecast", "--cards", writeCards(t, `{"cards":`)}},
		{"unexpected argument", []string{"forecast", "extra", "--cards", path}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, "", tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestMigrateCommandRejectsUnknownCommands(t *testing.T) {
	_, err := execute(t, "", "migrate", "sideways")
	assert.Error(t, err)

	_, err = execute(t, "", "migrate")
	assert.Error(t, err)

	_, err = execute(t, "", "migrate", "up", "down")
	assert.Error(t, err)
}

func TestDatabaseCommandsRequireURL(t *testing.T) {
	if os.Getenv("SCRY_DATABASE_URL") != "" {
		t.Skip("SCRY_DATABASE_URL is set")
	}

	_, err := execute(t, "", "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is empty")

	_, err = execute(t, "", "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is empty")
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("forecast:\n  default_days: 4\n"), 0o600))

	out, err := execute(t, "[]", "forecast", "--config", path, "--cards", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"seed"`)

	_, err = execute(t, "[]", "forecast", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--cards", "-")
	assert.Error(t, err)
}
