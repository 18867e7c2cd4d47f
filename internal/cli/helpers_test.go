package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeData unmarshals the data of a JSON CLIResponse into v.
func decodeData(t *testing.T, stdout string, v interface{}) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "ok", resp.Status, stdout)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// decodeError unmarshals the error of a JSON CLIResponse.
func decodeError(t *testing.T, stdout string) CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "error", resp.Status, stdout)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

// writeToyDataset writes a 10-row dataset named toy with one numeric and
// one categorical column, and returns the datasets directory.
func writeToyDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csv := "x,c\n"
	for i := range 10 {
		csv += []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}[i] + "," + []string{"a", "b"}[i%2] + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toy.csv"), []byte(csv), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toy.yaml"),
		[]byte("target_feature: c\nproblem_type: classification\ncategorical_features: [c]\n"), 0o644))
	return dir
}
