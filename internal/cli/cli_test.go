package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"resumefit/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `app:
  logLevel: error
embedding:
  provider: local
  warmup: false
observability:
  enabled: false
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := Execute(context.Background())
	return out.String(), err
}

func TestEvaluateCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)
	resume := writeFile(t, dir, "resume.txt", "3 years of Python development. Experience with Docker and Kubernetes.")
	jd := writeFile(t, dir, "jd.txt", "Requires 5 years of Python experience. Must know Docker.")

	out, err := run(t, "evaluate", resume, jd, "--config", cfg, "--format", "json", "-o", "")
	require.NoError(t, err)

	var result types.FitResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Subset(t, result.MatchedSkills, []string{"docker", "python"})
	assert.InDelta(t, 0.6, result.ExperienceMatchScore, 1e-9)
	assert.Greater(t, result.FitScore, 0.0)
}

func TestEvaluateCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)
	resume := writeFile(t, dir, "resume.txt", "Go engineer with 6 years of experience.")
	jd := writeFile(t, dir, "jd.txt", "We need a Go engineer with 4+ years of experience.")
	output := filepath.Join(dir, "report.md")

	_, err := run(t, "evaluate", resume, jd, "--config", cfg, "--format", "markdown", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Resume Fit Report")
	assert.Contains(t, string(data), "`go`")
}

func TestEvaluateCommandRejectsEmptyResume(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)
	resume := writeFile(t, dir, "resume.txt", "   \n")
	jd := writeFile(t, dir, "jd.txt", "Requires Python.")

	_, err := run(t, "evaluate", resume, jd, "--config", cfg, "--format", "json", "-o", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMPTY_INPUT")
}

func TestEvaluateCommandBadFormat(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)

	_, err := run(t, "evaluate", "a.txt", "b.txt", "--config", cfg, "--format", "xml", "-o", "")
	assert.Error(t, err)
}

func TestSkillsCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)
	doc := writeFile(t, dir, "resume.txt", "Built services in Go and Rust, deployed on Kubernetes.")

	out, err := run(t, "skills", doc, "--config", cfg, "--format", "text", "-o", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: "+doc)
	assert.Contains(t, out, "  - go\n")
	assert.Contains(t, out, "  - kubernetes\n")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "resumefit version dev")
}
