package jandiui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testPosts = `[
  {"url": "https://velog.io/@me/go", "category": "tech", "date": "2024-06-01", "title": "Go generics", "platform": "velog"},
  {"url": "https://velog.io/@me/rust", "category": "tech", "date": "2024-06-01", "title": "Rust traits", "platform": "velog"},
  {"url": "https://me.tistory.com/1", "category": "life", "date": "2024-05-30", "title": "Morning run", "platform": "tistory"}
]`

func writeTestConfig(t *testing.T, kind string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`source:
  kind: %s
  db_path: %s
  user_id: %s
calendar:
  locale: en
logging:
  level: error
`, kind, filepath.Join(dir, "posts.db"), uuid.NewString())
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportStatsAndGridCommands(t *testing.T) {
	cfgPath := writeTestConfig(t, "sqlite")
	postsPath := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(postsPath, []byte(testPosts), 0o644))

	out, err := runCLI(t, "", "--config", cfgPath, "import", postsPath)
	require.NoError(t, err)
	require.Equal(t, "imported 3 posts\n", out)

	// Re-importing the same posts replaces them.
	out, err = runCLI(t, testPosts, "--config", cfgPath, "import", "-")
	require.NoError(t, err)
	require.Equal(t, "imported 3 posts\n", out)

	out, err = runCLI(t, "", "--config", cfgPath, "stats", "--expand", "tech")
	require.NoError(t, err)
	require.Contains(t, out, "전체 글     3  (2024.05.30 가입)")
	require.Contains(t, out, "기술/개발")
	require.Contains(t, out, " 66.7%")
	require.Contains(t, out, "Go generics")
	require.Contains(t, out, "Rust traits")
	require.NotContains(t, out, "Morning run")

	out, err = runCLI(t, "", "--config", cfgPath, "grid", "--color", "never", "--width", "120", "--date", "2024-06-01")
	require.NoError(t, err)
	require.Contains(t, out, "June 1, 2024  2 posts  (기술/개발 2)")
	require.Contains(t, out, "▒")
	require.Contains(t, out, "■ 기술/개발  ■ 일상/라이프")
}

func TestCommandLogsCarryCommandPath(t *testing.T) {
	cfgPath := writeTestConfig(t, "sqlite")
	logPath := filepath.Join(t.TempDir(), "jandi.log")
	t.Setenv("JANDI_LOGGING_FILE", logPath)
	t.Setenv("JANDI_LOGGING_FORMAT", "json")

	_, err := runCLI(t, testPosts, "--config", cfgPath, "--log-level", "info", "import", "-")
	require.NoError(t, err)

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(logged), `"command":"jandi import"`)
	require.Contains(t, string(logged), `"component":"import"`)
	require.Contains(t, string(logged), `"posts":3`)
}

func TestGridRejectsUnknownColorMode(t *testing.T) {
	cfgPath := writeTestConfig(t, "sqlite")
	_, err := runCLI(t, "", "--config", cfgPath, "grid", "--color", "sometimes")
	require.ErrorContains(t, err, "must be one of auto, always, never")
}

func TestImportRequiresSQLiteSource(t *testing.T) {
	cfgPath := writeTestConfig(t, "http")
	_, err := runCLI(t, "[]", "--config", cfgPath, "import", "-")
	require.ErrorContains(t, err, "sqlite source")
}

func TestImportRejectsInvalidPosts(t *testing.T) {
	cfgPath := writeTestConfig(t, "sqlite")
	_, err := runCLI(t, `[{"url": "u", "platform": "velog", "date": "yesterday", "category": "tech"}]`,
		"--config", cfgPath, "import", "-")
	require.ErrorContains(t, err, "invalid post")
	require.ErrorContains(t, err, "posts[0].date")
	require.ErrorContains(t, err, "dates are YYYY-MM-DD")
}

func TestRootRejectsUnknownTheme(t *testing.T) {
	cfgPath := writeTestConfig(t, "sqlite")
	_, err := runCLI(t, "", "--config", cfgPath, "--theme", "matrix", "stats")
	require.ErrorContains(t, err, "tui.theme")
}
