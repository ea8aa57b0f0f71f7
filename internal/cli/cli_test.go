package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haytac/message-formatter/internal/config"
	"github.com/haytac/message-formatter/internal/logging"
)

// setupTestAppCfg points the global AppCfg at a temporary database.
func setupTestAppCfg(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := &config.AppConfig{
		DatabasePath: filepath.Join(t.TempDir(), "cli_test.db"),
		Log:          logging.Config{Level: "error", Console: true},
		Server:       config.ServerConfig{DefaultLocation: "https://chat.test/app/lobby"},
	}
	AppCfg = cfg
	t.Cleanup(func() { AppCfg = nil })
	return cfg
}

// executeCommand runs args against a dummy root holding cmds and captures output.
func executeCommand(t *testing.T, stdin string, args []string, cmds ...*cobra.Command) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "root", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(cmds...)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return strings.TrimSpace(buf.String()), err
}

func TestRoomCmd(t *testing.T) {
	setupTestAppCfg(t)

	out, err := executeCommand(t, "", []string{"room", "list"}, NewRoomCmd())
	require.NoError(t, err)
	assert.Equal(t, "No rooms configured.", out)

	out, err = executeCommand(t, "", []string{"room", "add", "general", "--name", "General"}, NewRoomCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Room '#general' added with ID:")

	_, err = executeCommand(t, "", []string{"room", "add", "general"}, NewRoomCmd())
	assert.Error(t, err)

	out, err = executeCommand(t, "", []string{"room", "list"}, NewRoomCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Slug: #general, Name: General")

	_, err = executeCommand(t, "", []string{"room", "rm", "general"}, NewRoomCmd())
	require.NoError(t, err)
	_, err = executeCommand(t, "", []string{"room", "rm", "general"}, NewRoomCmd())
	assert.Error(t, err)
}

func TestEmoteAndRuleCmds(t *testing.T) {
	setupTestAppCfg(t)

	_, err := executeCommand(t, "", []string{"emote", "add", "smile", "/e/smile.png", "--size", "32"}, NewEmoteCmd())
	require.NoError(t, err)
	out, err := executeCommand(t, "", []string{"emote", "list"}, NewEmoteCmd())
	require.NoError(t, err)
	assert.Equal(t, ":smile: /e/smile.png (size 32)", out)

	_, err = executeCommand(t, "", []string{"rule", "add", "(", "x"}, NewRuleCmd())
	assert.ErrorContains(t, err, "invalid replacement pattern")

	out, err = executeCommand(t, "", []string{"rule", "add", "brb", "be right back"}, NewRuleCmd())
	require.NoError(t, err)
	assert.Equal(t, "Rule added with ID: 1", out)

	out, err = executeCommand(t, "", []string{"rule", "list"}, NewRuleCmd())
	require.NoError(t, err)
	assert.Contains(t, out, `Pattern: "brb", Template: "be right back"`)

	_, err = executeCommand(t, "", []string{"rule", "rm", "abc"}, NewRuleCmd())
	assert.ErrorContains(t, err, "invalid rule ID")
	_, err = executeCommand(t, "", []string{"rule", "rm", "1"}, NewRuleCmd())
	require.NoError(t, err)
}

const testCatalog = `rooms:
  - slug: general
    name: General
emotes:
  - key: smile
    image_url: /e/smile.png
replacements:
  - pattern: brb
    template: be right back
`

func TestCatalogImportExportAndFormat(t *testing.T) {
	setupTestAppCfg(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	out, err := executeCommand(t, "", []string{"catalog", "import", path}, NewCatalogCmd())
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 rooms, 1 emotes, 1 replacement rules.", out)

	out, err = executeCommand(t, "", []string{"catalog", "export"}, NewCatalogCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "slug: general")
	assert.Contains(t, out, "image_url: /e/smile.png")
	assert.Contains(t, out, "position: 0")

	out, err = executeCommand(t, "", []string{"format", "@alice brb #general :smile:"}, NewFormatCmd())
	require.NoError(t, err)
	assert.Equal(t, `<strong>@alice</strong> be right back <a href="#!/room/1">&#35;general</a> `+
		`<img class="emote" src="/e/smile.png" title=":smile:" alt=":smile:" width="20" height="20" />`, out)

	out, err = executeCommand(t, "upload://f/1.txt\n", []string{"format"}, NewFormatCmd())
	require.NoError(t, err)
	assert.Equal(t, `<a href="https://chat.test/app/f/1.txt" target="_blank">https://chat.test/app/f/1.txt</a>`, out)

	_, err = executeCommand(t, "", []string{"format", "--location", "nope", "hi"}, NewFormatCmd())
	assert.Error(t, err)
}

func TestCatalogImport_RejectsDuplicatesAtomically(t *testing.T) {
	setupTestAppCfg(t)

	doc := "rooms:\n  - slug: a\n  - slug: a\nemotes:\n  - key: k\n    image_url: /k.png\n"
	_, err := executeCommand(t, doc, []string{"catalog", "import", "-"}, NewCatalogCmd())
	require.Error(t, err)

	out, err := executeCommand(t, "", []string{"emote", "list"}, NewEmoteCmd())
	require.NoError(t, err)
	assert.Equal(t, "No emotes configured.", out)

	_, err = executeCommand(t, "bogus: 1\n", []string{"catalog", "import", "-"}, NewCatalogCmd())
	assert.ErrorContains(t, err, "failed to parse catalog")
}

func TestDbBackupCmd(t *testing.T) {
	cfg := setupTestAppCfg(t)
	_, err := executeCommand(t, "", []string{"room", "add", "general"}, NewRoomCmd())
	require.NoError(t, err)

	backupPath := filepath.Join(t.TempDir(), "backup.db")
	out, err := executeCommand(t, "", []string{"db", "backup", "-o", backupPath}, NewDbCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Database backup successful.")
	assert.FileExists(t, backupPath)

	_, err = executeCommand(t, "", []string{"room", "rm", "general"}, NewRoomCmd())
	require.NoError(t, err)

	out, err = executeCommand(t, "no\n", []string{"db", "restore", backupPath}, NewDbCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Restore cancelled.")

	_, err = executeCommand(t, "", []string{"db", "restore", "-y", backupPath}, NewDbCmd())
	require.NoError(t, err)

	out, err = executeCommand(t, "", []string{"room", "list"}, NewRoomCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Slug: #general")
	assert.Equal(t, cfg, AppCfg)
}

func TestOpenDB_RequiresConfig(t *testing.T) {
	AppCfg = nil
	_, err := openDB()
	assert.Error(t, err)
}
