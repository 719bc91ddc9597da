package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sipsociety/sipcms/internal/config"
)

func setEnvForTest(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOME",
		"XDG_CONFIG_HOME",
		"SIPCMS_DB_PATH",
		"SIPCMS_IMPORT_CONCURRENCY",
		"SIPCMS_SUMMARY_LENGTH",
		"SIPCMS_LOG_LEVEL",
		"SIPCMS_LOG_FILE",
	} {
		unsetEnvForTest(t, key)
	}
}

func writeConfigFile(t *testing.T, home string, body string) string {
	t.Helper()
	path := filepath.Join(home, ".config", "sipcms", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestRootCommand_DBFlagOverridesEnvAndConfig(t *testing.T) {
	clearConfigEnv(t)
	home := t.TempDir()
	setEnvForTest(t, "HOME", home)

	configDB := filepath.Join(t.TempDir(), "from-config.db")
	writeConfigFile(t, home, `db_path = "`+configDB+`"`+"\n")

	envDB := filepath.Join(t.TempDir(), "from-env.db")
	setEnvForTest(t, "SIPCMS_DB_PATH", envDB)

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBPath != envDB {
		t.Fatalf("LoadConfig DBPath = %q, want %q", cfg.DBPath, envDB)
	}

	flagDB := filepath.Join(t.TempDir(), "from-flag.db")
	root := NewRootCmd(cfg)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--db", flagDB, "get", "stats", "-o", "json"})

	if err := root.Execute(); err != nil {
		t.Fatalf("root.Execute: %v (stderr: %s)", err, stderr.String())
	}

	if _, err := os.Stat(flagDB); err != nil {
		t.Fatalf("expected flag DB at %q: %v", flagDB, err)
	}
	if _, err := os.Stat(envDB); !os.IsNotExist(err) {
		t.Fatalf("expected env DB not to be opened, stat err: %v", err)
	}
	if _, err := os.Stat(configDB); !os.IsNotExist(err) {
		t.Fatalf("expected config DB not to be opened, stat err: %v", err)
	}
	if !strings.Contains(stdout.String(), `"blocks": 0`) {
		t.Fatalf("unexpected stats output: %s", stdout.String())
	}
}

func TestRootCommand_SanitizeDoesNotOpenDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "sipcms.db")
	stdout, _, err := runCLIWithInput(t, dbPath, `<p>Hi</p>`, "sanitize")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if stdout != "Hi<br />\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); !os.IsNotExist(err) {
		t.Fatalf("sanitize should not create the database dir, stat err: %v", err)
	}
}

func TestRootCommand_InvalidFlagsMapToInvalidInput(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sipcms.db")
	tests := [][]string{
		{"get", "stats", "-o", "yaml"},
		{"get", "stats", "--log-level", "loud"},
		{"get", "blocks", "--status", "dirty"},
		{"render", "--format", "pdf"},
		{"get", "block", "abc"},
	}
	for _, args := range tests {
		_, _, err := runCLIWithInput(t, dbPath, "", args...)
		if err == nil {
			t.Fatalf("%v: expected error", args)
		}
		if code := ErrorExitCode(err); code != exitInvalidInput {
			t.Fatalf("%v: exit code = %d, want %d (%v)", args, code, exitInvalidInput, err)
		}
		if !strings.HasPrefix(FormatError(err), "Error [invalid-input]:") {
			t.Fatalf("%v: unexpected formatted error %q", args, FormatError(err))
		}
	}
}

func TestRootCommand_LogFileReceivesImportSummary(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sipcms.db")
	cfg := testConfig(dbPath)
	cfg.LogFile = filepath.Join(dir, "sipcms.log")

	exportPath := writeExport(t, `[{"page": "home", "key": "hero", "field": "title", "html": "Hi"}]`)
	root := NewRootCmd(cfg)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--db", dbPath, "--log-level", "info", "import", exportPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("import: %v (stderr: %s)", err, stderr.String())
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"import finished"`) {
		t.Fatalf("log file missing import summary: %s", data)
	}
	if !strings.Contains(stderr.String(), "import finished") {
		t.Fatalf("console log missing import summary: %s", stderr.String())
	}
}
