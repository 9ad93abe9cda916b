package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"serve", "migrate"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestConfigFlags_OverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_URL", "redis://env:6379/0")

	flags := &configFlags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse([]string{"--port", "7000", "--env-file", filepath.Join(t.TempDir(), "missing.env")}))

	cfg, err := flags.load(fs)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port, "flag wins over env")
	assert.Equal(t, "warn", cfg.LogLevel, "unset flag keeps env")
	assert.Equal(t, "redis://env:6379/0", cfg.RedisURL)
}

func TestConfigFlags_LoadsDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SESSION_KEY_PREFIX=from_dotenv:\n"), 0o600))
	t.Setenv("SESSION_KEY_PREFIX", "")
	require.NoError(t, os.Unsetenv("SESSION_KEY_PREFIX"))

	flags := &configFlags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse([]string{"--env-file", envFile}))

	cfg, err := flags.load(fs)
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv:", cfg.SessionKeyPrefix)
}

func TestMigrateCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "auth.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"migrate", "--database-file", dbFile, "--env-file", filepath.Join(dir, "none.env")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Migrations completed successfully")

	_, err := os.Stat(dbFile)
	require.NoError(t, err)
}
