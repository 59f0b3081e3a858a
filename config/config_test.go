package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/statuscore/engine/rules"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statuscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(newViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "content/core", cfg.ContentDir)
	assert.Equal(t, "saves", cfg.SaveDir)
	assert.Empty(t, cfg.File)
	assert.True(t, cfg.Rules.ExtinguishBurn)
	assert.True(t, cfg.Rules.ThawOnFire)
	assert.Equal(t, rules.DefaultLethalAmount, cfg.Rules.LethalAmount)
	assert.Empty(t, cfg.Rules.Disabled)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
content_dir: mods/frost
scenario: scenarios/marsh.yaml
seed: 99
plain: true
rules:
  extinguish_burn: false
  lethal_amount: 500
  disabled: [wet_drip, hazard_tile]
`)
	cfg, err := Load(newViper(), path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "mods/frost", cfg.ContentDir)
	assert.Equal(t, "scenarios/marsh.yaml", cfg.Scenario)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.True(t, cfg.Plain)
	assert.False(t, cfg.Rules.ExtinguishBurn)
	assert.True(t, cfg.Rules.ThawOnFire)
	assert.Equal(t, 500, cfg.Rules.LethalAmount)
	assert.Equal(t, []string{"wet_drip", "hazard_tile"}, cfg.Rules.Disabled)
}

func TestLoad_WorkingDirFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("statuscore.yaml", []byte("save_dir: elsewhere\n"), 0o644))

	cfg, err := Load(newViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.SaveDir)
	assert.NotEmpty(t, cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "seed: 1\nrules:\n  thaw_on_fire: true\n")
	t.Setenv("STATUSCORE_SEED", "7")
	t.Setenv("STATUSCORE_RULES_THAW_ON_FIRE", "false")
	t.Setenv("STATUSCORE_RULES_DISABLED", "wet_drip,thaw_on_fire")
	t.Setenv("STATUSCORE_JOURNAL_PATH", "/tmp/j.db")

	cfg, err := Load(newViper(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.False(t, cfg.Rules.ThawOnFire)
	assert.Equal(t, []string{"wet_drip", "thaw_on_fire"}, cfg.Rules.Disabled)
	assert.Equal(t, "/tmp/j.db", cfg.JournalPath)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "content_dir: from-file\nseed: 3\n")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("content", "", "")
	flags.Int64("seed", 0, "")
	require.NoError(t, flags.Parse([]string{"--content", "from-flag"}))

	v := newViper()
	require.NoError(t, BindFlags(v, flags))
	cfg, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.ContentDir)
	// unset flags leave the file value alone
	assert.Equal(t, int64(3), cfg.Seed)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(newViper(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config")
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(newViper(), writeFile(t, "seed: [\n"))
		require.Error(t, err)
	})
	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("STATUSCORE_SEED", "lots")
		_, err := Load(newViper(), writeFile(t, "seed: 1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env")
	})
	t.Run("non-positive lethal amount", func(t *testing.T) {
		_, err := Load(newViper(), writeFile(t, "rules:\n  lethal_amount: 0\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lethal_amount")
	})
}

func TestEngineOptions(t *testing.T) {
	cfg := &Config{
		ContentDir: "x",
		Rules: Rules{
			LethalAmount: 42,
			ThawOnFire:   true,
			Disabled:     []string{"wet_drip"},
		},
	}
	opts := cfg.EngineOptions(nil)
	assert.Equal(t, rules.Options{LethalAmount: 42, ThawOnFire: true}, opts.Rules)
	assert.Equal(t, []string{"wet_drip"}, opts.Disabled)

	cfg.Rules.Disabled[0] = "changed"
	assert.Equal(t, "wet_drip", opts.Disabled[0])
}
