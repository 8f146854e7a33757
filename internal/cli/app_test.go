package cli_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/bitrig/internal/cli"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, opts cli.Options) (*cli.App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(dir, "missing.yaml")
	}
	if opts.Dir == "" {
		opts.Dir = filepath.Join(dir, "scenes")
	}
	opts.LogLevel = "error"
	var out bytes.Buffer
	app, err := cli.NewApp(opts, &out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, &out
}

func TestNewApp_ConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bitrig.yaml")
	require.NoError(t, os.WriteFile(path, []byte("order: descending\nbest_effort: true\nstore:\n  dir: from-file\n  format: json\n"), 0644))

	app, _ := newApp(t, cli.Options{ConfigPath: path, Dir: filepath.Join(dir, "override")})
	assert.Equal(t, domain.Descending, app.Config.Order)
	assert.True(t, app.Config.BestEffort)
	assert.Equal(t, "json", app.Config.Store.Format)
	assert.Equal(t, filepath.Join(dir, "override"), app.Config.Store.Dir, "flag wins over file")
	assert.Nil(t, app.Locker, "no redis configured")

	off := false
	app, _ = newApp(t, cli.Options{ConfigPath: path, BestEffort: &off, Order: "ascending"})
	assert.False(t, app.Config.BestEffort)
	assert.Equal(t, domain.Ascending, app.Config.Order)

	_, err := cli.NewApp(cli.Options{ConfigPath: path, Order: "sideways"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = cli.NewApp(cli.Options{ConfigPath: path, LogLevel: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApp_SeedAndBuild(t *testing.T) {
	ctx := context.Background()
	app, out := newApp(t, cli.Options{})

	require.NoError(t, app.Seed(ctx, "demo", false))
	assert.Error(t, app.Seed(ctx, "demo", false), "seed keeps existing scenes")
	require.NoError(t, app.Seed(ctx, "demo", true))

	out.Reset()
	require.NoError(t, app.List(ctx))
	assert.Equal(t, "demo\n", out.String())

	out.Reset()
	require.NoError(t, app.Build(ctx, "demo", "biped", false))
	assert.Contains(t, out.String(), "character biped")
	assert.Contains(t, out.String(), "26 created", "ten joints, eight controls, eight spacers")

	out.Reset()
	require.NoError(t, app.Build(ctx, "demo", "", true))
	assert.Contains(t, out.String(), "0 created, 0 reparented, 0 failed", "stored build is a fixed point")
	assert.Contains(t, out.String(), "biped_skeleton")
	assert.Contains(t, out.String(), "wrist_l_ctl_spacer")

	err := app.Build(ctx, "demo", "villain", false)
	assert.ErrorIs(t, err, domain.ErrNotCharacter)
	err = app.Build(ctx, "nowhere", "", false)
	assert.ErrorIs(t, err, domain.ErrSceneNotFound)
}

func TestApp_BuildFailureStoresProgress(t *testing.T) {
	ctx := context.Background()
	app, out := newApp(t, cli.Options{Order: "descending"})
	require.NoError(t, app.Seed(ctx, "demo", false))

	err := app.Build(ctx, "demo", "biped", false)
	require.ErrorIs(t, err, domain.ErrMissingAncestor)
	assert.Contains(t, out.String(), "✘ arm_l", "arm_l hangs from the spine, built later")

	out.Reset()
	require.NoError(t, app.Graph(ctx, "demo", "biped", true))
	assert.Contains(t, out.String(), "hips_jnt", "root module was stored")
}

func TestApp_Inspection(t *testing.T) {
	ctx := context.Background()
	app, out := newApp(t, cli.Options{})
	require.NoError(t, app.Seed(ctx, "demo", false))

	out.Reset()
	require.NoError(t, app.Modules(ctx, "demo", "biped"))
	assert.Contains(t, out.String(), "1. body (priority 0) root")
	assert.Contains(t, out.String(), "4. leg_l (priority 5)")
	assert.Contains(t, out.String(), "   knee_l")

	out.Reset()
	require.NoError(t, app.Graph(ctx, "demo", "biped", false))
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), "subgraph module_arm_l")

	assert.Error(t, app.Graph(ctx, "demo", "biped", true), "nothing built yet")

	out.Reset()
	require.NoError(t, app.Validate(ctx, "demo", ""))
	assert.Contains(t, out.String(), "✔ biped")
}

func TestApp_Handler(t *testing.T) {
	ctx := context.Background()
	app, _ := newApp(t, cli.Options{})
	require.NoError(t, app.Seed(ctx, "demo", false))

	h, err := app.Handler()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/scenes/demo/characters/biped/build", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `bitrig_artifacts_created_total{kind="spacer"} 8`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestApp_EncryptedStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "scenes")
	t.Setenv(cli.KeyEnv, strings.Repeat("ab", 32))

	app, _ := newApp(t, cli.Options{Dir: dir})
	require.NoError(t, app.Seed(ctx, "vault", false))
	require.NoError(t, app.Build(ctx, "vault", "biped", false))

	raw, err := os.ReadFile(filepath.Join(dir, "vault.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "biped", "scene is sealed at rest")
	assert.Contains(t, string(raw), "__encrypted__")

	t.Setenv(cli.KeyEnv, "not-a-key")
	_, err = cli.NewApp(cli.Options{Dir: dir, ConfigPath: filepath.Join(dir, "none.yaml")}, &bytes.Buffer{})
	assert.Error(t, err)
}
