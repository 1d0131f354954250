package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KruASe76/look/internal/config"
	"github.com/KruASe76/look/internal/services"
	"github.com/KruASe76/look/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	opts services.Options

	initErr    error
	syncCount  int
	syncErr    error
	meta       model.SearchMeta
	metaErr    error
	publishErr error

	syncedSince time.Time
	published   int
	shutdowns   int
}

func (f *fakeRuntime) Init(context.Context) error { return f.initErr }
func (f *fakeRuntime) Start(context.Context) error { return nil }
func (f *fakeRuntime) Shutdown(context.Context) { f.shutdowns++ }

func (f *fakeRuntime) Sync(_ context.Context, since time.Time) (int, error) {
	f.syncedSince = since
	return f.syncCount, f.syncErr
}

func (f *fakeRuntime) ComputeMeta(context.Context) (model.SearchMeta, error) {
	return f.meta, f.metaErr
}

func (f *fakeRuntime) PublishInvalidation(context.Context) error {
	f.published++
	return f.publishErr
}

// useFake installs rt as the runtime for the duration of the test.
func useFake(t *testing.T, rt *fakeRuntime) {
	t.Helper()
	origLoad, origNew := loadConfig, newRuntime
	loadConfig = func(string) (*config.Config, error) {
		cfg := config.Default()
		cfg.Logging.Console.Enabled = false
		return cfg, nil
	}
	newRuntime = func(_ *config.Config, opts services.Options) runtime {
		rt.opts = opts
		return rt
	}
	t.Cleanup(func() {
		loadConfig, newRuntime = origLoad, origNew
		syncNoInvalidate = false
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "look", rootCmd.Use)
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["sync"])
	assert.True(t, names["meta"])
}

func TestSetup_ConfigError(t *testing.T) {
	useFake(t, &fakeRuntime{})
	loadConfig = func(string) (*config.Config, error) {
		return nil, errors.New("configuration error: bad port")
	}

	_, err := execute(t, "meta", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad port")
}

func TestWithRuntime_InitError(t *testing.T) {
	rt := &fakeRuntime{initErr: model.ErrUnavailable}
	useFake(t, rt)

	_, err := execute(t, "meta", "show")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.Equal(t, 0, rt.shutdowns)
}
