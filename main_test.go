//go:build !gui

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metcalfc/peadz/internal/cli"
	"github.com/metcalfc/peadz/internal/state"
)

func newEnv(t *testing.T) *cli.Env {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))

	env, err := cli.NewEnv("", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("NewEnv() error = %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env
}

func TestVersionString(t *testing.T) {
	got := versionString()
	if !strings.HasPrefix(got, version) {
		t.Errorf("versionString() = %q, want prefix %q", got, version)
	}
	if !strings.Contains(got, "commit: "+commit) {
		t.Errorf("versionString() = %q, missing commit", got)
	}
}

func TestTUIOptions(t *testing.T) {
	env := newEnv(t)

	opts, err := tuiOptions(env)
	if err != nil {
		t.Fatalf("tuiOptions() error = %v", err)
	}
	if opts.Catalog != env.Catalog {
		t.Error("tuiOptions() should pass the env catalog")
	}
	if _, ok := opts.Marks.(*state.JSONStore); !ok {
		t.Errorf("tuiOptions() marks = %T, want *state.JSONStore", opts.Marks)
	}
	if opts.DefaultFolder != "Unfiled" {
		t.Errorf("tuiOptions() default folder = %q, want Unfiled", opts.DefaultFolder)
	}
	if !opts.BookMode {
		t.Error("tuiOptions() book mode should default to on")
	}
}

func TestTUIOptionsPreferencesFallback(t *testing.T) {
	t.Setenv("PEADZ_MARKS_BACKEND", "preferences")
	env := newEnv(t)

	opts, err := tuiOptions(env)
	if err != nil {
		t.Fatalf("tuiOptions() error = %v", err)
	}
	if _, ok := opts.Marks.(*state.JSONStore); !ok {
		t.Errorf("tuiOptions() marks = %T, want *state.JSONStore", opts.Marks)
	}
}
