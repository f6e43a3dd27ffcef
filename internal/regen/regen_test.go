package regen

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/preplabs/prep/internal/registry"
	"github.com/spf13/afero"
)

type call struct {
	dir  string
	tool string
}

type fakeRunner struct {
	calls []call
	err   error
}

func (r *fakeRunner) Run(dir, tool string) error {
	r.calls = append(r.calls, call{dir, tool})
	return r.err
}

var (
	older = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	newer = time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
)

func writeAt(t *testing.T, fs afero.Fs, path, content string, mtime time.Time) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func newRegenerator(fs afero.Fs, run *fakeRunner) *Regenerator {
	return &Regenerator{Fs: fs, Run: run, Out: &bytes.Buffer{}}
}

func mod(name string) []registry.Module {
	return []registry.Module{{Name: name}}
}

func TestRegenerate_MissingArtifact(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "/tree/modules/xml/configure.ac", "AC_INIT\n", older)

	run := &fakeRunner{}
	if err := newRegenerator(fs, run).Regenerate("/tree", mod("xml")); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	if len(run.calls) != 1 || run.calls[0].tool != "autoconf" {
		t.Errorf("calls = %v, want one autoconf run", run.calls)
	}
}

func TestRegenerate_CurrentArtifactSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "/tree/modules/xml/configure.ac", "AC_INIT\n", older)
	writeAt(t, fs, "/tree/modules/xml/m4/extra.m4", "", older)
	writeAt(t, fs, "/tree/ac_common.m4", "", older)
	writeAt(t, fs, "/tree/modules/xml/configure", "#!/bin/sh\n", newer)

	run := &fakeRunner{}
	if err := newRegenerator(fs, run).Regenerate("/tree", mod("xml")); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if len(run.calls) != 0 {
		t.Errorf("current artifact regenerated: %v", run.calls)
	}
}

func TestRegenerate_ArtifactSameAgeAsInputsIsCurrent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "/tree/modules/xml/configure.ac", "AC_INIT\n", older)
	writeAt(t, fs, "/tree/modules/xml/configure", "#!/bin/sh\n", older)

	run := &fakeRunner{}
	if err := newRegenerator(fs, run).Regenerate("/tree", mod("xml")); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if len(run.calls) != 0 {
		t.Errorf("artifact not older than inputs regenerated: %v", run.calls)
	}
}

func TestRegenerate_StaleTriggers(t *testing.T) {
	tests := []struct {
		name string
		dep  string
	}{
		{"description file newer", "/tree/modules/xml/configure.ac"},
		{"shared macro newer", "/tree/ac_common.m4"},
		{"local aclocal newer", "/tree/modules/xml/aclocal.m4"},
		{"macro dir entry newer", "/tree/modules/xml/m4/extra.m4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeAt(t, fs, "/tree/modules/xml/configure.ac", "AC_INIT\n", older)
			writeAt(t, fs, "/tree/modules/xml/configure", "#!/bin/sh\n", older)
			writeAt(t, fs, tt.dep, "x\n", newer)

			run := &fakeRunner{}
			if err := newRegenerator(fs, run).Regenerate("/tree", mod("xml")); err != nil {
				t.Fatalf("Regenerate() error = %v", err)
			}
			if len(run.calls) != 1 || run.calls[0].tool != "autoconf" {
				t.Errorf("calls = %v, want one autoconf run", run.calls)
			}
		})
	}
}

func TestRegenerate_HeaderDirectiveRunsBothStages(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "/tree/modules/xml/configure.ac",
		"AC_INIT\nAC_CONFIG_HEADERS([config.h])\n", older)

	run := &fakeRunner{}
	if err := newRegenerator(fs, run).Regenerate("/tree", mod("xml")); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	if len(run.calls) != 2 {
		t.Fatalf("calls = %v, want autoheader then autoconf", run.calls)
	}
	if run.calls[0].tool != "autoheader" || run.calls[1].tool != "autoconf" {
		t.Errorf("stage order = %v, want autoheader before autoconf", run.calls)
	}
}

func TestRegenerate_ProcessesRootDescription(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "/tree/configure.ac", "AC_INIT\n", older)

	run := &fakeRunner{}
	if err := newRegenerator(fs, run).Regenerate("/tree", nil); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if len(run.calls) != 1 || run.calls[0].dir != "/tree" {
		t.Errorf("calls = %v, want one run in the tree root", run.calls)
	}
}

func TestRegenerate_SkipsAbsentModules(t *testing.T) {
	fs := afero.NewMemMapFs()

	run := &fakeRunner{}
	if err := newRegenerator(fs, run).Regenerate("/tree", mod("xml")); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if len(run.calls) != 0 {
		t.Errorf("module without description file must be skipped, got %v", run.calls)
	}
}

func TestRegenerate_ToolFailureIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "/tree/modules/xml/configure.ac", "AC_INIT\n", older)
	writeAt(t, fs, "/tree/modules/http/configure.ac", "AC_INIT\n", older)

	run := &fakeRunner{err: errors.New("m4 exploded")}
	err := newRegenerator(fs, run).Regenerate("/tree", append(mod("xml"), mod("http")...))
	if err == nil || !strings.Contains(err.Error(), "m4 exploded") {
		t.Fatalf("Regenerate() error = %v, want wrapped tool failure", err)
	}
	if len(run.calls) != 1 {
		t.Errorf("regeneration must stop at the first failure, got %v", run.calls)
	}
}

func TestRegenerate_ReportsCompletion(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "/tree/modules/xml/configure.ac", "AC_INIT\n", older)

	run := &fakeRunner{}
	var out bytes.Buffer
	g := &Regenerator{Fs: fs, Run: run, Out: &out}
	if err := g.Regenerate("/tree", mod("xml")); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if !strings.Contains(out.String(), "modules/xml") {
		t.Errorf("completion report should name the module dir, got %q", out.String())
	}
}
