package submodule

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/preplabs/prep/internal/registry"
)

// fakeGit simulates a superproject working tree in memory. Init and Update
// mutate the simulated state the way git would.
type fakeGit struct {
	states   map[string]State
	recorded map[string]string
	urls     map[string]string

	syncCalls   int
	initCalls   [][]string
	updateCalls [][]string

	initErr   error
	updateErr error
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		states:   make(map[string]State),
		recorded: make(map[string]string),
		urls:     make(map[string]string),
	}
}

func (g *fakeGit) RecordedURL(path string) (string, error)   { return g.recorded[path], nil }
func (g *fakeGit) ConfiguredURL(path string) (string, error) { return g.urls[path], nil }

func (g *fakeGit) SyncURLs() error {
	g.syncCalls++
	for path, url := range g.recorded {
		if _, ok := g.urls[path]; ok {
			g.urls[path] = url
		}
	}
	return nil
}

func (g *fakeGit) Status() (map[string]State, error) {
	out := make(map[string]State, len(g.states))
	for k, v := range g.states {
		out[k] = v
	}
	return out, nil
}

func (g *fakeGit) Init(paths []string) error {
	g.initCalls = append(g.initCalls, paths)
	if g.initErr != nil {
		return g.initErr
	}
	for _, p := range paths {
		g.states[p] = StateCurrent
	}
	return nil
}

func (g *fakeGit) Update(paths []string) error {
	g.updateCalls = append(g.updateCalls, paths)
	if g.updateErr != nil {
		return g.updateErr
	}
	for _, p := range paths {
		g.states[p] = StateCurrent
	}
	return nil
}

func (g *fakeGit) mutations() int {
	return g.syncCalls + len(g.initCalls) + len(g.updateCalls)
}

// fakeConfirmer answers a scripted sequence of confirmations.
type fakeConfirmer struct {
	answers   []bool
	questions []string
	err       error
}

func (c *fakeConfirmer) Confirm(question string, def bool) (bool, error) {
	c.questions = append(c.questions, question)
	if c.err != nil {
		return false, c.err
	}
	if len(c.answers) == 0 {
		return def, nil
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

func (c *fakeConfirmer) Choose(question string, options []string, def int) (int, error) {
	return def, c.err
}

func mods(names ...string) []registry.Module {
	out := make([]registry.Module, len(names))
	for i, n := range names {
		out[i] = registry.Module{Name: n}
	}
	return out
}

func TestReconcile_FetchesUninitializedBatch(t *testing.T) {
	git := newFakeGit()
	git.states["modules/xml"] = StateCurrent
	// http and unit never fetched: http listed by git, unit unknown to git.
	git.states["modules/http"] = StateUninitialized

	confirm := &fakeConfirmer{answers: []bool{true}}
	var out bytes.Buffer
	r := &Reconciler{Git: git, Confirm: confirm, Out: &out}

	known := mods("xml", "http", "unit")
	if err := r.Reconcile(known, known); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(git.initCalls) != 1 {
		t.Fatalf("expected one batch init, got %d", len(git.initCalls))
	}
	want := []string{"modules/http", "modules/unit"}
	if strings.Join(git.initCalls[0], ",") != strings.Join(want, ",") {
		t.Errorf("Init() paths = %v, want %v", git.initCalls[0], want)
	}
	if len(confirm.questions) != 1 {
		t.Errorf("expected a single batch confirmation, got %d", len(confirm.questions))
	}
	if !strings.Contains(out.String(), "modules/http") {
		t.Errorf("expected module list in output, got %q", out.String())
	}
}

func TestReconcile_DecliningSkipsAll(t *testing.T) {
	git := newFakeGit()
	git.states["modules/http"] = StateUninitialized

	confirm := &fakeConfirmer{answers: []bool{false}}
	r := &Reconciler{Git: git, Confirm: confirm, Out: &bytes.Buffer{}}

	known := mods("http")
	if err := r.Reconcile(known, known); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(git.initCalls) != 0 {
		t.Errorf("expected no init after decline, got %d calls", len(git.initCalls))
	}
	if len(git.updateCalls) != 0 {
		t.Errorf("declined uninitialized module must not be treated as stale")
	}
}

func TestReconcile_UpdatesStaleOverFullCatalog(t *testing.T) {
	git := newFakeGit()
	git.states["modules/xml"] = StateCurrent
	git.states["modules/odbc"] = StateStale // outside the target subset

	confirm := &fakeConfirmer{answers: []bool{true}}
	var out bytes.Buffer
	r := &Reconciler{Git: git, Confirm: confirm, Out: &out}

	known := mods("xml", "odbc")
	target := mods("xml")
	if err := r.Reconcile(known, target); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(git.updateCalls) != 1 {
		t.Fatalf("expected one batch update, got %d", len(git.updateCalls))
	}
	if git.updateCalls[0][0] != "modules/odbc" {
		t.Errorf("Update() paths = %v, want modules/odbc", git.updateCalls[0])
	}
}

func TestReconcile_UpToDateReportsWithoutPrompting(t *testing.T) {
	git := newFakeGit()
	git.states["modules/xml"] = StateCurrent

	confirm := &fakeConfirmer{}
	var out bytes.Buffer
	r := &Reconciler{Git: git, Confirm: confirm, Out: &out}

	known := mods("xml")
	if err := r.Reconcile(known, known); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(confirm.questions) != 0 {
		t.Errorf("expected no prompts, got %v", confirm.questions)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("expected up-to-date report, got %q", out.String())
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	git := newFakeGit()
	git.states["modules/http"] = StateUninitialized
	git.states["modules/xml"] = StateStale

	confirm := &fakeConfirmer{answers: []bool{true, true}}
	r := &Reconciler{Git: git, Confirm: confirm, Out: &bytes.Buffer{}}

	known := mods("http", "xml")
	if err := r.Reconcile(known, known); err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	before := git.mutations()

	if err := r.Reconcile(known, known); err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if git.mutations() != before {
		t.Errorf("second run performed %d extra mutating calls", git.mutations()-before)
	}
}

func TestReconcile_URLDriftSyncsWithoutConfirmation(t *testing.T) {
	git := newFakeGit()
	git.states["modules/xml"] = StateCurrent
	git.recorded["modules/xml"] = "https://new.example.com/xml.git"
	git.urls["modules/xml"] = "https://old.example.com/xml.git"

	confirm := &fakeConfirmer{}
	r := &Reconciler{Git: git, Confirm: confirm, Out: &bytes.Buffer{}}

	known := mods("xml")
	if err := r.Reconcile(known, known); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if git.syncCalls != 1 {
		t.Errorf("expected one metadata sync, got %d", git.syncCalls)
	}
	if len(confirm.questions) != 0 {
		t.Errorf("metadata sync must not prompt, got %v", confirm.questions)
	}
}

func TestReconcile_NoDriftNoSync(t *testing.T) {
	git := newFakeGit()
	git.states["modules/xml"] = StateCurrent
	git.recorded["modules/xml"] = "https://example.com/xml.git"
	git.urls["modules/xml"] = "https://example.com/xml.git"

	r := &Reconciler{Git: git, Confirm: &fakeConfirmer{}, Out: &bytes.Buffer{}}

	known := mods("xml")
	if err := r.Reconcile(known, known); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if git.syncCalls != 0 {
		t.Errorf("expected no sync without drift, got %d", git.syncCalls)
	}
}

func TestReconcile_FetchFailureIsFatal(t *testing.T) {
	git := newFakeGit()
	git.states["modules/http"] = StateUninitialized
	git.initErr = errors.New("network down")

	confirm := &fakeConfirmer{answers: []bool{true}}
	r := &Reconciler{Git: git, Confirm: confirm, Out: &bytes.Buffer{}}

	known := mods("http")
	err := r.Reconcile(known, known)
	if err == nil || !strings.Contains(err.Error(), "network down") {
		t.Errorf("Reconcile() error = %v, want wrapped fetch failure", err)
	}
}

func TestReconcile_ConfirmErrorAborts(t *testing.T) {
	git := newFakeGit()
	git.states["modules/http"] = StateUninitialized

	wantErr := errors.New("budget exceeded")
	confirm := &fakeConfirmer{err: wantErr}
	r := &Reconciler{Git: git, Confirm: confirm, Out: &bytes.Buffer{}}

	known := mods("http")
	if err := r.Reconcile(known, known); !errors.Is(err, wantErr) {
		t.Errorf("Reconcile() error = %v, want %v", err, wantErr)
	}
	if git.mutations() != 0 {
		t.Errorf("no mutation may happen after a fatal prompt error")
	}
}

func TestParseStatus(t *testing.T) {
	output := `-6f1a9b modules/http
+3c2d8e modules/xml (v1.2-3-g3c2d8e)
 9e4f11 modules/unit (v1.0)
`
	got := parseStatus(output)

	want := map[string]State{
		"modules/http": StateUninitialized,
		"modules/xml":  StateStale,
		"modules/unit": StateCurrent,
	}
	if len(got) != len(want) {
		t.Fatalf("parseStatus() returned %d entries, want %d", len(got), len(want))
	}
	for path, state := range want {
		if got[path] != state {
			t.Errorf("parseStatus()[%q] = %v, want %v", path, got[path], state)
		}
	}
}

func TestParseStatus_Empty(t *testing.T) {
	if got := parseStatus("\n"); len(got) != 0 {
		t.Errorf("parseStatus() on empty output = %v, want empty", got)
	}
}
