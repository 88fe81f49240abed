package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureSeed = `[
  {"id": "P1", "type": "Page", "children": [
    {"id": "S1", "type": "Section", "children": [
      {"id": "F1", "type": "Text Input", "label": "First name"},
      {"id": "F2", "type": "Text Input", "label": "Last name"}
    ]}
  ]},
  {"id": "P2", "type": "Page"}
]`

// setupSeed isolates the test from user config and returns a --seed path.
func setupSeed(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FB_IDS_STYLE", "sequence")
	path := filepath.Join(home, "seed.json")
	if err := os.WriteFile(path, []byte(fixtureSeed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	return runCLIWithInput(t, args, "")
}

func runCLIWithInput(t *testing.T, args []string, stdin string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustData(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	data, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data envelope: %s", out)
	}
	return data
}

func nodeIDs(v any) []string {
	nodes, _ := v.([]any)
	out := []string{}
	for _, n := range nodes {
		m, _ := n.(map[string]any)
		id, _ := m["id"].(string)
		out = append(out, id)
	}
	return out
}

func findNode(v any, id string) map[string]any {
	nodes, _ := v.([]any)
	for _, n := range nodes {
		m, _ := n.(map[string]any)
		if m["id"] == id {
			return m
		}
		if found := findNode(m["children"], id); found != nil {
			return found
		}
	}
	return nil
}

func TestTreeShow(t *testing.T) {
	seed := setupSeed(t)
	out, _, err := runCLI(t, []string{"--seed", seed, "tree", "show"})
	if err != nil {
		t.Fatalf("tree show: %v", err)
	}
	data := mustData(t, out)
	if got := nodeIDs(data["tree"]); strings.Join(got, ",") != "P1,P2" {
		t.Fatalf("roots: %v", got)
	}
	if f1 := findNode(data["tree"], "F1"); f1 == nil || f1["label"] != "First name" {
		t.Fatalf("missing F1: %v", f1)
	}
}

func TestTreeShow_TextFormat(t *testing.T) {
	seed := setupSeed(t)
	out, _, err := runCLI(t, []string{"--seed", seed, "--format", "text", "tree", "show"})
	if err != nil {
		t.Fatalf("tree show: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "First name") || !strings.Contains(s, "F2") {
		t.Fatalf("unexpected text output:\n%s", s)
	}
}

func TestTreeFlatten(t *testing.T) {
	seed := setupSeed(t)
	out, _, err := runCLI(t, []string{"--seed", seed, "tree", "flatten"})
	if err != nil {
		t.Fatalf("tree flatten: %v", err)
	}
	items, _ := mustData(t, out)["items"].([]any)
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	f2, _ := items[3].(map[string]any)
	if f2["id"] != "F2" || f2["parentId"] != "S1" || f2["depth"] != float64(2) || f2["index"] != float64(1) {
		t.Fatalf("unexpected F2 entry: %v", f2)
	}

	out, _, err = runCLI(t, []string{"--seed", seed, "tree", "flatten", "--table"})
	if err != nil {
		t.Fatalf("tree flatten --table: %v", err)
	}
	if !strings.Contains(string(out), "PARENT") {
		t.Fatalf("expected table output:\n%s", out)
	}
}

func TestTreeProject(t *testing.T) {
	seed := setupSeed(t)
	out, _, err := runCLI(t, []string{"--seed", seed, "tree", "project", "--active", "F1", "--over", "F2", "--offset", "-100"})
	if err != nil {
		t.Fatalf("tree project: %v", err)
	}
	p, ok := mustData(t, out)["projection"].(map[string]any)
	if !ok {
		t.Fatalf("expected projection: %s", out)
	}
	if p["depth"] != float64(0) {
		t.Fatalf("expected depth 0, got %v", p["depth"])
	}
	if _, has := p["parentId"]; has {
		t.Fatalf("root projection should have no parent: %v", p)
	}
}

func TestTreeMove(t *testing.T) {
	seed := setupSeed(t)
	out, _, err := runCLI(t, []string{"--seed", seed, "tree", "move", "--active", "F1", "--over", "F2", "--offset", "-100"})
	if err != nil {
		t.Fatalf("tree move: %v", err)
	}
	data := mustData(t, out)
	if data["outcome"] != "committed" {
		t.Fatalf("expected committed, got %v", data["outcome"])
	}
	if got := nodeIDs(data["tree"]); strings.Join(got, ",") != "P1,F1,P2" {
		t.Fatalf("roots: %v", got)
	}

	// The seed itself is untouched.
	b, _ := os.ReadFile(seed)
	if string(b) != fixtureSeed {
		t.Fatalf("seed file was modified")
	}
}

func TestTreeMove_RejectsTemplates(t *testing.T) {
	seed := setupSeed(t)
	_, stderr, err := runCLI(t, []string{"--seed", seed, "tree", "move", "--active", "tpl-page", "--over", "P2"})
	if err == nil || !strings.Contains(string(stderr), "tree add") {
		t.Fatalf("expected hint to use tree add, got %v %s", err, stderr)
	}
}

func TestTreeAdd(t *testing.T) {
	seed := setupSeed(t)
	out, _, err := runCLI(t, []string{"--seed", seed, "tree", "add", "--template", "Section", "--over", "P2", "--offset", "50"})
	if err != nil {
		t.Fatalf("tree add: %v", err)
	}
	data := mustData(t, out)
	p2 := findNode(data["tree"], "P2")
	if got := nodeIDs(p2["children"]); strings.Join(got, ",") != "blk-1" {
		t.Fatalf("expected new block under P2, got %v", got)
	}
	added := findNode(data["tree"], "blk-1")
	if added["type"] != "Section" || added["canHaveChildren"] != true {
		t.Fatalf("unexpected block %v", added)
	}
	if _, has := added["isConstructor"]; has {
		t.Fatalf("finalized block must not be a constructor: %v", added)
	}

	if _, _, err := runCLI(t, []string{"--seed", seed, "tree", "add", "--template", "Signature", "--over", "P2"}); err == nil {
		t.Fatalf("expected unknown template error")
	}
}

func TestTreeEdits(t *testing.T) {
	seed := setupSeed(t)

	out, _, err := runCLI(t, []string{"--seed", seed, "tree", "collapse", "S1"})
	if err != nil {
		t.Fatalf("collapse: %v", err)
	}
	data := mustData(t, out)
	if data["changed"] != true || findNode(data["tree"], "S1")["collapsed"] != true {
		t.Fatalf("unexpected collapse result: %s", out)
	}

	out, _, err = runCLI(t, []string{"--seed", seed, "tree", "remove", "S1"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if findNode(mustData(t, out)["tree"], "F1") != nil {
		t.Fatalf("subtree not removed: %s", out)
	}

	out, _, err = runCLI(t, []string{"--seed", seed, "tree", "rename", "F1", "Given", "name"})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if findNode(mustData(t, out)["tree"], "F1")["label"] != "Given name" {
		t.Fatalf("rename not applied: %s", out)
	}

	out, _, err = runCLI(t, []string{"--seed", seed, "tree", "count", "P1"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if mustData(t, out)["descendants"] != float64(3) {
		t.Fatalf("unexpected count: %s", out)
	}

	if _, _, err := runCLI(t, []string{"--seed", seed, "tree", "remove", "nope"}); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestTreeValidate(t *testing.T) {
	seed := setupSeed(t)
	out, _, err := runCLI(t, []string{"--seed", seed, "tree", "validate"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	data := mustData(t, out)
	if data["valid"] != true || data["blocks"] != float64(5) || data["maxDepth"] != float64(2) {
		t.Fatalf("unexpected validate result: %s", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"id":"a","type":"Page"},{"id":"a","type":"Page"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, stderr, err := runCLI(t, []string{"--seed", bad, "tree", "validate"})
	if err == nil || !strings.Contains(string(stderr), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v %s", err, stderr)
	}
}

func TestGestureReplay(t *testing.T) {
	seed := setupSeed(t)
	script := strings.Join([]string{
		`# move F1 to the top level`,
		`{"type":"start","active":"F1"}`,
		`{"type":"over","active":"F1","over":"F2"}`,
		`{"type":"move","delta":{"x":-100,"y":0}}`,
		``,
		`{"type":"end","active":"F1","over":"F2"}`,
		`{"type":"move","delta":{"x":0,"y":0}}`,
	}, "\n")
	out, _, err := runCLIWithInput(t, []string{"--seed", seed, "gesture", "replay", "-"}, script)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	data := mustData(t, out)
	steps, _ := data["steps"].([]any)
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(steps))
	}
	end, _ := steps[3].(map[string]any)
	if end["event"] != "end" || end["outcome"] != "committed" || end["line"] != float64(6) {
		t.Fatalf("unexpected end step %v", end)
	}
	last, _ := steps[4].(map[string]any)
	if last["error"] == nil {
		t.Fatalf("move after drop should record an error: %v", last)
	}
	if got := nodeIDs(data["tree"]); strings.Join(got, ",") != "P1,F1,P2" {
		t.Fatalf("roots: %v", got)
	}

	if _, _, err := runCLIWithInput(t, []string{"--seed", seed, "gesture", "replay", "--strict", "-"}, `{"type":"move","delta":{"x":1}}`); err == nil {
		t.Fatalf("strict replay should fail on protocol errors")
	}
	if _, _, err := runCLIWithInput(t, []string{"--seed", seed, "gesture", "replay", "-"}, `{"type":"hover"}`); err == nil {
		t.Fatalf("unknown event types should fail")
	}
}

func TestPaletteList(t *testing.T) {
	setupSeed(t)
	out, _, err := runCLI(t, []string{"--format", "text", "palette", "list"})
	if err != nil {
		t.Fatalf("palette list: %v", err)
	}
	for _, want := range []string{"tpl-section", "Multiple Choice", "CONTAINER"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestDocs(t *testing.T) {
	setupSeed(t)
	out, _, err := runCLI(t, []string{"docs"})
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	topics, _ := mustData(t, out)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics: %s", out)
	}

	out, _, err = runCLI(t, []string{"docs", "projection", "--raw"})
	if err != nil || !strings.HasPrefix(string(out), "# Projection") {
		t.Fatalf("docs --raw: %v %.40q", err, out)
	}
	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown topic error")
	}
}

func TestUnknownFormat(t *testing.T) {
	seed := setupSeed(t)
	if _, _, err := runCLI(t, []string{"--seed", seed, "--format", "yaml", "tree", "show"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestPublish(t *testing.T) {
	seed := setupSeed(t)

	out, _, err := runCLI(t, []string{"--seed", seed, "publish", "--title", "Signup"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	md := string(out)
	if !strings.HasPrefix(md, "# Signup") || !strings.Contains(md, "  - **First name** (Text Input)") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}

	dir := filepath.Join(t.TempDir(), "export")
	out, _, err = runCLI(t, []string{"--seed", seed, "publish", "--to", dir})
	if err != nil {
		t.Fatalf("publish --to: %v", err)
	}
	data := mustData(t, out)
	written, _ := data["written"].([]any)
	if len(written) != 3 {
		t.Fatalf("expected form.md and two pages, got %v", written)
	}
	if _, err := os.Stat(filepath.Join(dir, "pages", "P2.md")); err != nil {
		t.Fatalf("missing page file: %v", err)
	}
}

func TestConfig(t *testing.T) {
	seed := setupSeed(t)
	t.Setenv("FB_TUI_GLYPHS", "ascii")

	out, _, err := runCLI(t, []string{"--seed", seed, "config"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	data := mustData(t, out)
	settings, _ := data["settings"].(map[string]any)
	idsCfg, _ := settings["ids"].(map[string]any)
	if idsCfg["style"] != "sequence" {
		t.Fatalf("expected ids.style from env, got %v", settings["ids"])
	}
	tuiCfg, _ := settings["tui"].(map[string]any)
	if tuiCfg["glyphs"] != "ascii" {
		t.Fatalf("expected tui.glyphs from env, got %v", settings["tui"])
	}

	t.Setenv("FB_TUI_GLYPHS", "emoji")
	if _, _, err := runCLI(t, []string{"--seed", seed, "config"}); err == nil {
		t.Fatalf("expected invalid glyph set to fail")
	}
}
