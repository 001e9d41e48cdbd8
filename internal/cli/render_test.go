package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphbridge/pkg/controller"
	"github.com/matzehuels/graphbridge/pkg/graph"
	gbio "github.com/matzehuels/graphbridge/pkg/io"
)

const testCode = "main =\n    a = 1\n    print a\n\nhelper x =\n    x + 1\n"

// newTestCLI returns a CLI whose module store and render cache live in
// temporary directories, with main.gb holding testCode.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.cfg.Store.Dir = t.TempDir()
	c.cfg.Cache.Dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(c.cfg.Store.Dir, "main.gb"), []byte(testCode), 0644); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRunRenderDOT(t *testing.T) {
	c := newTestCLI(t)
	out := filepath.Join(t.TempDir(), "main.dot")

	err := c.runRender(context.Background(), "main.gb", "main", renderOpts{output: out, format: formatDOT})
	if err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph", `"a = 1"`, `"print a"`, `label="a"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("DOT output missing %s:\n%s", want, data)
		}
	}
}

func TestRunRenderErrors(t *testing.T) {
	c := newTestCLI(t)
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "out")

	tests := []struct {
		name   string
		module string
		graph  string
		format string
	}{
		{"bad format", "main.gb", "main", "pdf"},
		{"missing module", "nope.gb", "main", formatDOT},
		{"missing graph", "main.gb", "nope", formatDOT},
		{"empty graph id", "main.gb", "", formatDOT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.runRender(ctx, tt.module, tt.graph, renderOpts{output: out, format: tt.format})
			if err == nil {
				t.Error("runRender() should fail")
			}
		})
	}
}

func TestRenderSVGUsesCache(t *testing.T) {
	c := newTestCLI(t)
	ctx := context.Background()
	dot := "digraph G {\n  a -> b;\n}\n"
	id, err := graph.ParseID("main")
	if err != nil {
		t.Fatal(err)
	}

	first, cached, err := c.renderSVG(ctx, id, 2, dot, false)
	if err != nil {
		t.Fatalf("renderSVG() error: %v", err)
	}
	if cached {
		t.Error("first render should not be cached")
	}
	second, cached, err := c.renderSVG(ctx, id, 2, dot, false)
	if err != nil {
		t.Fatalf("renderSVG() error: %v", err)
	}
	if !cached {
		t.Error("second render should be cached")
	}
	if string(first) != string(second) {
		t.Error("cached render differs from the original")
	}

	if _, cached, _ := c.renderSVG(ctx, id, 2, dot, true); cached {
		t.Error("--no-cache render should not be cached")
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		id     string
		format string
		want   string
	}{
		{"main", "svg", "main.svg"},
		{"main.helper", "dot", "main.helper.dot"},
		{"main.(Int.=)", "svg", "main.Int.=.svg"},
	}
	for _, tt := range tests {
		id, err := graph.ParseID(tt.id)
		if err != nil {
			t.Fatalf("ParseID(%q) error: %v", tt.id, err)
		}
		if got := defaultOutput(id, tt.format); got != tt.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.id, tt.format, got, tt.want)
		}
	}
}

func TestImportNodes(t *testing.T) {
	c := newTestCLI(t)
	ctx := context.Background()

	reg, src, err := c.openGraph(ctx, "main.gb", "main")
	if err != nil {
		t.Fatalf("openGraph() error: %v", err)
	}
	defer reg.Close()
	infos, _ := src.ListNodeInfos()
	exported := gbio.FromNodes(src.ID(), infos, src.Module().Read().Metadata)

	dst, err := reg.SetCode(ctx, "copy.gb", "main =\n    start = 0\n")
	if err != nil {
		t.Fatalf("SetCode() error: %v", err)
	}
	mainID, _ := graph.ParseID("main")
	h, err := controller.NewHandle(dst, mainID)
	if err != nil {
		t.Fatalf("NewHandle() error: %v", err)
	}

	added, err := importNodes(h, exported)
	if err != nil {
		t.Fatalf("importNodes() error: %v", err)
	}
	if added != 2 {
		t.Errorf("importNodes() added %d, want 2", added)
	}
	want := "main =\n    start = 0\n    a = 1\n    print a\n"
	if got := dst.Code(); got != want {
		t.Errorf("code = %q, want %q", got, want)
	}

	// Importing the same identities again stops at the first duplicate.
	if added, err := importNodes(h, exported); err == nil || added != 0 {
		t.Errorf("importNodes() again = %d, %v; want 0 and an error", added, err)
	}
}
