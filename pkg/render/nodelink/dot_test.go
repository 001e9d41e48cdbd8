package nodelink

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/definition"
	"github.com/matzehuels/graphbridge/pkg/graph"
	"github.com/matzehuels/graphbridge/pkg/node"
)

func testNodes(t *testing.T) []node.Info {
	t.Helper()
	m := ast.MustParse("main =\n    a = 1\n    print a\n")
	def, ok := definition.FindInModule(m, definition.NewName("main"))
	if !ok {
		t.Fatal("main not found")
	}
	return graph.FromDefinition(def).Nodes()
}

func TestToDOT(t *testing.T) {
	nodes := testNodes(t)
	dot := ToDOT(nodes, Options{})

	a, p := nodes[0].ID().String(), nodes[1].ID().String()
	for _, want := range []string{
		"digraph G {",
		fmt.Sprintf("%q [label=%q, fillcolor=lightyellow];", a, "a = 1"),
		fmt.Sprintf("%q [label=%q];", p, "print a"),
		fmt.Sprintf("%q -> %q [label=%q];", a, p, "a"),
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	nodes := testNodes(t)
	dot := ToDOT(nodes, Options{Detailed: true})
	want := fmt.Sprintf("%q", "print a\nexpression "+nodes[1].ID().String())
	if !strings.Contains(dot, want) {
		t.Errorf("ToDOT(Detailed) missing %s in:\n%s", want, dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites tag",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{
			name: "no viewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			in:   `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testNodes(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("RenderSVG() output is not SVG: %.100s", svg)
	}
}
