package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphbridge/pkg/controller"
	"github.com/matzehuels/graphbridge/pkg/definition"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
	"github.com/matzehuels/graphbridge/pkg/module"
)

var mainID = graph.NewSingleCrumb(definition.NewName("main"))

func exportTestGraph(t *testing.T) Graph {
	t.Helper()
	m, err := module.FromCode("main.gb", "main =\n    a = 1\n    print a\n", nil)
	if err != nil {
		t.Fatalf("FromCode() error: %v", err)
	}
	h, _ := controller.NewHandle(m, mainID)
	nodes, _ := h.GetNodes()
	if err := nodes[0].SetPosition(module.Position{X: 3, Y: 4}); err != nil {
		t.Fatalf("SetPosition() error: %v", err)
	}
	infos, _ := h.ListNodeInfos()
	return FromNodes(mainID, infos, m.Read().Metadata)
}

func TestFromNodes(t *testing.T) {
	g := exportTestGraph(t)
	if g.ID != "main" {
		t.Errorf("ID = %q, want main", g.ID)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(g.Nodes))
	}
	a := g.Nodes[0]
	if a.Kind != "binding" || a.Name != "a" || a.Code != "a = 1" || a.Expression != "1" {
		t.Errorf("node 0 = %+v", a)
	}
	if a.Position == nil || *a.Position != (module.Position{X: 3, Y: 4}) {
		t.Errorf("node 0 position = %v", a.Position)
	}
	if g.Nodes[1].Position != nil {
		t.Errorf("node 1 should have no position")
	}
	if len(g.Edges) != 1 || g.Edges[0].From != a.ID || g.Edges[0].To != g.Nodes[1].ID {
		t.Errorf("edges = %+v", g.Edges)
	}
}

func TestRoundTrip(t *testing.T) {
	g := exportTestGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if len(got.Nodes) != len(g.Nodes) || got.Nodes[0].ID != g.Nodes[0].ID || got.Nodes[1].Code != g.Nodes[1].Code {
		t.Errorf("ImportJSON() = %+v, want %+v", got, g)
	}

	// Rebuild the graph in a fresh module.
	m, _ := module.FromCode("copy.gb", "main = 0", nil)
	h, _ := controller.NewHandle(m, mainID)
	for _, n := range got.Nodes {
		if _, err := h.AddNode(n.NewNodeInfo()); err != nil {
			t.Fatalf("AddNode() error: %v", err)
		}
	}
	n, err := h.GetNode(g.Nodes[0].ID)
	if err != nil {
		t.Fatalf("GetNode() error: %v", err)
	}
	if pos, _ := n.Position(); pos == nil || *pos != (module.Position{X: 3, Y: 4}) {
		t.Errorf("Position() = %v", pos)
	}
	if want := "main =\n    0\n    a = 1\n    print a"; m.Code() != want {
		t.Errorf("code = %q, want %q", m.Code(), want)
	}
}

func TestReadJSONErrors(t *testing.T) {
	const id1 = "6f9619ff-8b86-d011-b42d-00cf4fc964ff"
	const id2 = "7f9619ff-8b86-d011-b42d-00cf4fc964ff"

	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"nodes": [`},
		{"missing id", `{"nodes": [{"code": "a"}]}`},
		{"duplicate id", `{"nodes": [{"id": "` + id1 + `", "code": "a"}, {"id": "` + id1 + `", "code": "b"}]}`},
		{"missing code", `{"nodes": [{"id": "` + id1 + `"}]}`},
		{"dangling edge", `{"nodes": [{"id": "` + id1 + `", "code": "a"}], "edges": [{"from": "` + id1 + `", "to": "` + id2 + `"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.json)); !errs.Is(err, errs.ErrCodeInvalidFormat) {
				t.Errorf("ReadJSON() error = %v, want %v", err, errs.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(exportTestGraph(t), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	for _, want := range []string{`"graph": "main"`, `"kind": "binding"`, `"position": {`, `"edges": [`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %s:\n%s", want, buf.String())
		}
	}
}
