package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphbridge/pkg/controller"
	"github.com/matzehuels/graphbridge/pkg/graph"
	"github.com/matzehuels/graphbridge/pkg/module"
)

func newBrowser(t *testing.T, code string) (NodeListModel, *int) {
	t.Helper()
	m, err := module.FromCode("main.gb", code, nil)
	if err != nil {
		t.Fatalf("FromCode() error: %v", err)
	}
	id, _ := graph.ParseID("main")
	h, err := controller.NewHandle(m, id)
	if err != nil {
		t.Fatalf("NewHandle() error: %v", err)
	}
	saves := 0
	return NewNodeListModel(h, nil, func() error { saves++; return nil }), &saves
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m NodeListModel, msg tea.Msg) NodeListModel {
	next, _ := m.Update(msg)
	return next.(NodeListModel)
}

func TestNodeListNavigation(t *testing.T) {
	m, _ := newBrowser(t, "main =\n    a = 1\n    b = 2\n    print b\n")
	if len(m.Nodes) != 3 {
		t.Fatalf("Nodes = %d, want 3", len(m.Nodes))
	}

	m = update(m, key("k"))
	if m.Cursor != 0 {
		t.Errorf("Cursor after k at top = %d, want 0", m.Cursor)
	}
	m = update(m, key("j"))
	m = update(m, key("j"))
	m = update(m, key("j"))
	if m.Cursor != 2 {
		t.Errorf("Cursor after jjj = %d, want 2", m.Cursor)
	}
	if !strings.Contains(m.View(), "print b") {
		t.Error("View() should list the nodes")
	}
}

func TestNodeListRemove(t *testing.T) {
	m, saves := newBrowser(t, "main =\n    a = 1\n    print a\n")

	m = update(m, key("j"))
	m = update(m, key("d"))
	if m.Err != nil {
		t.Fatalf("remove error: %v", m.Err)
	}
	if m.Removed != 1 || *saves != 1 {
		t.Errorf("Removed = %d, saves = %d; want 1, 1", m.Removed, *saves)
	}
	if len(m.Nodes) != 1 || m.Cursor != 0 {
		t.Errorf("after remove: %d nodes, cursor %d; want 1 node, cursor 0", len(m.Nodes), m.Cursor)
	}

	// The last node of a body cannot be removed.
	m = update(m, key("d"))
	if m.Err == nil {
		t.Error("removing the last node should set Err")
	}
	if m.Removed != 1 {
		t.Errorf("Removed = %d, want 1", m.Removed)
	}
}

func TestNodeListFollowsChanges(t *testing.T) {
	m, _ := newBrowser(t, "main =\n    a = 1\n")
	sub := m.Handle.Subscribe(context.Background())
	defer sub.Close()
	m.sub = sub

	if _, err := m.Handle.AddNode(controller.NewNodeInfo{Expression: "print a", LocationHint: graph.End()}); err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	msg := m.Init()()
	if _, ok := msg.(invalidateMsg); !ok {
		t.Fatalf("Init() command returned %T, want invalidateMsg", msg)
	}
	m = update(m, msg)
	if len(m.Nodes) != 2 {
		t.Errorf("Nodes after invalidate = %d, want 2", len(m.Nodes))
	}

	sub.Close()
	if _, ok := waitForNotification(sub)().(subscriptionEndedMsg); !ok {
		t.Error("closed subscription should end the browser")
	}
}

func TestNodeListQuit(t *testing.T) {
	m, _ := newBrowser(t, "main =\n    a = 1\n")
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestServerURL(t *testing.T) {
	tests := []struct{ addr, want string }{
		{":8080", "http://localhost:8080"},
		{"0.0.0.0:9000", "http://0.0.0.0:9000"},
	}
	for _, tt := range tests {
		if got := serverURL(tt.addr); got != tt.want {
			t.Errorf("serverURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
