package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	sort.Strings(names)

	want := []string{"add", "browse", "cache", "code", "completion", "export", "graphs", "import", "move", "nodes", "remove", "render", "serve"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("subcommands = %v, want %v", names, want)
	}
}

func TestRootCommandBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[store]\nbackend = \"tape\""), 0644)

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"--config", path, "graphs", "main.gb"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Error("Execute() should fail on an invalid config")
	}
}

func TestCompleteModuleArgs(t *testing.T) {
	c := newTestCLI(t)
	c.configPath = filepath.Join(t.TempDir(), "config.toml")
	cfg := "[store]\ndir = \"" + c.cfg.Store.Dir + "\"\n"
	if err := os.WriteFile(c.configPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	root := c.RootCommand()
	nodes, _, err := root.Find([]string{"nodes"})
	if err != nil {
		t.Fatal(err)
	}

	modules, _ := nodes.ValidArgsFunction(nodes, nil, "")
	if strings.Join(modules, ",") != "main.gb" {
		t.Errorf("module completions = %v, want [main.gb]", modules)
	}
	graphs, _ := nodes.ValidArgsFunction(nodes, []string{"main.gb"}, "")
	if strings.Join(graphs, ",") != "main,helper" {
		t.Errorf("graph completions = %v, want [main helper]", graphs)
	}
}
