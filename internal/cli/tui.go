package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphbridge/pkg/controller"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/node"
	"github.com/matzehuels/graphbridge/pkg/notification"
)

// =============================================================================
// NodeListModel - Interactive graph browser
// =============================================================================

// invalidateMsg reports that the browsed graph changed.
type invalidateMsg struct{}

// subscriptionEndedMsg reports that the graph subscription closed.
type subscriptionEndedMsg struct{}

// NodeListModel is the bubbletea model for browsing and pruning a graph.
type NodeListModel struct {
	Handle controller.Handle
	Nodes  []node.Info
	Meta   module.Metadata
	Cursor int
	Height int
	Offset int
	Err    error

	// Removed counts nodes deleted from the browser.
	Removed int

	sub    *notification.Subscription[controller.Notification]
	onEdit func() error
}

// NewNodeListModel creates a browser over h. Graph notifications arrive on
// sub; onEdit runs after every removal.
func NewNodeListModel(h controller.Handle, sub *notification.Subscription[controller.Notification], onEdit func() error) NodeListModel {
	m := NodeListModel{
		Handle: h,
		Height: 15,
		sub:    sub,
		onEdit: onEdit,
	}
	m.refresh()
	return m
}

func (m NodeListModel) Init() tea.Cmd {
	return waitForNotification(m.sub)
}

// waitForNotification blocks until the next graph notification.
func waitForNotification(sub *notification.Subscription[controller.Notification]) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-sub.C(); !ok {
			return subscriptionEndedMsg{}
		}
		return invalidateMsg{}
	}
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
			}
		case "r":
			m.refresh()
		case "d", "delete":
			m.removeSelected()
		}
		m.scroll()
	case invalidateMsg:
		m.refresh()
		m.scroll()
		return m, waitForNotification(m.sub)
	case subscriptionEndedMsg:
		m.Err = errs.New(errs.ErrCodeDefinitionNotFound, "graph %s is no longer available", m.Handle.ID())
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.scroll()
	}
	return m, nil
}

// refresh reloads the node list from the current module snapshot.
func (m *NodeListModel) refresh() {
	nodes, err := m.Handle.ListNodeInfos()
	if err != nil {
		m.Err = err
		m.Nodes = nil
		return
	}
	m.Err = nil
	m.Nodes = nodes
	m.Meta = m.Handle.Module().Read().Metadata
	if m.Cursor >= len(m.Nodes) {
		m.Cursor = max(len(m.Nodes)-1, 0)
	}
}

func (m *NodeListModel) removeSelected() {
	if len(m.Nodes) == 0 {
		return
	}
	if err := m.Handle.RemoveNode(m.Nodes[m.Cursor].ID()); err != nil {
		m.Err = err
		return
	}
	m.Removed++
	if m.onEdit != nil {
		if err := m.onEdit(); err != nil {
			m.Err = err
		}
	}
	m.refresh()
}

func (m *NodeListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Handle.ID().String()))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(m.Handle.Module().Path()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  d remove  r reload  q quit"))
	b.WriteString("\n\n")

	start := min(m.Offset, len(m.Nodes))
	end := min(start+m.Height, len(m.Nodes))
	b.WriteString(nodeTable(m.Nodes[start:end], m.Meta, m.Cursor-start))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Nodes)), len(m.Nodes))))
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(styleIconError.Render(iconError) + " " + errs.UserMessage(m.Err))
	}
	return b.String()
}

// browseCommand opens the interactive graph browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <module> <graph>",
		Short: "Browse the nodes of a graph interactively",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, h, err := c.openGraph(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer reg.Close()

			sub := h.Subscribe(ctx)
			defer sub.Close()

			model := NewNodeListModel(h, sub, func() error {
				return reg.Save(ctx, h.Module())
			})
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(NodeListModel); ok && m.Removed > 0 {
				printSuccess("Removed %d nodes from %s", m.Removed, StyleHighlight.Render(h.ID().String()))
			}
			return nil
		},
	}
}
