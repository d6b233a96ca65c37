package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/pkg/mindmap"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// outlineCommand creates the outline command for interactive browsing.
func (c *CLI) outlineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outline [map.json]",
		Short: "Browse a mind map interactively in the terminal",
		Long: `Browse a mind map interactively in the terminal.

Topics are shown as a collapsible outline. Use the arrow keys to move,
enter or space to expand and collapse, and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := mindmap.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load map %s: %w", args[0], err)
			}

			model := NewOutlineModel(root)
			program := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = program.Run()
			return err
		},
	}
}

// =============================================================================
// OutlineModel - Interactive topic tree browser
// =============================================================================

// outlineRow is one visible line of the outline.
type outlineRow struct {
	topic *mindmap.Topic
	level int
}

// OutlineModel is the bubbletea model for browsing a topic tree.
type OutlineModel struct {
	Root      *mindmap.Topic
	Cursor    int
	Height    int
	Offset    int
	collapsed map[*mindmap.Topic]bool
	rows      []outlineRow
}

// NewOutlineModel creates an outline model with every topic expanded.
func NewOutlineModel(root *mindmap.Topic) OutlineModel {
	m := OutlineModel{
		Root:      root,
		Height:    20,
		collapsed: make(map[*mindmap.Topic]bool),
	}
	m.rebuild()
	return m
}

// rebuild recomputes the visible rows from the collapse state.
func (m *OutlineModel) rebuild() {
	m.rows = m.rows[:0]
	m.appendRows(m.Root, 0)
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
}

func (m *OutlineModel) appendRows(t *mindmap.Topic, level int) {
	m.rows = append(m.rows, outlineRow{topic: t, level: level})
	if m.collapsed[t] {
		return
	}
	for _, child := range t.Children {
		m.appendRows(child, level+1)
	}
}

func (m OutlineModel) Init() tea.Cmd {
	return nil
}

func (m OutlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			t := m.rows[m.Cursor].topic
			if len(t.Children) > 0 {
				m.collapsed[t] = !m.collapsed[t]
				m.rebuild()
			}
		case "left", "h":
			t := m.rows[m.Cursor].topic
			if len(t.Children) > 0 && !m.collapsed[t] {
				m.collapsed[t] = true
				m.rebuild()
			}
		case "right", "l":
			t := m.rows[m.Cursor].topic
			if m.collapsed[t] {
				m.collapsed[t] = false
				m.rebuild()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 5
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m OutlineModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Root.Label))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		marker := "· "
		if len(row.topic.Children) > 0 {
			if m.collapsed[row.topic] {
				marker = "+ "
			} else {
				marker = "- "
			}
		}

		label := row.topic.Label
		if label == "" {
			label = "(untitled)"
		}
		line := cursor + strings.Repeat("  ", row.level) + marker + label

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}
