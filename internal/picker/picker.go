package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitmarks/gitmarks/internal/model"
	"github.com/gitmarks/gitmarks/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// maxVisible caps how many results are rendered at once.
const maxVisible = 15

// Picker is a TUI for filtering and selecting a bookmark. The filter
// re-runs fuzzy search on every keystroke.
type Picker struct {
	store     *model.Store
	input     textinput.Model
	results   []search.BookmarkResult
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker over the store, pre-seeded with the initial
// query.
func New(store *model.Store, query string) Picker {
	input := textinput.New()
	input.Placeholder = "type to filter"
	input.Prompt = "/ "
	input.SetValue(query)
	input.Focus()

	return Picker{
		store:   store,
		input:   input,
		results: search.FuzzySearchBookmarks(store, query),
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit

		case tea.KeyEnter:
			if len(p.results) > 0 {
				p.selected = true
			} else {
				p.cancelled = true
			}
			return p, tea.Quit

		case tea.KeyDown, tea.KeyCtrlN:
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil

		case tea.KeyUp, tea.KeyCtrlP:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.results = search.FuzzySearchBookmarks(p.store, p.input.Value())
		p.cursor = 0
	}
	return p, cmd
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Bookmarks (%d matches)", len(p.results))))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	visible := p.results
	offset := 0
	if len(visible) > maxVisible {
		// Keep the cursor in view.
		if p.cursor >= maxVisible {
			offset = p.cursor - maxVisible + 1
		}
		visible = visible[offset : offset+maxVisible]
	}

	for i, result := range visible {
		cursor := "  "
		style := normalStyle
		if offset+i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := style.Render(result.Bookmark.Title)
		url := urlStyle.Render(result.Bookmark.URL)

		b.WriteString(fmt.Sprintf("%s%s\n", cursor, title))
		b.WriteString(fmt.Sprintf("   %s\n", url))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓: move  Enter: select  Esc: cancel"))

	return b.String()
}

// SelectedBookmark returns the chosen bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Bookmark
	}
	return nil
}

// Cancelled reports whether the user backed out.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
