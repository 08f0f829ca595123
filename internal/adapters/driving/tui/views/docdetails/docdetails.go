// Package docdetails shows one search result or document with its metadata.
package docdetails

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// View is the details view. It scrolls over a prebuilt list of lines.
type View struct {
	styles *styles.Styles

	title        string
	lines        []string
	back         messages.ViewType
	scrollOffset int
	width        int
	height       int
}

// NewView creates an empty details view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		back:   messages.ViewSearch,
		width:  80,
		height: 24,
	}
}

// SetResult shows a search result. Esc returns to the search view.
func (v *View) SetResult(r domain.SearchResult) {
	v.title = r.Metadata.Title
	v.back = messages.ViewSearch
	v.scrollOffset = 0

	lines := []string{
		field("Document", r.DocumentID),
		field("File", r.Document.OriginalName),
		field("Type", r.Document.FileType),
		field("Category", r.Metadata.Category),
		field("Source", string(r.Source)),
		field("Collection", r.Collection),
		field("Score", fmt.Sprintf("%.4f", r.Score)),
		field("Chunk", fmt.Sprintf("%d (words %d-%d)",
			r.Metadata.ChunkIndex, r.Metadata.StartWordOffset, r.Metadata.EndWordOffset)),
		field("Uploaded", r.Document.UploadedAt),
	}
	if len(r.Highlights) > 0 {
		lines = append(lines, "", "Highlights:")
		for _, h := range r.Highlights {
			lines = append(lines, "  "+h)
		}
	}
	lines = append(lines, "", "Content:")
	v.lines = append(lines, v.wrap(r.Content)...)
}

// SetDocument shows a document record. Esc returns to the documents view.
func (v *View) SetDocument(d domain.Document) {
	v.title = d.Title
	v.back = messages.ViewDocuments
	v.scrollOffset = 0

	folder := d.FolderID
	if folder == "" {
		folder = "-"
	}
	v.lines = []string{
		field("Document", d.ID),
		field("File", d.OriginalName),
		field("Type", d.MediaType),
		field("Size", fmt.Sprintf("%d bytes", d.ByteSize)),
		field("Category", d.Category),
		field("Owner", d.OwnerID),
		field("Admin", fmt.Sprintf("%t", d.IsAdmin)),
		field("Folder", folder),
		field("Collection", d.CollectionName),
		field("Chunks", fmt.Sprintf("%d", d.ChunkCount)),
		field("Uploaded", d.UploadedAt.Format("2006-01-02 15:04:05")),
	}
}

func field(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

// wrap breaks text into lines no wider than the view.
func (v *View) wrap(text string) []string {
	limit := max(v.width-4, 20)
	var out []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > limit {
			out = append(out, "  "+line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		out = append(out, "  "+line.String())
	}
	return out
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.scrollOffset > 0 {
				v.scrollOffset--
			}
		case "down", "j":
			if v.scrollOffset < v.maxScrollOffset() {
				v.scrollOffset++
			}
		case "esc":
			back := v.back
			return v, func() tea.Msg {
				return messages.ViewChanged{View: back}
			}
		}
	}
	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the details view.
func (v *View) View() string {
	var b strings.Builder

	title := v.title
	if title == "" {
		title = "Details"
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("Nothing selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for _, line := range v.lines[v.scrollOffset:end] {
		switch {
		case strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " "):
			b.WriteString(v.styles.Subtitle.Render(line))
		case strings.HasPrefix(line, "  "):
			b.WriteString(v.styles.Normal.Render(line))
		default:
			label, value, _ := strings.Cut(line, ":")
			b.WriteString(v.styles.Muted.Render(label + ":"))
			b.WriteString(v.styles.Normal.Render(value))
		}
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1, end, len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Lines returns the rendered content lines.
func (v *View) Lines() []string {
	return v.lines
}
