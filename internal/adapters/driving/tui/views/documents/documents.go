// Package documents provides the document browser view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
)

// ErrNoIngestionService indicates that no ingestion service was provided.
var ErrNoIngestionService = errors.New("ingestion service is required")

// View lists the documents visible to the requester.
type View struct {
	styles    *styles.Styles
	ingestion driving.IngestionService
	ownerID   string
	isAdmin   bool
	ctx       context.Context

	documents     []domain.Document
	selected      int
	scrollOffset  int
	width         int
	height        int
	err           error
	loading       bool
	confirmDelete bool
	notice        string
}

// NewView creates a documents view for ownerID.
func NewView(s *styles.Styles, ingestion driving.IngestionService, ownerID string, isAdmin bool) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		ingestion: ingestion,
		ownerID:   ownerID,
		isAdmin:   isAdmin,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context service calls run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command fetching the document list.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.err = nil
	ingestion, ctx, owner, isAdmin := v.ingestion, v.ctx, v.ownerID, v.isAdmin
	return func() tea.Msg {
		if ingestion == nil {
			return messages.DocumentsLoaded{Err: ErrNoIngestionService}
		}
		docs, err := ingestion.ListDocuments(ctx, owner, isAdmin)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) deleteDocument(id string) tea.Cmd {
	ingestion, ctx := v.ingestion, v.ctx
	return func() tea.Msg {
		if ingestion == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: ErrNoIngestionService}
		}
		return messages.DocumentDeleted{DocumentID: id, Err: ingestion.DeleteDocument(ctx, id)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.documents = msg.Documents
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Deleted " + msg.DocumentID
		return v, v.Load()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirmDelete {
		v.confirmDelete = false
		if msg.String() == "y" && v.selected < len(v.documents) {
			return v, v.deleteDocument(v.documents[v.selected].ID)
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if v.selected < len(v.documents) {
			doc := v.documents[v.selected]
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: doc}
			}
		}
	case "d":
		if len(v.documents) > 0 {
			v.confirmDelete = true
		}
	case "r":
		v.notice = ""
		return v, v.Load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents uploaded yet."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.documents))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderDocument(i, &v.documents[i]))
			b.WriteString("\n")
		}
		if len(v.documents) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1, end, len(v.documents))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.confirmDelete && v.selected < len(v.documents) {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Delete %s? [y/N]", v.documents[v.selected].OriginalName)))
		b.WriteString("\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Normal.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] details  [d] delete  [r] reload  [esc] back"))

	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	label := domain.SourcePersonal
	if doc.IsAdmin {
		label = domain.SourceAdmin
	}

	name := doc.OriginalName
	maxName := max(v.width/2, 10)
	if runes := []rune(name); len(runes) > maxName {
		name = string(runes[:maxName-3]) + "..."
	}

	line := fmt.Sprintf("%s%-*s %-12s %3d chunks", indicator, maxName, name, doc.Category, doc.ChunkCount)
	if index == v.selected {
		line = v.styles.Selected.Render(line)
	} else {
		line = v.styles.Normal.Render(line)
	}
	return line + " " + v.styles.SourceLabel(label)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// Documents returns the loaded documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
