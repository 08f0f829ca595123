package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context

	menuView       *menu.View
	searchView     *search.View
	documentsView  *documents.View
	docDetailsView *docdetails.View

	currentView messages.ViewType
	err         error
	ready       bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application acting for requester.
func NewApp(ports *Ports, requester Requester) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		menuView:       menu.NewView(s, ports.Ingestion != nil),
		searchView:     search.NewView(s, km, ports.Retrieval, requester.OwnerID, requester.IsAdmin),
		documentsView:  documents.NewView(s, ports.Ingestion, requester.OwnerID, requester.IsAdmin),
		docDetailsView: docdetails.NewView(s),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context service calls run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("Tala Knowledge")
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		from := a.currentView
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			// Returning from a result keeps the previous results.
			if from == messages.ViewDocDetails {
				return a, nil
			}
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewDocuments:
			return a, a.documentsView.Load()
		case messages.ViewMenu, messages.ViewDocDetails, messages.ViewHelp:
		}
		return a, nil

	case messages.ResultSelected:
		a.docDetailsView.SetResult(msg.Result)
		a.currentView = messages.ViewDocDetails
		return a, nil

	case messages.DocumentSelected:
		a.docDetailsView.SetDocument(msg.Document)
		a.currentView = messages.ViewDocDetails
		return a, nil

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.err = a.documentsView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocDetails:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
	case messages.ViewHelp:
	}

	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocDetails:
		return a.docDetailsView.View()
	case messages.ViewHelp:
		return helpText
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

const helpText = `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Search:
  (type)      Enter a question
  tab         Cycle category filter
  enter       Search, then open the highlighted result
  n           New search
  j/k, ↑/↓    Navigate results

Documents:
  enter       Show document details
  d           Delete document (confirm with y)
  r           Reload

[esc] back to menu`

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Results returns the results of the last search.
func (a *App) Results() []domain.SearchResult {
	return a.searchView.Results()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docDetailsView.SetDimensions(width, height)
}
