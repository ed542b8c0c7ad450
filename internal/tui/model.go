package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"todo-tracker/internal/client"
	"todo-tracker/internal/controller"
	"todo-tracker/internal/models"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 10 * time.Second

// listItem adapts a Todo to bubbles/list.Item.
type listItem struct {
	ID   string
	Text string
	Done bool
}

func (i listItem) Title() string {
	box := boxUnchecked
	if i.Done {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.Text)
}

func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// itemDelegate renders one todo per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	boxStyled := mutedStyle.Render(boxUnchecked)
	textStyled := it.Text
	if it.Done {
		boxStyled = successStyle.Render(boxChecked)
		textStyled = doneStyle.Render(it.Text)
	}

	line := fmt.Sprintf("%s %s", boxStyled, textStyled)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// Messages delivered by async API commands. Every issued request produces
// exactly one of these; there is no mid-flight cancellation.
type todosLoadedMsg struct{ todos []models.Todo }

type loadFailedMsg struct{ err error }

type todoCreatedMsg struct {
	token string
	todo  models.Todo
}

type createFailedMsg struct{ token string }

type todoToggledMsg struct {
	token string
	todo  models.Todo
}

type toggleFailedMsg struct{ token string }

type todoDeletedMsg struct{ token string }

type deleteFailedMsg struct{ token string }

// Model is the single owned container for client-side state. All
// mutations happen inside Update, on the bubbletea event loop.
type Model struct {
	ctl *controller.Controller
	api *client.Client

	list list.Model
	ti   textinput.Model

	adding  bool
	loading bool
	loadErr string
	addErr  string
	status  string

	width  int
	height int
}

func NewModel(api *client.Client) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = titleStyle.Render("Todos")
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("todo", "todos")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	reloadBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	extra := func() []key.Binding { return []key.Binding{addBind, toggleBind, deleteBind, reloadBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New todo title..."
	ti.CharLimit = 200

	return Model{
		ctl:     controller.New(),
		api:     api,
		list:    l,
		ti:      ti,
		loading: true,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetchTodos()
}

// ------- async API commands -------

func (m Model) fetchTodos() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		todos, err := api.ListTodos(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return todosLoadedMsg{todos: todos}
	}
}

func (m Model) createTodo(token, title string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		todo, err := api.CreateTodo(ctx, title, false)
		if err != nil {
			return createFailedMsg{token: token}
		}
		return todoCreatedMsg{token: token, todo: todo}
	}
}

func (m Model) toggleTodo(token, id string, completed bool) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		todo, err := api.UpdateTodo(ctx, id, client.TodoPatch{Completed: &completed})
		if err != nil {
			return toggleFailedMsg{token: token}
		}
		return todoToggledMsg{token: token, todo: todo}
	}
}

func (m Model) deleteTodo(token, id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := api.DeleteTodo(ctx, id); err != nil {
			return deleteFailedMsg{token: token}
		}
		return todoDeletedMsg{token: token}
	}
}

// ------- update loop -------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case todosLoadedMsg:
		m.loading = false
		m.loadErr = ""
		m.ctl.SetTodos(msg.todos)
		m.refreshList()
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.loadErr = "Failed to load todos. Please try again."
		return m, nil

	case todoCreatedMsg:
		m.ctl.ResolveAdd(msg.token, msg.todo)
		m.status = successStyle.Render("Todo added successfully")
		m.refreshList()
		return m, nil

	case createFailedMsg:
		restored := m.ctl.FailAdd(msg.token)
		m.adding = true
		m.ti.SetValue(restored)
		m.ti.CursorEnd()
		m.ti.Focus()
		m.status = errorStyle.Render("Failed to add todo. Please try again.")
		m.refreshList()
		return m, nil

	case todoToggledMsg:
		m.ctl.ResolveToggle(msg.token, msg.todo)
		m.refreshList()
		return m, nil

	case toggleFailedMsg:
		m.ctl.FailToggle(msg.token)
		m.status = errorStyle.Render("Failed to update todo. Please try again.")
		m.refreshList()
		return m, nil

	case todoDeletedMsg:
		m.ctl.ResolveDelete(msg.token)
		m.status = successStyle.Render("Todo deleted successfully")
		return m, nil

	case deleteFailedMsg:
		m.ctl.FailDelete(msg.token)
		m.status = errorStyle.Render("Failed to delete todo. Please try again.")
		m.refreshList()
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "a":
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			m.ti.Focus()
			return m, nil
		case "r":
			if m.loadErr != "" {
				m.loading = true
				m.loadErr = ""
				return m, m.fetchTodos()
			}
		case " ":
			if id, ok := m.selectedID(); ok {
				token, completed, started := m.ctl.BeginToggle(id)
				if started {
					m.refreshList()
					return m, m.toggleTodo(token, id, completed)
				}
			}
			return m, nil
		case "d":
			if id, ok := m.selectedID(); ok {
				token, started := m.ctl.BeginDelete(id)
				if started {
					m.refreshList()
					return m, m.deleteTodo(token, id)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.KeyMsg:
		switch x.String() {
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			provisional, err := m.ctl.BeginAdd(title)
			if err != nil {
				m.addErr = "Title cannot be empty"
				return m, nil
			}
			m.adding = false
			m.addErr = ""
			m.ti.SetValue("")
			m.ti.Blur()
			m.refreshList()
			return m, m.createTodo(provisional.ID, title)
		case "esc":
			m.adding = false
			m.addErr = ""
			m.ti.SetValue("")
			m.ti.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) selectedID() (string, bool) {
	i := m.list.Index()
	items := m.list.Items()
	if i < 0 || i >= len(items) {
		return "", false
	}
	li, ok := items[i].(listItem)
	if !ok {
		return "", false
	}
	return li.ID, true
}

// refreshList rebuilds the visible list from the controller's state and
// refreshes the header counts.
func (m *Model) refreshList() {
	todos := m.ctl.Todos()
	items := make([]list.Item, 0, len(todos))
	for _, todo := range todos {
		items = append(items, listItem{ID: todo.ID, Text: todo.Title, Done: todo.Completed})
	}
	m.list.SetItems(items)

	completed, open := m.ctl.Counts()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), completed,
		pendingStyle.Render("•"), open,
		accentStyle.Render("Total"), len(todos),
	)
}

func (m Model) View() string {
	if m.loading {
		return panelStyle.Render("Loading todos...")
	}

	if m.loadErr != "" {
		body := errorStyle.Render(m.loadErr) + "\n" + helpStyle.Render("press r to retry, q to quit")
		return panelStyle.Render(body)
	}

	listHeight := m.height - 4
	if m.adding {
		listHeight = m.height - 7
	}
	m.list.SetSize(m.width-2, listHeight)

	content := m.list.View()
	if m.status != "" {
		content += "\n" + m.status
	}
	if m.adding {
		title := "Add new todo"
		if m.addErr != "" {
			title += ": " + errorStyle.Render(m.addErr)
		}
		content += "\n" + panelStyle.Render(title+"\n"+m.ti.View())
	}
	return panelStyle.Render(content)
}
