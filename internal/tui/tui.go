// Package tui is the interactive checklist manager: a saved-list pane and an
// editor pane over one session.Session.
package tui

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/session"
	"github.com/Makepad-fr/tada/internal/transfer"
	"github.com/Makepad-fr/tada/internal/ui"
)

const (
	confirmClear  = "Are you sure you want to clear all items from this checklist?"
	confirmDelete = "Are you sure you want to delete this saved checklist?"
)

type pane int

const (
	paneSaved pane = iota
	paneEditor
)

type mode int

const (
	modeBrowse mode = iota
	modeNew
	modeRename
	modeAdd
	modeEdit
	modeImport
	modeConfirm
)

type Options struct {
	ExportDir string
	Logger    logging.Logger
}

// Model is the Bubble Tea model. It drives sess synchronously from Update,
// so the session never leaves the program goroutine.
type Model struct {
	ctx  context.Context
	sess *session.Session
	opt  Options

	saved list.Model
	items list.Model
	ti    textinput.Model

	pane      pane
	mode      mode
	editIndex int
	inputErr  string

	prompt    string
	onConfirm func() (string, error)

	toast    string
	toastErr bool

	width, height int
}

// New builds the model. A session that recovered from unreadable storage
// starts with a notice.
func New(ctx context.Context, sess *session.Session, opt Options) Model {
	if opt.Logger == nil {
		opt.Logger = logging.Nop()
	}
	m := Model{ctx: ctx, sess: sess, opt: opt, editIndex: -1}

	m.saved = newList(savedDelegate{}, "Saved checklists", "checklist", "checklists")
	m.saved.AdditionalShortHelpKeys = savedKeys
	m.saved.AdditionalFullHelpKeys = savedKeys
	m.items = newList(itemDelegate{}, "", "item", "items")
	m.items.AdditionalShortHelpKeys = editorKeys
	m.items.AdditionalFullHelpKeys = editorKeys

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.CharLimit = 200

	m.width, m.height = termSize()
	m.resize()
	m.refresh()
	if _, ok := sess.Active(); ok {
		m.pane = paneEditor
	}
	if sess.Recovered {
		m.fail(errors.New("saved checklists were unreadable and have been reset"))
	}
	return m
}

func newList(d list.ItemDelegate, title, singular, plural string) list.Model {
	t := ui.Current()
	l := list.New(nil, d, 0, 0)
	l.Title = title
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName(singular, plural)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

var (
	keyNew     = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new"))
	keyImport  = key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import"))
	keyLoad    = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load"))
	keyDelete  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	keyTab     = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane"))
	keyToggle  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	keyAdd     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	keyEdit    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	keyRemove  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove"))
	keyClear   = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear"))
	keySave    = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save"))
	keyRename  = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename"))
	keyExport  = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export"))
	keyQuit    = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	savedKeys  = func() []key.Binding { return []key.Binding{keyLoad, keyNew, keyDelete, keyImport, keyTab, keyQuit} }
	editorKeys = func() []key.Binding {
		return []key.Binding{keyToggle, keyAdd, keyEdit, keyRemove, keyClear, keySave, keyRename, keyExport, keyTab}
	}
)

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctx context.Context, sess *session.Session, opt Options) error {
	p := tea.NewProgram(New(ctx, sess, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}
	km, isKey := msg.(tea.KeyMsg)
	if isKey && km.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeConfirm:
		if isKey {
			return m.updateConfirm(km), nil
		}
		return m, nil
	case modeNew, modeRename, modeAdd, modeEdit, modeImport:
		return m.updateInput(msg)
	}

	if isKey && !m.filtering() {
		m.toast = ""
		if next, cmd, handled := m.updateBrowse(km); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	if m.pane == paneEditor {
		m.items, cmd = m.items.Update(msg)
	} else {
		m.saved, cmd = m.saved.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	if m.pane == paneEditor {
		return m.items.FilterState() == list.Filtering
	}
	return m.saved.FilterState() == list.Filtering
}

func (m Model) updateBrowse(km tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch km.String() {
	case "q":
		return m, tea.Quit, true
	case "tab":
		if m.pane == paneSaved {
			if _, ok := m.sess.Active(); ok {
				m.pane = paneEditor
			}
		} else {
			m.pane = paneSaved
		}
		return m, nil, true
	case "n":
		cmd := m.startInput(modeNew, "", "Checklist title...")
		return m, cmd, true
	case "i":
		cmd := m.startInput(modeImport, "", "Path to a .json file...")
		return m, cmd, true
	}
	if m.pane == paneSaved {
		return m.updateSaved(km)
	}
	return m.updateEditor(km)
}

func (m Model) updateSaved(km tea.KeyMsg) (Model, tea.Cmd, bool) {
	row, ok := m.saved.SelectedItem().(savedRow)
	switch km.String() {
	case "enter":
		if !ok {
			return m, nil, true
		}
		if _, err := m.sess.Load(row.Index); err != nil {
			m.fail(err)
			return m, nil, true
		}
		m.pane = paneEditor
		m.refresh()
		m.items.Select(0)
		m.ok("Checklist loaded")
		return m, nil, true
	case "d":
		if !ok {
			return m, nil, true
		}
		idx := row.Index
		m.ask(confirmDelete, func() (string, error) {
			if _, err := m.sess.Delete(m.ctx, idx); err != nil {
				return "", err
			}
			return "Checklist deleted", nil
		})
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) updateEditor(km tea.KeyMsg) (Model, tea.Cmd, bool) {
	row, ok := m.items.SelectedItem().(itemRow)
	switch km.String() {
	case "esc":
		if m.items.FilterState() == list.FilterApplied {
			return m, nil, false
		}
		m.pane = paneSaved
		return m, nil, true
	case " ":
		if ok {
			m.apply(m.sess.ToggleItem(row.index), "")
		}
		return m, nil, true
	case "a":
		cmd := m.startInput(modeAdd, "", "New item...")
		return m, cmd, true
	case "e":
		if !ok {
			return m, nil, true
		}
		m.editIndex = row.index
		cmd := m.startInput(modeEdit, row.item.Text, "Edit item...")
		return m, cmd, true
	case "d":
		if ok {
			m.apply(m.sess.RemoveItem(row.index), "Item removed")
		}
		return m, nil, true
	case "c":
		m.ask(confirmClear, func() (string, error) {
			return "Checklist cleared", m.sess.Clear()
		})
		return m, nil, true
	case "s":
		_, err := m.sess.Save(m.ctx)
		m.apply(err, "Checklist saved")
		return m, nil, true
	case "r":
		c, _ := m.sess.Active()
		cmd := m.startInput(modeRename, c.Title, "Checklist title...")
		return m, cmd, true
	case "x":
		path, err := m.sess.Export(m.opt.ExportDir)
		if err != nil {
			m.fail(err)
			return m, nil, true
		}
		m.opt.Logger.Info(m.ctx, "checklist exported", "path", path)
		m.ok("Checklist exported to " + path)
		return m, nil, true
	}
	return m, nil, false
}

func (m *Model) startInput(md mode, value, placeholder string) tea.Cmd {
	m.mode = md
	m.inputErr = ""
	m.ti.Placeholder = placeholder
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	return m.ti.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.stopInput()
			return m, nil
		case "enter":
			return m.submit(strings.TrimSpace(m.ti.Value())), nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) submit(value string) Model {
	if value == "" {
		m.inputErr = "Cannot be empty"
		return m
	}
	switch m.mode {
	case modeNew:
		if _, err := m.sess.Create(value); err != nil {
			m.inputErr = err.Error()
			return m
		}
		m.stopInput()
		m.pane = paneEditor
		m.refresh()
		m.ok("New checklist created")
	case modeRename:
		if err := m.sess.Rename(value); err != nil {
			m.inputErr = err.Error()
			return m
		}
		m.stopInput()
		m.refresh()
	case modeAdd:
		m.stopInput()
		m.apply(m.sess.AddItem(value), "Item added")
		m.items.Select(len(m.items.Items()) - 1)
	case modeEdit:
		idx := m.editIndex
		m.editIndex = -1
		m.stopInput()
		m.apply(m.sess.EditItem(idx, value), "")
	case modeImport:
		if _, err := m.sess.Import(value); err != nil {
			m.inputErr = importError(err)
			return m
		}
		m.stopInput()
		m.pane = paneEditor
		m.refresh()
		m.items.Select(0)
		m.ok("Checklist imported")
	}
	return m
}

func importError(err error) string {
	var fe *transfer.FormatError
	switch {
	case errors.As(err, &fe) && fe.Kind == transfer.KindParse:
		return "Invalid checklist file: " + fe.Err.Error()
	case errors.As(err, &fe), errors.Is(err, transfer.ErrNotJSONFile):
		return "Invalid checklist file: " + err.Error()
	}
	return err.Error()
}

func (m *Model) ask(prompt string, fn func() (string, error)) {
	m.mode = modeConfirm
	m.prompt = prompt
	m.onConfirm = fn
}

func (m Model) updateConfirm(km tea.KeyMsg) Model {
	fn := m.onConfirm
	m.mode, m.prompt, m.onConfirm = modeBrowse, "", nil
	switch km.String() {
	case "y", "Y", "enter":
		msg, err := fn()
		m.apply(err, msg)
	}
	return m
}

// apply reports the outcome of a session call and redraws the lists.
func (m *Model) apply(err error, success string) {
	if err != nil {
		m.fail(err)
		return
	}
	m.refresh()
	if success != "" {
		m.ok(success)
	}
}

func (m *Model) ok(msg string) {
	m.toast, m.toastErr = msg, false
}

func (m *Model) fail(err error) {
	m.opt.Logger.Warn(m.ctx, "action failed", "err", err)
	m.toast, m.toastErr = err.Error(), true
}

func (m *Model) refresh() {
	si := m.saved.Index()
	m.saved.SetItems(savedRows(m.sess.List()))
	m.saved.Select(clamp(si, len(m.saved.Items())))

	c, ok := m.sess.Active()
	if !ok {
		m.items.SetItems(nil)
		return
	}
	ii := m.items.Index()
	m.items.Title = header(c)
	m.items.SetItems(itemRows(c))
	m.items.Select(clamp(ii, len(m.items.Items())))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m *Model) resize() {
	w, h := m.width-4, m.height-6
	if h < 4 {
		h = 4
	}
	m.saved.SetSize(w, h)
	m.items.SetSize(w, h-2)
}

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder

	if m.pane == paneEditor {
		if c, ok := m.sess.Active(); ok {
			b.WriteString(m.items.View())
			b.WriteString("\n")
			b.WriteString(ui.ProgressLine(c) + "  " + t.Muted.Render(ui.ProgressBar(c.CompletedCount(), len(c.Items), 20)))
		}
	} else {
		if m.sess.Len() == 0 {
			b.WriteString(t.Muted.Render("No saved checklists. Press n to start one."))
			b.WriteString("\n")
		}
		b.WriteString(m.saved.View())
	}

	switch m.mode {
	case modeConfirm:
		b.WriteString("\n" + inputBox(t.Pending.Render(m.prompt)+"\n"+t.Help.Render("y confirm • any other key cancels")))
	case modeNew, modeRename, modeAdd, modeEdit, modeImport:
		title := inputTitles[m.mode]
		if m.inputErr != "" {
			title += " - " + t.Error.Render(m.inputErr)
		}
		b.WriteString("\n" + inputBox(title+"\n"+m.ti.View()))
	}

	if m.toast != "" {
		style := t.Success
		if m.toastErr {
			style = t.Error
		}
		b.WriteString("\n" + style.Render(m.toast))
	}
	return ui.Panel([]string{b.String()})
}

var inputTitles = map[mode]string{
	modeNew:    "New checklist",
	modeRename: "Rename checklist",
	modeAdd:    "Add new item",
	modeEdit:   "Edit item",
	modeImport: "Import checklist",
}

func inputBox(s string) string {
	t := ui.Current()
	return lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1).Render(s)
}

func termSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
