// Package ui is the interactive table browser: a Bubble Tea model driving
// one page's engine, action dispatcher, confirmation flows and status editor.
package ui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/trainctl/internal/action"
	"github.com/oakwood-commons/trainctl/internal/column"
	"github.com/oakwood-commons/trainctl/internal/confirm"
	"github.com/oakwood-commons/trainctl/internal/page"
	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/internal/status"
	"github.com/oakwood-commons/trainctl/internal/ui/table"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

const (
	maxAutoColumnWidth = 32
	// title, button bar, status line and help line
	chromeLines = 4
)

type mode int

const (
	modeTable mode = iota
	modeConfirm
	modeInfo
	modeStatusMenu
	modeStatusConfirm
	modePermissions
	modeColumns
	modeDetail
)

// op identifies the background work a doneMsg reports on.
type op int

const (
	opLoad op = iota
	opRevalidate
	opConfirm
	opStatus
)

// doneMsg is sent when a command goroutine finishes network work. The model
// syncs the engine from the source on receipt.
type doneMsg struct {
	op  op
	err error
}

// kindKeys labels the button bar.
var kindKeys = map[action.Kind]string{
	action.View:   "v",
	action.Edit:   "e",
	action.Delete: "d",
	action.Cancel: "x",
}

// PageBuilder builds the page once the model exists, so the model can serve
// as the page's navigator and informer.
type PageBuilder func(opts page.Options) (*page.Page, error)

// Options configures the browser.
type Options struct {
	// WebURL prefixes view/edit paths shown in the detail dialog.
	WebURL   string
	Theme    *Theme
	NoColor  bool
	Logger   logr.Logger
	Bindings map[string]KeyAction
}

// Model is the browser's tea.Model. It implements action.Navigator and
// action.Informer for its page.
type Model struct {
	ctx  context.Context
	log  logr.Logger
	page *page.Page

	table   *table.Model[record.Record]
	cols    []column.Descriptor
	focus   int
	spinner spinner.Model
	st      styles
	keys    map[string]KeyAction
	webURL  string
	noColor bool

	mode   mode
	flow   *confirm.Flow
	picker *picker
	info   modal
	detail string

	busy      bool
	notice    string
	noticeErr bool

	width  int
	height int
}

var (
	_ tea.Model        = (*Model)(nil)
	_ action.Navigator = (*Model)(nil)
	_ action.Informer  = (*Model)(nil)
)

// NewModel creates the model and builds its page.
func NewModel(ctx context.Context, build PageBuilder, opts Options) (*Model, error) {
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = *logger.FromContext(ctx)
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	keys := opts.Bindings
	if keys == nil {
		keys = DefaultKeyBindings
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		log:     lgr,
		spinner: sp,
		st:      newStyles(theme, opts.NoColor),
		keys:    keys,
		webURL:  strings.TrimRight(opts.WebURL, "/"),
		noColor: opts.NoColor,
		width:   80,
		height:  24,
	}

	p, err := build(page.Options{Navigator: m, Informer: m, Logger: lgr})
	if err != nil {
		return nil, err
	}
	m.page = p

	m.table = table.NewModel(m.rowCells)
	if opts.NoColor {
		m.table.SetNoColor(true)
	} else {
		m.table.SetColors(theme.HeaderFG, theme.HeaderBG, theme.SelectedFG, theme.SelectedBG)
	}
	m.resize()
	m.refresh()
	return m, nil
}

// Page returns the page being browsed.
func (m *Model) Page() *page.Page { return m.page }

// NavigateTo shows the target location of a view or edit action.
func (m *Model) NavigateTo(path string, query url.Values) error {
	target := m.webURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	m.detail = target
	m.mode = modeDetail
	return nil
}

// Inform opens the informational dialog.
func (m *Model) Inform(title, message string) {
	m.info = modal{title: title, body: message, footer: "enter/esc close"}
	m.mode = modeInfo
}

// Init starts the first fetch.
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(m.spinner.Tick, m.work(opLoad, m.page.Source.Load))
}

func (m *Model) work(o op, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{op: o, err: fn(ctx)}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case doneMsg:
		return m, m.handleDone(msg)

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleDone(msg doneMsg) tea.Cmd {
	m.busy = false
	m.page.Sync()
	m.refresh()

	switch msg.op {
	case opLoad, opRevalidate:
		if msg.err != nil {
			m.setError("Refresh failed: " + msg.err.Error())
		} else if msg.op == opRevalidate {
			m.setNotice(fmt.Sprintf("Refreshed %d records", m.page.Engine.TotalRecords()))
		}

	case opConfirm:
		// A failed confirm leaves the flow pending; the dialog shows its error.
		if msg.err == nil {
			m.mode = modeTable
			m.flow = nil
			m.setNotice("Done")
		}

	case opStatus:
		ed := m.page.Status
		if n := ed.Notice(); n != "" {
			m.setError(n)
			ed.ClearNotice()
		}
		switch ed.Phase() {
		case status.ConfirmOpen:
			m.mode = modeStatusConfirm
		case status.PanelOpen:
			m.mode = modePermissions
			m.syncPermissions()
		default:
			m.mode = modeTable
			m.picker = nil
		}
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if m.busy && m.mode != modeTable {
		return nil
	}

	switch m.mode {
	case modeConfirm:
		return m.keyConfirm(key)
	case modeInfo:
		if key == "enter" || key == "esc" || key == "q" {
			m.mode = modeTable
		}
		return nil
	case modeDetail:
		return m.keyDetail(key)
	case modeStatusMenu:
		return m.keyStatusMenu(key)
	case modeStatusConfirm:
		return m.keyStatusConfirm(key)
	case modePermissions:
		return m.keyPermissions(key)
	case modeColumns:
		return m.keyColumns(key)
	}
	return m.keyTable(msg, key)
}

func (m *Model) keyTable(msg tea.KeyPressMsg, key string) tea.Cmd {
	m.notice = ""
	switch m.keys[key] {
	case KeyActionMove:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd

	case KeyActionNextPage:
		if m.page.Engine.NextPage() {
			m.refresh()
		}
	case KeyActionPrevPage:
		if m.page.Engine.PrevPage() {
			m.refresh()
		}

	case KeyActionColPrev:
		if m.focus > 0 {
			m.focus--
			m.refreshColumns()
		}
	case KeyActionColNext:
		if m.focus < len(m.cols)-1 {
			m.focus++
			m.refreshColumns()
		}

	case KeyActionSort:
		if m.focus >= len(m.cols) {
			return nil
		}
		col := m.cols[m.focus]
		if err := m.page.CycleSort(col.Key); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.refresh()

	case KeyActionColumns:
		m.openColumns()

	case KeyActionView:
		return m.activate(action.View)
	case KeyActionEdit:
		return m.activate(action.Edit)
	case KeyActionDelete:
		return m.activate(action.Delete)
	case KeyActionCancel:
		return m.activate(action.Cancel)

	case KeyActionStatus:
		m.openStatus()

	case KeyActionCopyID:
		row, ok := m.table.SelectedRow()
		if !ok {
			return nil
		}
		if err := CopyToClipboard(row.RowID()); err != nil {
			m.setError("Copy failed: " + err.Error())
		} else {
			m.setNotice("Copied id " + row.RowID())
		}

	case KeyActionRevalidate:
		if m.busy {
			return nil
		}
		m.busy = true
		return tea.Batch(m.spinner.Tick, m.work(opRevalidate, m.page.Source.Revalidate))

	case KeyActionQuit:
		return tea.Quit
	}
	return nil
}

func (m *Model) activate(kind action.Kind) tea.Cmd {
	row, ok := m.table.SelectedRow()
	if !ok {
		return nil
	}
	ctx := logger.WithLogger(m.ctx, logger.WithValues(&m.log, logger.RowIDKey, row.RowID()))
	outcome, err := m.page.Actions.Activate(ctx, kind, row)
	switch {
	case errors.Is(err, action.ErrNotOffered):
		m.setError(fmt.Sprintf("%s is not available on this table", kind))
		return nil
	case err != nil:
		m.setError(err.Error())
		return nil
	}

	switch outcome {
	case action.OutcomeInert:
		m.setError(fmt.Sprintf("%s is disabled for this row", kind))
	case action.OutcomeNone:
		m.setError(fmt.Sprintf("nothing is configured for %s", kind))
	case action.OutcomeConfirmRequested:
		m.flow = m.page.Delete
		m.mode = modeConfirm
	case action.OutcomeCancelOpened:
		m.flow = m.page.Cancel
		m.mode = modeConfirm
	}
	return nil
}

func (m *Model) keyConfirm(key string) tea.Cmd {
	switch key {
	case "y", "enter":
		m.busy = true
		return tea.Batch(m.spinner.Tick, m.work(opConfirm, m.flow.Confirm))
	case "n", "esc", "q":
		m.flow.Cancel()
		m.flow = nil
		m.mode = modeTable
	}
	return nil
}

func (m *Model) keyDetail(key string) tea.Cmd {
	switch key {
	case "o":
		if err := OpenURL(m.detail); err != nil {
			m.setError("Open failed: " + err.Error())
		}
	case "y":
		if err := CopyToClipboard(m.detail); err != nil {
			m.setError("Copy failed: " + err.Error())
		} else {
			m.setNotice("Copied link")
		}
	case "enter", "esc", "q":
		m.mode = modeTable
	}
	return nil
}

func (m *Model) openStatus() {
	ed := m.page.Status
	if ed == nil {
		m.setError("This table has no editable status")
		return
	}
	row, ok := m.table.SelectedRow()
	if !ok {
		return
	}
	if err := ed.Open(row); err != nil {
		if errors.Is(err, status.ErrSentinel) {
			m.Inform("Not editable", ed.Notice())
			ed.ClearNotice()
			return
		}
		m.setError(err.Error())
		return
	}

	if ed.Variant() == status.Permission {
		items := make([]pickerItem, 0, len(ed.Permissions()))
		for _, p := range ed.Permissions() {
			items = append(items, pickerItem{Key: p, Label: p})
		}
		m.picker = newPicker(items, true)
		m.syncPermissions()
		m.mode = modePermissions
		return
	}

	current := ed.Value(row)
	items := make([]pickerItem, 0, len(ed.Options()))
	for _, o := range ed.Options() {
		items = append(items, pickerItem{Key: o, Label: o, Current: o == current})
	}
	m.picker = newPicker(items, false)
	m.mode = modeStatusMenu
}

func (m *Model) syncPermissions() {
	ed := m.page.Status
	row, ok := ed.Row()
	if !ok || m.picker == nil {
		return
	}
	m.picker.setChecked(func(perm string) bool { return ed.Granted(row, perm) })
}

func (m *Model) keyStatusMenu(key string) tea.Cmd {
	switch key {
	case "up", "k":
		m.picker.up()
	case "down", "j":
		m.picker.down()
	case "enter", " ", "space":
		it, ok := m.picker.selected()
		if !ok {
			return nil
		}
		m.busy = true
		return tea.Batch(m.spinner.Tick, m.work(opStatus, func(ctx context.Context) error {
			return m.page.Status.Select(ctx, it.Key)
		}))
	case "esc", "q":
		m.page.Status.Cancel()
		m.picker = nil
		m.mode = modeTable
	}
	return nil
}

func (m *Model) keyStatusConfirm(key string) tea.Cmd {
	switch key {
	case "y", "enter":
		m.busy = true
		return tea.Batch(m.spinner.Tick, m.work(opStatus, m.page.Status.ConfirmChange))
	case "n", "esc", "q":
		m.page.Status.Cancel()
		m.picker = nil
		m.mode = modeTable
	}
	return nil
}

func (m *Model) keyPermissions(key string) tea.Cmd {
	switch key {
	case "up", "k":
		m.picker.up()
	case "down", "j":
		m.picker.down()
	case "enter", " ", "space":
		it, ok := m.picker.selected()
		if !ok {
			return nil
		}
		m.busy = true
		return tea.Batch(m.spinner.Tick, m.work(opStatus, func(ctx context.Context) error {
			return m.page.Status.Toggle(ctx, it.Key)
		}))
	case "esc", "q":
		m.page.Status.Cancel()
		m.picker = nil
		m.mode = modeTable
	}
	return nil
}

func (m *Model) openColumns() {
	all := m.page.Engine.Columns().All()
	items := make([]pickerItem, len(all))
	for i, d := range all {
		items[i] = pickerItem{Key: d.Key, Label: d.Label(), Checked: m.page.Engine.IsVisible(d.Key)}
	}
	m.picker = newPicker(items, true)
	m.mode = modeColumns
}

func (m *Model) keyColumns(key string) tea.Cmd {
	switch key {
	case "up", "k":
		m.picker.up()
	case "down", "j":
		m.picker.down()
	case "enter", " ", "space":
		it, ok := m.picker.selected()
		if !ok {
			return nil
		}
		if err := m.page.Engine.ToggleColumnVisibility(it.Key); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.picker.setChecked(m.page.Engine.IsVisible)
		m.refresh()
	case "esc", "q", "c":
		m.picker = nil
		m.mode = modeTable
	}
	return nil
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeErr = false
}

func (m *Model) setError(s string) {
	m.notice = s
	m.noticeErr = true
	m.log.V(1).Info("tui notice", "message", s)
}

func (m *Model) resize() {
	m.table.SetSize(m.width, max(m.height-chromeLines, 3))
}

// refresh pushes the engine's current page and columns into the widget.
func (m *Model) refresh() {
	m.cols = m.page.Engine.VisibleDescriptors()
	if m.focus >= len(m.cols) {
		m.focus = max(len(m.cols)-1, 0)
	}
	m.refreshColumns()
	m.table.SetRows(m.page.Engine.PaginatedData())
}

func (m *Model) refreshColumns() {
	sortKey, order := m.page.Engine.SortState()
	rows := m.page.Engine.PaginatedData()
	out := make([]table.Column, len(m.cols))
	for i, d := range m.cols {
		title := d.Label()
		if d.Key == sortKey {
			title += " " + order.Arrow()
		}
		if i == m.focus {
			title = "›" + title
		}
		w := d.Width
		if w <= 0 {
			w = lipgloss.Width(title)
			for _, r := range rows {
				w = max(w, lipgloss.Width(d.Cell(r)))
			}
			w = min(w, maxAutoColumnWidth)
		}
		out[i] = table.Column{Title: title, Width: max(w, lipgloss.Width(title))}
	}
	m.table.SetColumns(out)
}

func (m *Model) rowCells(r record.Record) table.Row {
	cells := make(table.Row, len(m.cols))
	for i, d := range m.cols {
		cells[i] = d.Cell(r)
	}
	return cells
}

// View renders the screen.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	switch m.mode {
	case modeConfirm:
		d := modal{title: m.flow.Title(), body: m.flow.Message(), footer: "y/enter confirm · n/esc cancel"}
		if row, ok := m.flow.Pending(); ok {
			d.body = fmt.Sprintf("%s\n\n#%s", d.body, row.RowID())
		}
		if err := m.flow.Err(); err != nil {
			d.err = err.Error()
		}
		return m.withBusy(d)
	case modeInfo:
		return m.info.render(m.st, m.width, m.height)
	case modeDetail:
		return m.detailModal().render(m.st, m.width, m.height)
	case modeStatusMenu:
		return m.withBusy(modal{
			title:  "Change " + m.page.Status.Field(),
			body:   m.picker.view(m.st),
			footer: "↑↓ move · enter select · esc close",
		})
	case modeStatusConfirm:
		return m.withBusy(modal{
			title:  "Confirm change",
			body:   fmt.Sprintf("Change %s to %q?", m.page.Status.Field(), m.page.Status.Proposed()),
			footer: "y/enter confirm · n/esc cancel",
		})
	case modePermissions:
		title := "Permissions"
		if row, ok := m.page.Status.Row(); ok {
			title += " #" + row.RowID()
		}
		return m.withBusy(modal{title: title, body: m.picker.view(m.st), footer: "space toggle · esc close"})
	case modeColumns:
		return modal{title: "Columns", body: m.picker.view(m.st), footer: "space toggle · esc close"}.render(m.st, m.width, m.height)
	}
	return m.renderTable()
}

func (m *Model) withBusy(d modal) string {
	if m.busy {
		d.footer = m.spinner.View() + " working…"
	}
	return d.render(m.st, m.width, m.height)
}

func (m *Model) detailModal() modal {
	var b strings.Builder
	b.WriteString(m.detail)
	if row, ok := m.table.SelectedRow(); ok {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n%s: %s", k, column.Identity(row[k], row))
		}
	}
	return modal{title: "Open", body: b.String(), footer: "o open in browser · y copy link · esc close"}
}

func (m *Model) renderTable() string {
	e := m.page.Engine
	title := fmt.Sprintf("%s · page %d/%d · %d records", m.page.Title(), e.CurrentPage(), max(e.TotalPages(), 1), e.TotalRecords())
	if key, order := e.SortState(); key != "" {
		if d, ok := e.Columns().Get(key); ok {
			title += fmt.Sprintf(" · sorted by %s %s", d.Label(), order.Arrow())
		}
	}

	lines := []string{m.st.title.Render(title), m.table.View(), m.buttonBar(), m.statusLine(), m.helpView()}
	return strings.Join(lines, "\n")
}

func (m *Model) buttonBar() string {
	row, ok := m.table.SelectedRow()
	if !ok {
		return ""
	}
	var parts []string
	for _, b := range m.page.Actions.Buttons(row) {
		label := fmt.Sprintf("[%s] %s %s", kindKeys[b.Kind], b.Icon, b.Label)
		if b.Disabled {
			parts = append(parts, m.st.disabled.Render(label))
		} else {
			parts = append(parts, m.st.enabled.Render(label))
		}
	}
	if ed := m.page.Status; ed != nil {
		label := fmt.Sprintf("[t] %s: %s", ed.Field(), ed.Value(row))
		if ed.Locked(row) {
			parts = append(parts, m.st.disabled.Render(label))
		} else {
			parts = append(parts, label)
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) statusLine() string {
	switch {
	case m.busy:
		return m.spinner.View() + " loading…"
	case m.noticeErr:
		return m.st.errText.Render(m.notice)
	case m.notice != "":
		return m.st.status.Render(m.notice)
	}
	return ""
}

func (m *Model) helpView() string {
	parts := make([]string, len(helpLine))
	for i, h := range helpLine {
		parts[i] = m.st.helpKey.Render(h.key) + " " + m.st.helpVal.Render(h.desc)
	}
	return strings.Join(parts, "  ")
}
