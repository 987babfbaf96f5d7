package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/scenario"
	"ramjet-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a trajectory log line and the row it renders.
type logMsg struct {
	line string
	row  telemetry.TrajectoryRow
}

// eventMsg carries a boundary event line.
type eventMsg struct{ line string }

// summaryMsg carries the run outcome.
type summaryMsg struct{ telemetry.SummaryRow }

const (
	maxSectionHeightPct = 0.2
	plotHeightPct       = 0.45
)

// TUIWriter renders a trajectory in a bubbletea TUI: the scenario table, a
// downrange/altitude plot, the row log and the boundary events.
type TUIWriter struct {
	program teaProgram
	done    chan struct{}
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. scn may be
// nil when replaying a log without its scenario.
func NewTUIWriter(scn *scenario.Scenario) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	p := tea.NewProgram(newTUIModel(scn), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
	}()
	return w
}

// Write implements TrajectoryWriter.
func (w *TUIWriter) Write(row telemetry.TrajectoryRow) error {
	pc, ok := phaseColors[row.Phase]
	if !ok {
		pc = colorReset
	}
	line := fmt.Sprintf("%s[t=%7.2fs]%s %s%-15s%s %sx=%8.1f%s %sh=%7.1f%s %sM=%4.2f%s %sgamma=%6.2f%s %sthrust=%6.0f%s %sfuel=%5.2f%s range=%8.1f",
		colorGray, row.SimTime, colorReset,
		pc, row.Phase, colorReset,
		colorGreen, row.Downrange, colorReset,
		colorYellow, row.Altitude, colorReset,
		colorCyan, row.Mach, colorReset,
		colorBlue, row.GammaDeg, colorReset,
		colorMagenta, row.Thrust, colorReset,
		colorGray, row.Fuel, colorReset,
		row.Range,
	)
	if row.Saturated {
		line += fmt.Sprintf(" %ssat%s", colorRed, colorReset)
	}
	w.program.Send(logMsg{line: line, row: row})
	return nil
}

// WriteBatch implements the batch trajectory interface.
func (w *TUIWriter) WriteBatch(rows []telemetry.TrajectoryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e telemetry.EventRow) error {
	col := colorYellow
	if e.Kind == telemetry.EventPhaseChange {
		col = colorCyan
	}
	line := fmt.Sprintf("%s[t=%7.2fs]%s %s%s%s phase=%s value=%.2f", colorGray, e.SimTime, colorReset, col, e.Kind, colorReset, e.Phase, e.Value)
	if e.Detail != "" {
		line += " from=" + e.Detail
	}
	w.program.Send(eventMsg{line: line})
	return nil
}

// WriteEvents implements the batch event interface.
func (w *TUIWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}

// WriteSummary implements SummaryWriter.
func (w *TUIWriter) WriteSummary(r telemetry.SummaryRow) error {
	w.program.Send(summaryMsg{r})
	return nil
}

// Wait blocks until the user quits the TUI.
func (w *TUIWriter) Wait() {
	if w.done != nil {
		<-w.done
	}
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	w.Wait()
	return nil
}

type tuiModel struct {
	scn          *scenario.Scenario
	table        table.Model
	vp           viewport.Model
	evVP         viewport.Model
	logs         []string
	evLogs       []string
	rows         []telemetry.TrajectoryRow
	summary      *telemetry.SummaryRow
	wrap         bool
	autoscroll   bool
	showPlot     bool
	help         bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(scn *scenario.Scenario) tuiModel {
	cols := []table.Column{
		{Title: "Scenario", Width: 16},
		{Title: "Value", Width: 22},
		{Title: "Scenario", Width: 16},
		{Title: "Value", Width: 22},
	}
	var rows []table.Row
	if scn != nil {
		rows = []table.Row{
			{"Name", scn.Name, "Target (x, h)", fmt.Sprintf("%.0f m, %.0f m", scn.Target.Range, scn.Target.Altitude)},
			{"Launch h / V", fmt.Sprintf("%.0f m / %.0f m/s", scn.Launch.Altitude, scn.Launch.Speed), "Launch angle", fmt.Sprintf("%.1f deg", scn.Launch.AngleDeg)},
			{"Booster", fmt.Sprintf("%.0f N x %.2f s", scn.Booster.Thrust, scn.Booster.Duration), "Ramjet", ramjetLabel(scn)},
			{"Guidance", guidanceLabel(scn), "Activation", fmt.Sprintf("%.0f m", scn.Guidance.ActivationRange)},
			{"Time step", fmt.Sprintf("%g s", scn.Sim.TimeStep), "Max time", fmt.Sprintf("%g s", scn.Sim.MaxTime)},
		}
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		scn:        scn,
		table:      t,
		vp:         viewport.New(0, 0),
		evVP:       viewport.New(0, 0),
		autoscroll: true,
		showPlot:   true,
	}
}

func ramjetLabel(s *scenario.Scenario) string {
	if !s.Ramjet.Enabled {
		return "off"
	}
	return fmt.Sprintf("M%.1f-%.1f, %.0f N", s.Ramjet.MinMach, s.Ramjet.MaxMach, s.Ramjet.SeaLevelThrust)
}

func guidanceLabel(s *scenario.Scenario) string {
	if !s.Guidance.Enabled {
		return "off"
	}
	return fmt.Sprintf("PN N=%.1f, %.0f deg", s.Guidance.NavGain, s.Guidance.MaxAngleOfAttack)
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.evVP.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
		m.refreshEvents()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "h", "?", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.evVP.GotoBottom()
			}
			return m, nil
		case "p":
			m.showPlot = !m.showPlot
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case logMsg:
		m.logs = append(m.logs, msg.line)
		m.rows = append(m.rows, msg.row)
		m.refreshViewport()
	case eventMsg:
		m.evLogs = append(m.evLogs, msg.line)
		m.updateViewportHeight()
		m.refreshEvents()
	case summaryMsg:
		r := msg.SummaryRow
		m.summary = &r
		m.updateViewportHeight()
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())

	evLines := len(m.evLogs)
	if evLines == 0 {
		evLines = 1
	}
	if limit := m.maxSectionLines(); evLines > limit {
		evLines = limit
	}
	m.evVP.Height = evLines

	plotHeight := 0
	if m.showPlot {
		plotHeight = m.plotHeight() + 2
	}
	h := m.height - m.headerHeight - bottomHeight - plotHeight - (1 + m.evVP.Height) - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.evVP.GotoBottom()
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshEvents() {
	content := "none"
	if len(m.evLogs) > 0 {
		content = strings.Join(m.evLogs, "\n")
	}
	m.evVP.SetContent(content)
	if m.autoscroll {
		m.evVP.GotoBottom()
	}
}

func (m tuiModel) maxSectionLines() int {
	h := int(float64(m.height) * maxSectionHeightPct)
	if h < 1 {
		h = 1
	}
	return h
}

func (m tuiModel) plotHeight() int {
	h := int(float64(m.height) * plotHeightPct)
	if h < 4 {
		h = 4
	}
	return h
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{m.header, divider}
	if m.showPlot {
		sections = append(sections, m.renderPlot(), divider)
	}
	sections = append(sections,
		m.vp.View(),
		divider,
		"Events:",
		m.evVP.View(),
		divider,
		m.renderBottom(),
	)
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	if m.scn == nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("trajectory replay (no scenario)")
	}
	return m.table.View()
}

// renderPlot draws altitude against downrange, one cell per column, colored
// by flight phase. The target is marked X.
func (m tuiModel) renderPlot() string {
	width := m.vp.Width
	height := m.plotHeight()
	if width < 10 || len(m.rows) == 0 {
		return "No trajectory data"
	}
	minX, maxX, maxH := m.rows[0].Downrange, m.rows[0].Downrange, 0.0
	for _, r := range m.rows {
		minX = math.Min(minX, r.Downrange)
		maxX = math.Max(maxX, r.Downrange)
		maxH = math.Max(maxH, r.Altitude)
	}
	tx, th := math.NaN(), 0.0
	if m.scn != nil {
		tx, th = m.scn.Target.Range, m.scn.Target.Altitude
		minX = math.Min(minX, tx)
		maxX = math.Max(maxX, tx)
		maxH = math.Max(maxH, th)
	}
	if maxX-minX < 1 {
		maxX = minX + 1
	}
	if maxH < 1 {
		maxH = 1
	}
	maxH *= 1.1

	grid := make([][]string, height)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = " "
		}
		grid[i] = row
	}
	for j := range grid[height-1] {
		grid[height-1][j] = "_"
	}
	cell := func(x, h float64) (int, int, bool) {
		col := int((x - minX) / (maxX - minX) * float64(width-1))
		row := height - 1 - int(math.Max(h, 0)/maxH*float64(height-1))
		return col, row, col >= 0 && col < width && row >= 0 && row < height
	}
	for _, r := range m.rows {
		if c, rw, ok := cell(r.Downrange, r.Altitude); ok {
			pc, found := phaseColors[r.Phase]
			if !found {
				pc = colorReset
			}
			grid[rw][c] = pc + "•" + colorReset
		}
	}
	if !math.IsNaN(tx) {
		if c, rw, ok := cell(tx, th); ok {
			grid[rw][c] = colorRed + "X" + colorReset
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("h 0..%.0f m  x %.0f..%.0f m\n", maxH, minX, maxX))
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	var legend []string
	for _, p := range []flight.Phase{flight.Launch, flight.Boost, flight.RamjetCruise, flight.TerminalGuided} {
		legend = append(legend, fmt.Sprintf("%s•%s=%s", phaseColors[p.String()], colorReset, p))
	}
	legend = append(legend, fmt.Sprintf("%sX%s=target", colorRed, colorReset))
	b.WriteString(strings.Join(legend, " "))
	return b.String()
}

func (m tuiModel) renderBottom() string {
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	state := fmt.Sprintf("%sRUN%s waiting", colorBlue, colorReset)
	if n := len(m.rows); n > 0 {
		r := m.rows[n-1]
		state = fmt.Sprintf("%sRUN%s %s %sphase=%s%s %st=%.2fs%s %sM=%.2f%s %sfuel=%.2fkg%s %srange=%.0fm%s",
			colorBlue, colorReset, r.RunID,
			phaseColors[r.Phase], r.Phase, colorReset,
			colorGray, r.SimTime, colorReset,
			colorCyan, r.Mach, colorReset,
			colorYellow, r.Fuel, colorReset,
			colorGreen, r.Range, colorReset)
	}
	line := fmt.Sprintf("%s | Wrap %s | Scroll %s | Plot %s | Help %s", state, indicator(m.wrap), indicator(m.autoscroll), indicator(m.showPlot), indicator(m.help))
	if m.summary != nil {
		return m.renderSummary() + "\n" + line
	}
	return line
}

func (m tuiModel) renderSummary() string {
	s := m.summary
	verdict := colorRed + "MISS" + colorReset
	if s.Hit {
		verdict = colorGreen + "HIT" + colorReset
	}
	return fmt.Sprintf("%s final=%s miss=%.2fm closest=%.2fm impact=(%.1f, %.1f) tof=%.2fs steps=%d max_mach=%.2f sat=%d",
		verdict, s.FinalPhase, s.MissDistance, s.ClosestApproach, s.ImpactX, s.ImpactAltitude, s.FlightTime, s.Steps, s.MaxMach, s.Saturations)
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap for the trajectory log",
		" s  toggle auto-scroll",
		" p  toggle trajectory plot",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
