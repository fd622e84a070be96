package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/thermobox/internal/config"
	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/experiment"
	"github.com/san-kum/thermobox/internal/metrics"
	"github.com/san-kum/thermobox/internal/physics"
	"github.com/san-kum/thermobox/internal/viz"
)

const (
	frameInterval = 16 * time.Millisecond
	historyLen    = 120
	// wall temperature and reducer keys scale by this factor
	stepFactor = 1.25
	maxBars    = 16
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	cfg      *config.Config
	registry *experiment.Registry
	chamber  *physics.Chamber
	settings physics.Settings
	run      dynamo.RunState
	styles   viz.Styles

	frame     dynamo.Frame
	last      dynamo.StepStats
	total     dynamo.StepStats
	meanTemp  *metrics.MeanTemperature
	history   []float64
	hits      []float64
	speeds    []float64
	lastFrame time.Time
	fps       float64
	err       error

	width  int
	height int
}

// New builds the interactive model. cfg is clamped in place and every
// adjusted field is logged to logger before the alternate screen opens.
func New(cfg *config.Config, logger *log.Logger) (*model, error) {
	if err := cfg.Clamp(); err != nil {
		logger.Warn("config values clamped", "err", err)
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(log.New(io.Discard)))
	if err != nil {
		return nil, err
	}

	m := &model{
		cfg:      cfg,
		registry: experiment.NewRegistry(),
		chamber:  exp.Chamber(),
		settings: exp.Settings(),
		run:      dynamo.Running,
		styles:   viz.NewStyles(viz.Themes[0]),
		meanTemp: metrics.NewMeanTemperature(),
		history:  make([]float64, 0, historyLen),
		width:    100,
		height:   32,
	}
	m.observe()
	return m, nil
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.step(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

// step advances the chamber by the wall-clock time since the previous
// frame. Nothing moves while paused.
func (m *model) step(now time.Time) {
	if m.run == dynamo.Paused {
		m.lastFrame = time.Time{}
		return
	}

	dt := m.cfg.Dt
	if !m.lastFrame.IsZero() {
		dt = now.Sub(m.lastFrame).Seconds()
		if dt > 0 {
			m.fps = 1.0 / dt
		}
	}
	m.lastFrame = now

	stats, err := m.chamber.Tick(m.settings, dt)
	m.last = stats
	m.total = m.total.Add(stats)
	m.hits = append(m.hits, float64(stats.Resolved))
	if len(m.hits) > historyLen {
		m.hits = m.hits[1:]
	}
	if err != nil {
		m.err = err
		m.run = dynamo.Paused
	}
	m.observe()
}

func (m *model) observe() {
	m.chamber.Snapshot(&m.frame)
	m.speeds = m.frame.Speeds(m.speeds)

	m.meanTemp.Reset()
	m.meanTemp.Observe(&m.frame)
	m.history = append(m.history, m.meanTemp.Value())
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
}

func scaleClamped(v, factor, lo, hi float64) float64 {
	return math.Min(math.Max(v*factor, lo), hi)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.run = m.run.Toggle()
	case "t":
		m.settings.ThermalExchange = !m.settings.ThermalExchange
	case "w":
		m.scaleWalls(stepFactor)
	case "W":
		m.scaleWalls(1 / stepFactor)
	case "]":
		m.settings.Reducer = scaleClamped(m.settings.Reducer, stepFactor, config.MinReducer, config.MaxReducer)
	case "[":
		m.settings.Reducer = scaleClamped(m.settings.Reducer, 1/stepFactor, config.MinReducer, config.MaxReducer)
	case "b":
		next := m.registry.NextBroadPhase(m.chamber.BroadPhase().Name())
		if bp, err := m.registry.GetBroadPhase(next); err == nil {
			m.chamber.SetBroadPhase(bp)
		}
	case "c":
		m.styles = viz.NewStyles(viz.NextTheme(m.styles.Theme.Name))
	case "r":
		m.reset()
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m *model) scaleWalls(factor float64) {
	for i, t := range m.settings.WallTemperatures {
		m.settings.WallTemperatures[i] = scaleClamped(t, factor, config.MinWallTemperature, config.MaxWallTemperature)
	}
}

// reset starts a new batch from the configuration. Live setting changes
// are kept.
func (m *model) reset() {
	setup, err := m.cfg.ToSetup()
	if err == nil {
		setup.Reducer = m.settings.Reducer
		err = m.chamber.Reset(setup)
	}
	m.err = err
	m.total = dynamo.StepStats{}
	m.last = dynamo.StepStats{}
	m.history = m.history[:0]
	m.hits = m.hits[:0]
	m.lastFrame = time.Time{}
	m.observe()
}

func (m model) View() string {
	s := m.styles

	var b strings.Builder
	b.WriteString("\n  " + viz.GradientText("t h e r m o b o x", s.Theme.Cold, s.Theme.Hot) + "  ")
	if m.run == dynamo.Running {
		b.WriteString(s.Running.Render("● running"))
	} else {
		b.WriteString(s.Paused.Render("○ paused"))
	}
	b.WriteString(s.Label.Render(fmt.Sprintf("  t=%.1fs  tick %d  %.0ffps", m.frame.Time, m.frame.Tick, m.fps)))
	b.WriteString("\n\n")

	rule := viz.Separator(36, s.Hint)
	side := lipgloss.JoinVertical(lipgloss.Left, m.viewSettings(), rule, m.viewHistogram(), rule, m.viewHistory())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.viewChamber(), "  ", side))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n  " + s.Paused.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + s.Hint.Render("  space pause  t thermal  w/W wall temp  [/] reducer  b broad phase  c colours  r reset  q quit") + "\n")
	return b.String()
}

func (m model) canvasSize() (int, int) {
	cw := max((m.width-4)*3/5, 20)
	// keep the enclosure aspect ratio: a cell is 2x4 sub-pixels, roughly
	// twice as tall as wide on screen
	ch := int(float64(cw) * physics.Enclosure.Height() / physics.Enclosure.Width() / 2)
	ch = min(max(ch, 6), max(m.height-10, 6))
	return cw, ch
}

func (m model) viewChamber() string {
	cw, ch := m.canvasSize()
	canvas := viz.NewCanvas(cw, ch)
	canvas.Plot(m.frame.Positions, physics.Enclosure)
	return m.styles.Chamber.Render(m.styles.Gas.Render(strings.Join(canvas.Lines(), "\n")))
}

func (m model) viewSettings() string {
	s := m.styles
	row := func(label, value string) string {
		return s.Label.Render(fmt.Sprintf("%-12s", label)) + s.Value.Render(value) + "\n"
	}

	thermal := "off"
	if m.settings.ThermalExchange {
		thermal = "on"
	}

	var b strings.Builder
	b.WriteString(row("particles", fmt.Sprintf("%d", m.frame.Len())))
	b.WriteString(row("mean temp", fmt.Sprintf("%.2f K", m.meanTemp.Value())))
	b.WriteString(row("wall temp", fmt.Sprintf("%.2f K", wallMean(m.settings))))
	b.WriteString(row("thermal", thermal))
	b.WriteString(row("reducer", fmt.Sprintf("%.3f", m.settings.Reducer)))
	b.WriteString(row("boundary", m.settings.Boundary.String()))
	b.WriteString(row("broad phase", m.chamber.BroadPhase().Name()))
	b.WriteString(row("wall hits", fmt.Sprintf("%d", m.total.WallHits)))
	b.WriteString(row("collisions", fmt.Sprintf("%d", m.total.Resolved)))
	b.WriteString(row("per tick", viz.Sparkline(m.hits, 16)))
	b.WriteString(s.Label.Render(fmt.Sprintf("%-12s", "equilibrium")) +
		viz.ProgressBar(equilibrium(m.meanTemp.Value(), wallMean(m.settings)), 16, s.Hot, s.Hint) + "\n")
	return b.String()
}

// equilibrium is how close the gas is to the mean wall temperature, 1
// meaning equal.
func equilibrium(gas, wall float64) float64 {
	if gas <= 0 || wall <= 0 {
		return 0
	}
	return math.Min(gas, wall) / math.Max(gas, wall)
}

func wallMean(s physics.Settings) float64 {
	sum := 0.0
	for _, t := range s.WallTemperatures {
		sum += t
	}
	return sum / float64(len(s.WallTemperatures))
}

func (m model) viewHistogram() string {
	bins := min(m.cfg.HistogramBins, maxBars)
	buckets := metrics.Histogram(m.speeds, bins)
	lines := viz.HistogramBars(buckets, 24, m.styles.Hot)
	if len(lines) == 0 {
		return m.styles.Label.Render("no particles")
	}
	return m.styles.Label.Render("speed distribution") + "\n" + strings.Join(lines, "\n")
}

func (m model) viewHistory() string {
	if len(m.history) < 2 {
		return ""
	}
	plot := asciigraph.Plot(m.history,
		asciigraph.Height(6),
		asciigraph.Width(36),
		asciigraph.Precision(1),
		asciigraph.Caption("mean temperature (K)"))
	return m.styles.Cold.Render(plot)
}

func Run(cfg *config.Config, logger *log.Logger) error {
	m, err := New(cfg, logger)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
