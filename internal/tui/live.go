package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skalor/trajlab/internal/dyn"
	"github.com/skalor/trajlab/internal/physics"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type liveKind int

const (
	kindGeneric liveKind = iota
	kindPendulum
	kindDoublePendulum
	kindPointMass
	kindBrachistochrone
)

// LiveView animates a system in the terminal while stepping it in
// real time with the supplied integrator.
type LiveView struct {
	sys        dyn.System
	integrator dyn.Integrator
	controller dyn.Controller
	kind       liveKind
	title      string

	x        dyn.State
	x0       dyn.State
	t        float64
	dt       float64
	duration float64
	speed    float64
	paused   bool

	trail   []point
	history []float64

	width  int
	height int
}

type point struct{ x, y float64 }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// NewLiveView wires a live session for the given system. The view
// picks its drawing style from the concrete system type.
func NewLiveView(title string, sys dyn.System, integ dyn.Integrator, ctrl dyn.Controller, x0 dyn.State, dt, duration float64) *LiveView {
	kind := kindGeneric
	switch sys.(type) {
	case *physics.Pendulum:
		kind = kindPendulum
	case *physics.DoublePendulum:
		kind = kindDoublePendulum
	case *physics.PointMass:
		kind = kindPointMass
	case *physics.Brachistochrone:
		kind = kindBrachistochrone
	}
	return &LiveView{
		sys:        sys,
		integrator: integ,
		controller: ctrl,
		kind:       kind,
		title:      title,
		x:          x0.Clone(),
		x0:         x0.Clone(),
		t:          0,
		dt:         dt,
		duration:   duration,
		speed:      1.0,
		trail:      make([]point, 0, 120),
		history:    make([]float64, 0, 60),
		width:      80,
		height:     24,
	}
}

func (v *LiveView) Init() tea.Cmd { return tick() }

func (v *LiveView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			return v, tea.Quit
		case " ", "p":
			v.paused = !v.paused
		case "r":
			v.x = v.x0.Clone()
			v.t = 0
			v.trail = v.trail[:0]
			v.history = v.history[:0]
			v.paused = false
		case "+", "=":
			v.speed = math.Min(v.speed*2, 16)
		case "-", "_":
			v.speed = math.Max(v.speed/2, 0.25)
		case "0":
			v.speed = 1.0
		}
		return v, nil
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil
	case tickMsg:
		if !v.paused && v.t < v.duration {
			steps := int(v.speed)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps; i++ {
				v.step()
			}
		}
		return v, tick()
	}
	return v, nil
}

func (v *LiveView) step() {
	u := v.controller.Compute(v.x, v.t)
	v.x = v.integrator.Step(v.sys, v.x, u, v.t, v.dt)
	v.t += v.dt

	var px, py float64
	switch v.kind {
	case kindPendulum:
		px, py = v.x[0], 0
	case kindDoublePendulum:
		px, py = v.x[0], v.x[1]
	case kindPointMass, kindBrachistochrone:
		px, py = v.x[0], v.x[1]
	default:
		px = v.x[0]
		if len(v.x) > 1 {
			py = v.x[1]
		}
	}
	v.trail = append(v.trail, point{px, py})
	if len(v.trail) > 120 {
		v.trail = v.trail[1:]
	}
	if len(v.x) > 0 {
		v.history = append(v.history, v.x[0])
		if len(v.history) > 60 {
			v.history = v.history[1:]
		}
	}
}

func (v *LiveView) View() string {
	cw := v.width - 6
	ch := v.height - 10
	if cw < 50 {
		cw = 50
	}
	if ch < 12 {
		ch = 12
	}

	canvas := make([][]rune, ch)
	for i := range canvas {
		canvas[i] = make([]rune, cw)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	switch v.kind {
	case kindPendulum:
		v.drawPendulum(canvas, cw, ch)
	case kindDoublePendulum:
		v.drawDoublePendulum(canvas, cw, ch)
	case kindPointMass, kindBrachistochrone:
		v.drawPlanar(canvas, cw, ch)
	default:
		v.drawBars(canvas, cw, ch)
	}

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if v.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(v.title), statusText))

	progress := v.t / v.duration
	if progress > 1 {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(fmt.Sprintf("%.1fs/%.0fs ×%.2g", v.t, v.duration, v.speed))))

	for _, row := range canvas {
		b.WriteString("   " + string(row) + "\n")
	}

	if h, ok := v.sys.(dyn.Hamiltonian); ok {
		b.WriteString("\n   " + dim.Render(fmt.Sprintf("E=%.4f", h.Energy(v.x))))
	}
	if len(v.x) > 0 {
		var names []string
		if l, ok := v.sys.(dyn.Labeled); ok {
			names = l.StateNames()
		}
		var s strings.Builder
		s.WriteString("   ")
		for i, val := range v.x {
			if i >= 4 {
				break
			}
			label := fmt.Sprintf("x%d", i)
			if i < len(names) {
				label = names[i]
			}
			s.WriteString(dim.Render(label+"=") + white.Render(fmt.Sprintf("%.2f", val)) + "  ")
		}
		b.WriteString("\n" + s.String())
	}
	if len(v.history) > 1 {
		b.WriteString("\n   " + cyan.Render(sparkline(v.history, 24)))
	}

	b.WriteString("\n\n" + dim.Render("   space pause  ± speed  r reset  q quit") + "\n")
	return b.String()
}

func (v *LiveView) drawPendulum(canvas [][]rune, w, h int) {
	if len(v.x) < 1 {
		return
	}
	theta := v.x[0]
	px, py := w/2, 2
	length := float64(h) * 0.65
	bx := px + int(length*math.Sin(theta))
	by := py + int(length*math.Cos(theta))

	for _, pt := range v.trail {
		tx := px + int(length*math.Sin(pt.x))
		ty := py + int(length*math.Cos(pt.x))
		set(canvas, tx, ty, '·', w, h)
	}

	set(canvas, px, py, '▼', w, h)
	drawLine(canvas, w, h, px, py, bx, by, '│')
	set(canvas, bx, by, '⬤', w, h)
}

func (v *LiveView) drawDoublePendulum(canvas [][]rune, w, h int) {
	if len(v.x) < 2 {
		return
	}
	t1, t2 := v.x[0], v.x[1]
	px, py := w/2, 1
	length := float64(h) * 0.38

	b1x := px + int(length*math.Sin(t1))
	b1y := py + int(length*math.Cos(t1))
	b2x := b1x + int(length*math.Sin(t2))
	b2y := b1y + int(length*math.Cos(t2))

	for _, pt := range v.trail {
		tx := px + int(length*math.Sin(pt.x)) + int(length*math.Sin(pt.y))
		ty := py + int(length*math.Cos(pt.x)) + int(length*math.Cos(pt.y))
		set(canvas, tx, ty, '·', w, h)
	}

	set(canvas, px, py, '▼', w, h)
	drawLine(canvas, w, h, px, py, b1x, b1y, '│')
	set(canvas, b1x, b1y, '●', w, h)
	drawLine(canvas, w, h, b1x, b1y, b2x, b2y, '│')
	set(canvas, b2x, b2y, '⬤', w, h)
}

// drawPlanar renders a body moving in the x/y plane, rescaling per
// frame so the trail stays on screen.
func (v *LiveView) drawPlanar(canvas [][]rune, w, h int) {
	if len(v.x) < 2 {
		return
	}
	minX, maxX := v.x[0], v.x[0]
	minY, maxY := v.x[1], v.x[1]
	for _, pt := range v.trail {
		minX = math.Min(minX, pt.x)
		maxX = math.Max(maxX, pt.x)
		minY = math.Min(minY, pt.y)
		maxY = math.Max(maxY, pt.y)
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX < 1e-9 {
		spanX = 1
	}
	if spanY < 1e-9 {
		spanY = 1
	}
	toCell := func(p point) (int, int) {
		cx := 2 + int((p.x-minX)/spanX*float64(w-5))
		cy := 1 + int((maxY-p.y)/spanY*float64(h-3))
		return cx, cy
	}

	for _, pt := range v.trail {
		cx, cy := toCell(pt)
		set(canvas, cx, cy, '·', w, h)
	}
	cx, cy := toCell(point{v.x[0], v.x[1]})
	set(canvas, cx, cy, '⬤', w, h)
}

func (v *LiveView) drawBars(canvas [][]rune, w, h int) {
	cy := h / 2
	for x := 2; x < w-2; x++ {
		set(canvas, x, cy, '─', w, h)
	}
	if len(v.x) == 0 {
		return
	}
	maxVal := 1.0
	for _, val := range v.x {
		if math.Abs(val) > maxVal {
			maxVal = math.Abs(val)
		}
	}
	bw := (w - 8) / len(v.x)
	if bw < 4 {
		bw = 4
	}
	for i, val := range v.x {
		bx := 4 + i*bw
		bh := int((val / maxVal) * float64(h/3))
		if bh > 0 {
			for y := cy - 1; y >= cy-bh && y >= 1; y-- {
				set(canvas, bx, y, '█', w, h)
			}
		} else {
			for y := cy + 1; y <= cy-bh && y < h-1; y++ {
				set(canvas, bx, y, '█', w, h)
			}
		}
	}
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func set(canvas [][]rune, x, y int, c rune, w, h int) {
	if x >= 0 && x < w && y >= 0 && y < h {
		canvas[y][x] = c
	}
}

func drawLine(canvas [][]rune, w, h, x1, y1, x2, y2 int, c rune) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		set(canvas, x1, y1, c, w, h)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Run starts the alternate-screen session and blocks until the user
// quits.
func Run(v *LiveView) error {
	p := tea.NewProgram(v, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
