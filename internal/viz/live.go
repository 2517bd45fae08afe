package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/meshsim/internal/controller"
	"github.com/san-kum/meshsim/internal/physics"
)

const (
	canvasWidth     = 72
	canvasHeight    = 26
	fps             = 60
	historyCapacity = 300
	rotateStep      = 0.1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type Options struct {
	Title string
	Dt    float32
	Theme string
	Log   *zap.Logger
}

// Model is the interactive viewer. It is the only owner of the controller
// while the program runs.
type Model struct {
	ctrl     *controller.Controller
	title    string
	dt       float32
	substeps int
	log      *zap.Logger

	canvas *Canvas
	cam    *Camera
	cursor *Cursor
	step   float32
	theme  Theme
	st     styles

	running  bool
	unstable bool
	showHelp bool
	selected uint32
	grabbing bool
	t        float64
	frames   int
	energy   []float64
}

func NewModel(ctrl *controller.Controller, opts Options) *Model {
	if opts.Dt <= 0 {
		opts.Dt = physics.DefaultTimeStep
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	substeps := int(math.Round(1.0 / fps / float64(opts.Dt)))
	if substeps < 1 {
		substeps = 1
	}

	cam := NewCamera()
	cam.Fit(ctrl.Mesh().Bounds())
	theme := GetTheme(opts.Theme)

	return &Model{
		ctrl:     ctrl,
		title:    opts.Title,
		dt:       opts.Dt,
		substeps: substeps,
		log:      opts.Log,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		cam:      cam,
		cursor:   NewCursor(fps, 6.0, 1.0),
		step:     cam.Radius * 0.05,
		theme:    theme,
		st:       newStyles(theme),
		running:  true,
		energy:   make([]float64, 0, historyCapacity),
	}
}

func (m *Model) Init() tea.Cmd { return tick() }

// Update handles input events and advances the simulation on ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case TickMsg:
		m.advance()
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.reset()
	case "tab":
		m.selectNext()
	case "enter":
		m.toggleGrab()
	case "up", "w":
		m.nudge(mgl32.Vec3{0, m.step, 0})
	case "down", "s":
		m.nudge(mgl32.Vec3{0, -m.step, 0})
	case "left", "a":
		m.nudge(mgl32.Vec3{-m.step, 0, 0})
	case "right", "d":
		m.nudge(mgl32.Vec3{m.step, 0, 0})
	case "pgup":
		m.nudge(mgl32.Vec3{0, 0, m.step})
	case "pgdown":
		m.nudge(mgl32.Vec3{0, 0, -m.step})
	case "x":
		m.cam.RotateX(rotateStep)
	case "X":
		m.cam.RotateX(-rotateStep)
	case "y":
		m.cam.RotateY(rotateStep)
	case "Y":
		m.cam.RotateY(-rotateStep)
	case "+", "=":
		m.cam.ZoomIn()
	case "-", "_":
		m.cam.ZoomOut()
	case "t":
		m.theme = NextTheme(m.theme)
		m.st = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) advance() {
	if !m.running || m.unstable {
		return
	}
	if m.grabbing {
		p := m.cursor.Step()
		m.ctrl.DragMove(p.X(), p.Y(), p.Z())
	}
	for i := 0; i < m.substeps; i++ {
		m.ctrl.Tick(m.dt)
		m.t += float64(m.dt)
	}
	m.frames++

	if !physics.Valid(m.ctrl.Mesh()) {
		m.unstable = true
		m.log.Warn("simulation diverged, press r to reset", zap.Float64("t", m.t))
		return
	}

	m.energy = append(m.energy, m.ctrl.Energy().Total)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) selectNext() {
	if m.grabbing || m.ctrl.VertexCount() == 0 {
		return
	}
	m.selected = (m.selected + 1) % uint32(m.ctrl.VertexCount())
}

func (m *Model) toggleGrab() {
	if m.grabbing {
		m.ctrl.DragEnd()
		m.grabbing = false
		return
	}
	v, err := m.ctrl.Mesh().Vertex(int(m.selected))
	if err != nil {
		return
	}
	m.cursor.Jump(v.Position)
	if err := m.ctrl.DragStart(m.selected, v.Position.X(), v.Position.Y(), v.Position.Z()); err != nil {
		m.log.Warn("drag start failed", zap.Error(err))
		return
	}
	m.grabbing = true
}

func (m *Model) nudge(d mgl32.Vec3) {
	if m.grabbing {
		m.cursor.Nudge(d)
	}
}

func (m *Model) reset() {
	m.ctrl.Reset()
	m.grabbing = false
	m.unstable = false
	m.t = 0
	m.frames = 0
	m.energy = m.energy[:0]
}

func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.DotSize()
	verts := m.ctrl.Mesh().Vertices

	for _, s := range m.ctrl.Engine().Springs {
		x1, y1, _, ok1 := m.cam.Project(verts[s.A].Position, w, h)
		x2, y2, _, ok2 := m.cam.Project(verts[s.B].Position, w, h)
		if ok1 || ok2 {
			m.canvas.DrawLine(x1, y1, x2, y2)
		}
	}
	for _, v := range verts {
		if v.Pinned() {
			if x, y, _, ok := m.cam.Project(v.Position, w, h); ok {
				m.canvas.Blob(x, y, 0)
			}
		}
	}
	if int(m.selected) < len(verts) {
		if x, y, _, ok := m.cam.Project(verts[m.selected].Position, w, h); ok {
			m.canvas.Blob(x, y, 1)
		}
	}
	if m.grabbing {
		if x, y, _, ok := m.cam.Project(m.cursor.Target, w, h); ok {
			m.canvas.DrawLine(x-3, y, x+3, y)
			m.canvas.DrawLine(x, y-3, x, y+3)
		}
	}
}

func (m *Model) status() string {
	switch {
	case m.unstable:
		return m.st.failed.Render("UNSTABLE")
	case !m.running:
		return m.st.paused.Render("PAUSED")
	case m.grabbing:
		return m.st.running.Render(fmt.Sprintf("DRAGGING #%d", m.selected))
	default:
		return m.st.running.Render("RUNNING")
	}
}

func (m *Model) row(label, value string) string {
	return m.st.label.Render(label) + m.st.value.Render(value) + "\n"
}

// View renders the canvas beside the stats panel.
func (m *Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n\n")
	}

	energy := 0.0
	if len(m.energy) > 0 {
		energy = m.energy[len(m.energy)-1]
	}
	eng := m.ctrl.Engine()
	s.WriteString(m.row("Time", fmt.Sprintf("%.2fs", m.t)))
	s.WriteString(m.row("Energy", fmt.Sprintf("%.3f", energy)))
	s.WriteString(m.row("Vertices", fmt.Sprintf("%d", m.ctrl.VertexCount())))
	s.WriteString(m.row("Springs", fmt.Sprintf("%d", m.ctrl.SpringCount())))
	s.WriteString(m.row("Stiffness", fmt.Sprintf("%.0f", eng.Stiffness)))
	s.WriteString(m.row("Damping", fmt.Sprintf("%.1f", eng.Damping)))
	s.WriteString(m.row("Release", m.ctrl.Release().String()))
	s.WriteString(m.row("Max strain", fmt.Sprintf("%.1f%%", eng.MaxStretch(m.ctrl.Mesh())*100)))

	s.WriteString(m.st.help.Render("SP:Pause R:Reset Q:Quit ?:Help\nTab:Select Enter:Grab ←↑↓→:Move"))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.st.canvas.Render(m.canvas.String()),
		m.st.stats.Render(s.String()),
	)
	if m.showHelp {
		return m.st.active.Render(helpText) + "\n" + body
	}
	return body
}

const helpText = `
  Space        pause / resume
  R            reset to rest pose
  Tab          select next vertex
  Enter        grab / release selected vertex
  Arrows/WASD  move grab target (X/Y)
  PgUp/PgDn    move grab target (Z)
  X/Y          rotate camera (shift reverses)
  +/-          zoom
  T            cycle theme
  Q            quit
`

// Run starts the viewer full-screen and blocks until the user quits.
func Run(ctrl *controller.Controller, opts Options) error {
	_, err := tea.NewProgram(NewModel(ctrl, opts), tea.WithAltScreen()).Run()
	return err
}
