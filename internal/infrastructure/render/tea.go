package render

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/batchdl/internal/domain/download"
)

type frameMsg download.Frame

// teaModel is only touched by the bubbletea event loop.
type teaModel struct {
	formatter *Formatter
	width     int
	lines     []string
}

func newTeaModel(barWidth, width int) *teaModel {
	m := &teaModel{width: width}
	m.formatter = NewFormatter(barWidth, func() int { return m.width })
	return m
}

func (m *teaModel) Init() tea.Cmd {
	return nil
}

func (m *teaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case frameMsg:
		frame := download.Frame(msg)
		m.lines = m.formatter.Lines(frame)
		if frame.Finished() {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *teaModel) View() string {
	return joinLines(m.lines)
}

// TeaRenderer forwards frames to a bubbletea program running on its own
// goroutine. The program exits after the finished frame or on Close.
type TeaRenderer struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// NewTeaRenderer starts a program drawing to w.
func NewTeaRenderer(w io.Writer, barWidth, width int) *TeaRenderer {
	p := tea.NewProgram(newTeaModel(barWidth, width),
		tea.WithInput(nil),
		tea.WithOutput(w),
		tea.WithoutSignalHandler(),
	)

	r := &TeaRenderer{program: p, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		_, r.err = p.Run()
	}()
	return r
}

// Render implements port.Renderer. It returns once the program has
// accepted the frame, or immediately if the program has exited.
func (r *TeaRenderer) Render(frame download.Frame) {
	r.program.Send(frameMsg(frame))
}

// Close stops the program and waits for the final view to be flushed.
func (r *TeaRenderer) Close() error {
	r.program.Quit()
	<-r.done
	return r.err
}
