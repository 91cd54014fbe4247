package logging

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// ConsoleGate forwards log lines to the console. While muted, only lines at
// or above the floor level get through; a live progress display owns the
// terminal during that time.
type ConsoleGate struct {
	mu    sync.Mutex
	w     io.Writer
	floor zerolog.Level
	muted int
}

// NewConsoleGate wraps w. floor is the lowest level still written while muted.
func NewConsoleGate(w io.Writer, floor zerolog.Level) *ConsoleGate {
	return &ConsoleGate{w: w, floor: floor}
}

// Mute holds back lines below the floor until the returned func is called.
// Mutes nest.
func (g *ConsoleGate) Mute() (unmute func()) {
	g.mu.Lock()
	g.muted++
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.muted--
			g.mu.Unlock()
		})
	}
}

// Muted reports whether the gate currently holds back low-level lines.
func (g *ConsoleGate) Muted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.muted > 0
}

// Write implements io.Writer. Lines without a level are treated as below
// the floor.
func (g *ConsoleGate) Write(p []byte) (int, error) {
	return g.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (g *ConsoleGate) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.muted > 0 && (level < g.floor || level == zerolog.NoLevel) {
		return len(p), nil
	}
	return g.w.Write(p)
}
