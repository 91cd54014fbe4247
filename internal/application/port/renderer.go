package port

import "github.com/bnema/batchdl/internal/domain/download"

// Renderer draws a batch frame. Render is called with the batch lock held,
// so implementations never see two frames at once and must not block on
// other workers.
type Renderer interface {
	Render(frame download.Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(frame download.Frame)

// Render implements Renderer.
func (f RendererFunc) Render(frame download.Frame) {
	f(frame)
}
