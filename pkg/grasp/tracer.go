package grasp

import "github.com/seagrove/graspkit/pkg/field"

// Tracer observes a contact search as it runs. It exists for
// diagnostics and visualization only; implementations must not assume
// any effect on the returned results. The default tracer is a no-op.
type Tracer interface {
	// Step is called for every sample along a line of action with the
	// field value in effect at that sample (the carried previous value
	// when the sample is out of bounds).
	Step(index int, c field.Cell, tsdf float64)
	// Contact is called when a line records its contact point.
	Contact(index int, c field.Cell, normal field.Vec2)
}

type nopTracer struct{}

func (nopTracer) Step(int, field.Cell, float64)       {}
func (nopTracer) Contact(int, field.Cell, field.Vec2) {}

type config struct {
	tracer Tracer
}

// Option configures a contact search.
type Option func(*config)

// WithTracer installs a search observer.
func WithTracer(t Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}
