// Package input decodes the rotary encoder and debounces the action
// buttons.
package input

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Encoder exposes a monotonic signed step counter derived from
// quadrature signals. Poll must be called from the main loop tick to
// advance the counter.
type Encoder interface {
	Poll()
	Steps() int
}

var _ Encoder = (*QuadratureEncoder)(nil)

// quadratureDeltas maps (previous state << 2 | current state) to a step
// delta. Invalid transitions (both channels flipping at once) count as
// zero.
var quadratureDeltas = [16]int{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

// QuadratureEncoder polls two GPIO lines and accumulates signed steps.
type QuadratureEncoder struct {
	a, b  gpio.PinIO
	state uint8
	steps int
}

// NewQuadratureEncoder configures both pins as pulled-up inputs and
// samples the initial state.
func NewQuadratureEncoder(a, b gpio.PinIO) (*QuadratureEncoder, error) {
	for _, pin := range []gpio.PinIO{a, b} {
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure encoder pin %s: %w", pin.Name(), err)
		}
	}

	e := &QuadratureEncoder{a: a, b: b}
	e.state = e.sample()
	return e, nil
}

// Poll samples both channels and applies the transition to the step
// counter.
func (e *QuadratureEncoder) Poll() {
	current := e.sample()
	if current == e.state {
		return
	}
	e.steps += quadratureDeltas[e.state<<2|current]
	e.state = current
}

// Steps returns the accumulated step count.
func (e *QuadratureEncoder) Steps() int {
	return e.steps
}

func (e *QuadratureEncoder) sample() uint8 {
	var s uint8
	if e.a.Read() == gpio.High {
		s |= 2
	}
	if e.b.Read() == gpio.High {
		s |= 1
	}
	return s
}
