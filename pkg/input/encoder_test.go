package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// setState drives both test pins to one quadrature state (bit 1 = A,
// bit 0 = B) and polls the encoder once.
func setState(e *QuadratureEncoder, a, b *gpiotest.Pin, state uint8) {
	a.L = gpio.Level(state&2 != 0)
	b.L = gpio.Level(state&1 != 0)
	e.Poll()
}

func TestQuadratureEncoder_FullCycle(t *testing.T) {
	a := &gpiotest.Pin{N: "GPIO17", L: gpio.Low}
	b := &gpiotest.Pin{N: "GPIO27", L: gpio.Low}

	e, err := NewQuadratureEncoder(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Steps())

	// One full Gray-code cycle in one direction.
	for _, s := range []uint8{1, 3, 2, 0} {
		setState(e, a, b, s)
	}
	assert.Equal(t, -4, e.Steps())

	// Same cycle in the opposite direction cancels it out.
	for _, s := range []uint8{2, 3, 1, 0} {
		setState(e, a, b, s)
	}
	assert.Equal(t, 0, e.Steps())
}

func TestQuadratureEncoder_IdleDoesNotDrift(t *testing.T) {
	a := &gpiotest.Pin{N: "GPIO17", L: gpio.Low}
	b := &gpiotest.Pin{N: "GPIO27", L: gpio.Low}

	e, err := NewQuadratureEncoder(a, b)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		e.Poll()
	}
	assert.Equal(t, 0, e.Steps())
}

// A transition where both channels flip at once is noise and must not
// move the counter.
func TestQuadratureEncoder_IgnoresInvalidTransition(t *testing.T) {
	a := &gpiotest.Pin{N: "GPIO17", L: gpio.Low}
	b := &gpiotest.Pin{N: "GPIO27", L: gpio.Low}

	e, err := NewQuadratureEncoder(a, b)
	require.NoError(t, err)

	setState(e, a, b, 3) // 00 -> 11
	assert.Equal(t, 0, e.Steps())
}

func TestGPIOButton_Pressed(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO22", L: gpio.High}

	btn, err := NewGPIOButton(pin)
	require.NoError(t, err)

	// Pull-up wiring: high is released, low is pressed.
	assert.False(t, btn.Pressed())
	pin.L = gpio.Low
	assert.True(t, btn.Pressed())
}
