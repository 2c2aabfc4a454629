package input

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Button reads the raw pressed state of a push-button.
type Button interface {
	Pressed() bool
}

var _ Button = (*GPIOButton)(nil)

// GPIOButton reads a button wired active-low with the internal pull-up.
type GPIOButton struct {
	pin gpio.PinIO
}

// NewGPIOButton configures the pin as a pulled-up input.
func NewGPIOButton(pin gpio.PinIO) (*GPIOButton, error) {
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure button pin %s: %w", pin.Name(), err)
	}
	return &GPIOButton{pin: pin}, nil
}

// Pressed reports whether the button is currently held down.
func (b *GPIOButton) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

// Debouncer confirms a press with a second sample after a short
// interval. A press that disappears between the two samples is
// discarded, not queued. Each button gets its own Debouncer so the two
// action buttons never interfere.
type Debouncer struct {
	btn      Button
	interval time.Duration
	sleep    func(time.Duration)
}

// NewDebouncer wraps a button with the two-sample confirmation policy.
func NewDebouncer(btn Button, interval time.Duration) *Debouncer {
	return &Debouncer{
		btn:      btn,
		interval: interval,
		sleep:    time.Sleep,
	}
}

// Confirmed reports whether the button is pressed and still pressed
// after the debounce interval.
func (d *Debouncer) Confirmed() bool {
	if !d.btn.Pressed() {
		return false
	}
	d.sleep(d.interval)
	return d.btn.Pressed()
}
