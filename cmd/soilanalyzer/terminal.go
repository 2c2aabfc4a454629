package main

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// termInput emulates the knob and buttons from a terminal when running
// without hardware. "+" and "-" turn the knob, "a" presses the analyze
// button, "p" the predict button.
type termInput struct {
	mu      sync.Mutex
	steps   int
	analyze int
	predict int
}

// termButton exposes one emulated button. A keyed press stays down for
// exactly the two debounce samples.
type termButton struct {
	t       *termInput
	predict bool
}

func newTermInput(r io.Reader, logger *zap.SugaredLogger) *termInput {
	t := &termInput{}

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			switch strings.TrimSpace(scanner.Text()) {
			case "+":
				t.mu.Lock()
				t.steps++
				t.mu.Unlock()
			case "-":
				t.mu.Lock()
				t.steps--
				t.mu.Unlock()
			case "a":
				t.mu.Lock()
				t.analyze = 2
				t.mu.Unlock()
			case "p":
				t.mu.Lock()
				t.predict = 2
				t.mu.Unlock()
			default:
				logger.Info("Terminal input: + / - turn the knob, a analyzes, p predicts")
			}
		}
	}()

	return t
}

func (t *termInput) Poll() {}

func (t *termInput) Steps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps
}

func (t *termInput) analyzeButton() *termButton {
	return &termButton{t: t}
}

func (t *termInput) predictButton() *termButton {
	return &termButton{t: t, predict: true}
}

func (b *termButton) Pressed() bool {
	b.t.mu.Lock()
	defer b.t.mu.Unlock()

	count := &b.t.analyze
	if b.predict {
		count = &b.t.predict
	}
	if *count == 0 {
		return false
	}
	*count--
	return true
}
