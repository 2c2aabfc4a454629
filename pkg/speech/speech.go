// Package speech provides the voice output port.
package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Speaker voices a text in the given language. Implementations block
// for the duration of playback. Failures are returned for the caller
// to log and skip; they never abort an action.
type Speaker interface {
	Say(ctx context.Context, text, lang string) error
}

var _ Speaker = (*Espeak)(nil)
var _ Speaker = Null{}

// Espeak synthesizes speech with espeak-ng and plays it through aplay,
// both external commands.
type Espeak struct {
	speed int
}

// NewEspeak creates a speaker with the given speech rate in words per
// minute.
func NewEspeak(speed int) *Espeak {
	return &Espeak{speed: speed}
}

// Say synthesizes and plays text. It blocks until playback finishes or
// the context is cancelled.
func (e *Espeak) Say(ctx context.Context, text, lang string) error {
	synth := exec.CommandContext(ctx, "espeak-ng", synthArgs(e.speed, lang, text)...)
	play := exec.CommandContext(ctx, "aplay", "-q")

	pipe, err := synth.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create speech pipe: %w", err)
	}
	play.Stdin = pipe

	if err := synth.Start(); err != nil {
		return fmt.Errorf("start speech synthesis: %w", err)
	}
	if err := play.Start(); err != nil {
		synth.Process.Kill()
		synth.Wait()
		return fmt.Errorf("start audio playback: %w", err)
	}

	synthErr := synth.Wait()
	playErr := play.Wait()
	if synthErr != nil {
		return fmt.Errorf("speech synthesis: %w", synthErr)
	}
	if playErr != nil {
		return fmt.Errorf("audio playback: %w", playErr)
	}
	return nil
}

// synthArgs builds the espeak-ng argument list.
func synthArgs(speed int, lang, text string) []string {
	args := []string{"-s", strconv.Itoa(speed)}
	if lang != "" {
		args = append(args, "-v", lang)
	}
	return append(args, "--stdout", text)
}

// Null is the speaker used when voice output is disabled.
type Null struct{}

// Say discards the text.
func (Null) Say(context.Context, string, string) error {
	return nil
}
