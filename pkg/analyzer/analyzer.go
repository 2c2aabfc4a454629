// Package analyzer runs the menu state machine: crop selection via the
// rotary encoder, and the measurement actions triggered by the
// buttons.
package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agrolab/soilanalyzer/pkg/config"
	"github.com/agrolab/soilanalyzer/pkg/crop"
	"github.com/agrolab/soilanalyzer/pkg/display"
	"github.com/agrolab/soilanalyzer/pkg/input"
	"github.com/agrolab/soilanalyzer/pkg/recommend"
	"github.com/agrolab/soilanalyzer/pkg/soil"
	"github.com/agrolab/soilanalyzer/pkg/speech"
	"github.com/agrolab/soilanalyzer/pkg/telemetry"
)

// State identifies what the machine is doing. Actions run inline in
// the polling loop, so while Analyzing or Predicting no input is
// processed; the machine always returns to Menu afterwards.
type State int

const (
	StateMenu State = iota
	StateAnalyzing
	StatePredicting
)

// Ports are the collaborators the machine drives. PredictBtn may be
// nil, which disables the prediction action.
type Ports struct {
	Display    display.Display
	Speaker    speech.Speaker
	Sampler    *soil.Sampler
	Encoder    input.Encoder
	AnalyzeBtn *input.Debouncer
	PredictBtn *input.Debouncer
	Publisher  telemetry.Publisher
}

// Machine is the single-threaded control loop. All mutable state is
// owned by the loop goroutine; nothing here is safe for concurrent
// use.
type Machine struct {
	cfg     *config.Config
	catalog crop.Catalog
	ports   Ports
	dial    *input.Dial
	state   State
	logger  *zap.SugaredLogger
	sleep   func(time.Duration)
}

// New wires a machine over the given ports.
func New(cfg *config.Config, ports Ports, logger *zap.SugaredLogger) *Machine {
	catalog := cfg.Catalog()
	return &Machine{
		cfg:     cfg,
		catalog: catalog,
		ports:   ports,
		dial:    input.NewDial(catalog.Len()),
		state:   StateMenu,
		logger:  logger.Named("analyzer"),
		sleep:   time.Sleep,
	}
}

// State returns the current machine state.
func (m *Machine) State() State {
	return m.state
}

// Selected returns the currently selected crop profile.
func (m *Machine) Selected() crop.Profile {
	return m.catalog.At(m.dial.Index())
}

// Run polls inputs until the context is cancelled. Each tick reads the
// encoder and both buttons; a confirmed press runs its action inline,
// which suspends polling for the action's duration.
func (m *Machine) Run(ctx context.Context) error {
	m.speak(ctx, readyText(m.cfg.Speech.Language))
	m.showMenu()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m.ports.Encoder.Poll()
		if _, moved := m.dial.Apply(m.ports.Encoder.Steps()); moved {
			m.showMenu()
		}

		if m.ports.AnalyzeBtn.Confirmed() {
			m.analyze(ctx)
			m.finishAction()
		}

		if m.ports.PredictBtn != nil && m.ports.PredictBtn.Confirmed() {
			m.predict(ctx)
			m.finishAction()
		}

		m.sleep(m.cfg.Pins.PollInterval)
	}
}

// analyze runs a full recommendation cycle for the selected crop.
func (m *Machine) analyze(ctx context.Context) {
	m.state = StateAnalyzing
	profile := m.Selected()

	m.render("Analyzing...", "Reading sensors")
	m.speak(ctx, analyzingText(profile, m.cfg.Speech.Language))

	reading := m.ports.Sampler.Acquire(ctx)
	res := recommend.Evaluate(profile, reading)

	m.logger.Infow("Analysis complete",
		"crop", profile.Name,
		"moisture", reading.Moisture,
		"n", reading.N,
		"water", res.Water,
		"fertilizer", res.Fertilizer,
		"kind", res.Kind.String())

	m.render(recommend.DisplayLines(res))
	m.speak(ctx, recommend.Speech(profile, res, m.cfg.Speech.Language))

	m.ports.Publisher.PublishAnalysis(telemetry.AnalysisEvent{
		Crop:       profile.Name,
		Moisture:   reading.Moisture,
		N:          reading.N,
		P:          reading.P,
		K:          reading.K,
		Water:      res.Water,
		Fertilizer: res.Fertilizer,
		Kind:       res.Kind.String(),
		Timestamp:  time.Now(),
	})

	m.sleep(m.cfg.Display.Hold)
}

// predict runs a crop prediction cycle over the current soil reading
// and the configured soil pH.
func (m *Machine) predict(ctx context.Context) {
	m.state = StatePredicting

	m.render("Predicting...", "Reading sensors")

	reading := m.ports.Sampler.Acquire(ctx)
	pred := crop.Predict(crop.Sample{
		N:        reading.N,
		P:        reading.P,
		K:        reading.K,
		PH:       m.cfg.Sensor.SoilPH,
		Moisture: reading.Moisture,
	})

	m.logger.Infow("Prediction complete",
		"moisture", reading.Moisture,
		"n", reading.N,
		"crop", pred.Label)

	m.render(recommend.PredictionLines(pred))
	m.speak(ctx, recommend.PredictionSpeech(pred, m.cfg.Speech.Language))

	m.ports.Publisher.PublishPrediction(telemetry.PredictionEvent{
		Crop:      pred.Label,
		Moisture:  reading.Moisture,
		Timestamp: time.Now(),
	})

	m.sleep(m.cfg.Display.Hold)
}

// finishAction returns to the menu and absorbs any encoder motion that
// happened while the action was blocking, so the selection doesn't
// jump.
func (m *Machine) finishAction() {
	m.state = StateMenu
	m.showMenu()
	m.ports.Encoder.Poll()
	m.dial.Resync(m.ports.Encoder.Steps())
}

func (m *Machine) showMenu() {
	m.render("Select Crop:", "> "+m.Selected().Name)
}

// render clears the display and writes both lines. Display write
// failures are logged and otherwise ignored; losing one frame is
// preferable to aborting an action.
func (m *Machine) render(line1, line2 string) {
	if err := m.ports.Display.Clear(); err != nil {
		m.logger.Warnw("Failed to clear display", "error", err)
		return
	}
	if err := m.ports.Display.WriteLine(0, line1); err != nil {
		m.logger.Warnw("Failed to write display line", "row", 0, "error", err)
	}
	if err := m.ports.Display.WriteLine(1, line2); err != nil {
		m.logger.Warnw("Failed to write display line", "row", 1, "error", err)
	}
}

// speak voices a text, skipping silently when speech is disabled.
// Failures (no network, no audio device) are logged and skipped; the
// display output already carries the result.
func (m *Machine) speak(ctx context.Context, text string) {
	if !m.cfg.Speech.Enabled {
		return
	}
	if err := m.ports.Speaker.Say(ctx, text, m.cfg.Speech.Language); err != nil {
		m.logger.Warnw("Speech failed, skipping", "error", err)
	}
}

func readyText(lang string) string {
	if lang == recommend.LanguageHindi {
		return "Smart soil analyzer shuru ho gaya hai."
	}
	return "Soil analyzer ready."
}

func analyzingText(p crop.Profile, lang string) string {
	if lang == recommend.LanguageHindi {
		name := p.LocalName
		if name == "" {
			name = p.Name
		}
		return name + " ka vishleshan ho raha hai. Kripya pratiksha karein."
	}
	return "Analyzing " + p.Name + ". Please wait."
}
