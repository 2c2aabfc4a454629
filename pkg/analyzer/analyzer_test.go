package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agrolab/soilanalyzer/pkg/config"
	"github.com/agrolab/soilanalyzer/pkg/input"
	"github.com/agrolab/soilanalyzer/pkg/soil"
	"github.com/agrolab/soilanalyzer/pkg/telemetry"
)

type fakeDisplay struct {
	frames [][2]string
}

func (d *fakeDisplay) Clear() error {
	d.frames = append(d.frames, [2]string{})
	return nil
}

func (d *fakeDisplay) WriteLine(row int, text string) error {
	d.frames[len(d.frames)-1][row] = text
	return nil
}

func (d *fakeDisplay) Close() error { return nil }

func (d *fakeDisplay) hasFrame(line1, line2 string) bool {
	for _, f := range d.frames {
		if f[0] == line1 && f[1] == line2 {
			return true
		}
	}
	return false
}

func (d *fakeDisplay) lastFrame() [2]string {
	return d.frames[len(d.frames)-1]
}

type fakeSpeaker struct {
	texts []string
	err   error
}

func (s *fakeSpeaker) Say(_ context.Context, text, _ string) error {
	s.texts = append(s.texts, text)
	return s.err
}

type fakeEncoder struct {
	steps int
}

func (e *fakeEncoder) Poll()      {}
func (e *fakeEncoder) Steps() int { return e.steps }

// scriptButton yields scripted Pressed() samples, then stays released.
type scriptButton struct {
	samples []bool
}

func (b *scriptButton) Pressed() bool {
	if len(b.samples) == 0 {
		return false
	}
	s := b.samples[0]
	b.samples = b.samples[1:]
	return s
}

type recPublisher struct {
	analyses    []telemetry.AnalysisEvent
	predictions []telemetry.PredictionEvent
}

func (p *recPublisher) PublishAnalysis(ev telemetry.AnalysisEvent) {
	p.analyses = append(p.analyses, ev)
}

func (p *recPublisher) PublishPrediction(ev telemetry.PredictionEvent) {
	p.predictions = append(p.predictions, ev)
}

func (p *recPublisher) Close() {}

// bumpMoisture returns a fixed moisture value and bumps the encoder
// mid-acquisition, simulating knob motion during a blocking action.
type bumpMoisture struct {
	v    int
	enc  *fakeEncoder
	bump int
}

func (b *bumpMoisture) Read(context.Context) int {
	if b.enc != nil {
		b.enc.steps += b.bump
	}
	return b.v
}

func (b *bumpMoisture) Close() error { return nil }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Crops = []config.CropConfig{
		{Name: "Wheat", LocalName: "Gehun", TargetN: 50, DryThreshold: 400, Fertilizer: "NPK 20-10-10"},
		{Name: "Rice", LocalName: "Dhaan", TargetN: 60, DryThreshold: 250, Fertilizer: "Urea 46-0-0"},
		{Name: "Maize", LocalName: "Makka", TargetN: 80, DryThreshold: 350, Fertilizer: "NPK 12-32-16"},
	}
	return cfg
}

type harness struct {
	machine   *Machine
	display   *fakeDisplay
	speaker   *fakeSpeaker
	encoder   *fakeEncoder
	publisher *recPublisher
}

func newHarness(cfg *config.Config, moisture soil.MoistureSource, analyzeBtn, predictBtn *scriptButton) *harness {
	h := &harness{
		display:   &fakeDisplay{},
		speaker:   &fakeSpeaker{},
		encoder:   &fakeEncoder{},
		publisher: &recPublisher{},
	}

	ports := Ports{
		Display:    h.display,
		Speaker:    h.speaker,
		Sampler:    soil.NewSampler(moisture, soil.FixedNutrients{N: 30, P: 20, K: 10}),
		Encoder:    h.encoder,
		AnalyzeBtn: input.NewDebouncer(analyzeBtn, 0),
		Publisher:  h.publisher,
	}
	if predictBtn != nil {
		ports.PredictBtn = input.NewDebouncer(predictBtn, 0)
	}

	h.machine = New(cfg, ports, zap.NewNop().Sugar())
	return h
}

// runTicks runs the machine for n loop iterations. The injected sleep
// distinguishes the poll tick from the result hold by duration.
func (h *harness) runTicks(t *testing.T, n int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := 0
	h.machine.sleep = func(d time.Duration) {
		if d != h.machine.cfg.Pins.PollInterval {
			return // result hold, not a poll tick
		}
		ticks++
		if ticks >= n {
			cancel()
		}
	}

	require.NoError(t, h.machine.Run(ctx))
}

func TestRun_AnalyzeCycle(t *testing.T) {
	cfg := testConfig()
	h := newHarness(cfg, soil.NewMockMoisture(450, 450), &scriptButton{samples: []bool{true, true}}, nil)

	h.runTicks(t, 3)

	// Transient indication, then the result, then back to the menu.
	assert.True(t, h.display.hasFrame("Analyzing...", "Reading sensors"))
	assert.True(t, h.display.hasFrame("Water: 2.5L", "Manure: 1.0Kg"))
	assert.Equal(t, [2]string{"Select Crop:", "> Wheat"}, h.display.lastFrame())
	assert.Equal(t, StateMenu, h.machine.State())

	// Readiness announcement, pre-announcement, then the result.
	require.Len(t, h.speaker.texts, 3)
	assert.Contains(t, h.speaker.texts[1], "Analyzing Wheat")
	assert.Contains(t, h.speaker.texts[2], "2.5 liters of water")

	require.Len(t, h.publisher.analyses, 1)
	ev := h.publisher.analyses[0]
	assert.Equal(t, "Wheat", ev.Crop)
	assert.Equal(t, 450, ev.Moisture)
	assert.Equal(t, float32(2.5), ev.Water)
	assert.Equal(t, float32(1.0), ev.Fertilizer)
	assert.Equal(t, "water+fertilizer", ev.Kind)
}

func TestRun_EncoderSelectsCrop(t *testing.T) {
	cfg := testConfig()
	h := newHarness(cfg, soil.NewMockMoisture(300, 300), &scriptButton{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	steps := []int{1, 2, 1, 0, -1} // forward, forward, back, back, wrap below zero
	i := 0
	h.machine.sleep = func(time.Duration) {
		if i < len(steps) {
			h.encoder.steps = steps[i]
			i++
		} else {
			cancel()
		}
	}

	require.NoError(t, h.machine.Run(ctx))

	assert.True(t, h.display.hasFrame("Select Crop:", "> Rice"))
	assert.True(t, h.display.hasFrame("Select Crop:", "> Maize"))
	// Index -1 wraps to the last crop.
	assert.Equal(t, [2]string{"Select Crop:", "> Maize"}, h.display.lastFrame())
}

func TestRun_ResyncAbsorbsMotionDuringAction(t *testing.T) {
	cfg := testConfig()
	h := newHarness(cfg, soil.NewMockMoisture(300, 300), &scriptButton{samples: []bool{true, true}}, nil)

	// The knob moves while the acquisition is blocking.
	moisture := &bumpMoisture{v: 300, enc: h.encoder, bump: 5}
	h.machine.ports.Sampler = soil.NewSampler(moisture, soil.FixedNutrients{N: 60})

	h.runTicks(t, 3)

	// Selection must not jump from the mid-action motion.
	assert.Equal(t, "Wheat", h.machine.Selected().Name)
	assert.Equal(t, [2]string{"Select Crop:", "> Wheat"}, h.display.lastFrame())
}

func TestRun_PredictCycle(t *testing.T) {
	cfg := testConfig()
	h := newHarness(cfg, soil.NewMockMoisture(200, 200), &scriptButton{}, &scriptButton{samples: []bool{true, true}})

	h.runTicks(t, 3)

	// Moisture 200 resolves to rice in the decision tree.
	assert.True(t, h.display.hasFrame("Predicting...", "Reading sensors"))
	assert.True(t, h.display.hasFrame("Best crop:", "> Rice"))
	assert.Equal(t, [2]string{"Select Crop:", "> Wheat"}, h.display.lastFrame())

	require.Len(t, h.publisher.predictions, 1)
	assert.Equal(t, "Rice", h.publisher.predictions[0].Crop)
	assert.Equal(t, 200, h.publisher.predictions[0].Moisture)
}

func TestRun_BouncyPressProducesNoAction(t *testing.T) {
	cfg := testConfig()
	// Pressed on the first sample, released on the confirmation sample.
	h := newHarness(cfg, soil.NewMockMoisture(300, 300), &scriptButton{samples: []bool{true, false}}, nil)

	h.runTicks(t, 3)

	assert.False(t, h.display.hasFrame("Analyzing...", "Reading sensors"))
	assert.Empty(t, h.publisher.analyses)
}

func TestRun_SpeechFailureIsSkipped(t *testing.T) {
	cfg := testConfig()
	h := newHarness(cfg, soil.NewMockMoisture(450, 450), &scriptButton{samples: []bool{true, true}}, nil)
	h.speaker.err = errors.New("no network")

	h.runTicks(t, 3)

	// The result still renders and the loop keeps running.
	assert.True(t, h.display.hasFrame("Water: 2.5L", "Manure: 1.0Kg"))
	assert.Len(t, h.publisher.analyses, 1)
}

func TestRun_SpeechDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Speech.Enabled = false
	h := newHarness(cfg, soil.NewMockMoisture(450, 450), &scriptButton{samples: []bool{true, true}}, nil)

	h.runTicks(t, 3)

	assert.Empty(t, h.speaker.texts)
	assert.Len(t, h.publisher.analyses, 1)
}

func TestRun_HindiRegister(t *testing.T) {
	cfg := testConfig()
	cfg.Speech.Language = "hi"
	h := newHarness(cfg, soil.NewMockMoisture(450, 450), &scriptButton{samples: []bool{true, true}}, nil)

	h.runTicks(t, 3)

	require.NotEmpty(t, h.speaker.texts)
	assert.Contains(t, h.speaker.texts[1], "Gehun")
	assert.Contains(t, h.speaker.texts[2], "paani")
}
