package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/agrolab/soilanalyzer/pkg/analyzer"
	"github.com/agrolab/soilanalyzer/pkg/config"
	"github.com/agrolab/soilanalyzer/pkg/display"
	"github.com/agrolab/soilanalyzer/pkg/input"
	"github.com/agrolab/soilanalyzer/pkg/soil"
	"github.com/agrolab/soilanalyzer/pkg/speech"
	"github.com/agrolab/soilanalyzer/pkg/telemetry"
)

var (
	configFlag  = flag.String("config", "config.yaml", "configuration file path")
	portFlag    = flag.String("p", "", "serial port override (e.g., /dev/ttyUSB0)")
	mockFlag    = flag.Bool("mock", false, "run without hardware: mock sensor, console display, terminal input")
	verboseFlag = flag.Bool("verbose", false, "show verbose logs (useful for debugging)")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*verboseFlag)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	named := logger.Named("main")

	cfg, err := config.Load(*configFlag)
	if err != nil {
		named.Fatalw("Failed to load configuration", "path", *configFlag, "error", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *mockFlag {
		cfg.Display.Backend = config.DisplayConsole
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *mockFlag, logger); err != nil {
		named.Fatalw("Exiting", "error", err)
	}

	named.Info("Shut down cleanly")
}

// run wires the appliance and drives the control loop. All acquired
// resources are released on every exit path, including interruption.
func run(ctx context.Context, cfg *config.Config, mock bool, logger *zap.SugaredLogger) error {
	named := logger.Named("main")

	if !mock {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("initialize periph host: %w", err)
		}
	}

	// The display is the one component the appliance cannot run
	// without.
	disp, err := newDisplay(cfg, mock)
	if err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	defer func() {
		disp.Clear()
		disp.Close()
	}()

	sampler := newSampler(cfg, mock, logger)
	defer sampler.Close()

	ports := analyzer.Ports{
		Display:   disp,
		Sampler:   sampler,
		Publisher: telemetry.Noop{},
	}

	if cfg.Speech.Enabled {
		ports.Speaker = speech.NewEspeak(cfg.Speech.Speed)
	} else {
		ports.Speaker = speech.Null{}
	}

	if cfg.Telemetry.Enabled {
		mq := telemetry.NewMQTT(cfg.Telemetry, logger)
		defer mq.Close()
		ports.Publisher = mq
	}

	if mock {
		term := newTermInput(os.Stdin, named)
		ports.Encoder = term
		ports.AnalyzeBtn = input.NewDebouncer(term.analyzeButton(), cfg.Pins.Debounce)
		ports.PredictBtn = input.NewDebouncer(term.predictButton(), cfg.Pins.Debounce)
	} else {
		if err := wireGPIO(cfg, &ports); err != nil {
			return err
		}
	}

	named.Infow("Soil analyzer running", "crops", len(cfg.Crops), "readPolicy", cfg.Sensor.ReadPolicy)

	return analyzer.New(cfg, ports, logger).Run(ctx)
}

func newDisplay(cfg *config.Config, mock bool) (display.Display, error) {
	if mock || cfg.Display.Backend == config.DisplayConsole {
		return display.NewConsole(os.Stdout, cfg.Display.Rows, cfg.Display.Cols), nil
	}

	bus, err := i2creg.Open(cfg.Display.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", cfg.Display.I2CBus, err)
	}
	return display.NewLCD(bus, cfg.Display.I2CAddr, cfg.Display.Rows, cfg.Display.Cols)
}

// newSampler picks the moisture source. A missing or broken sensor
// transport degrades to the mock source for the process lifetime; it
// is never fatal.
func newSampler(cfg *config.Config, mock bool, logger *zap.SugaredLogger) *soil.Sampler {
	named := logger.Named("sensor")
	nutrients := soil.NewNutrientSource(cfg.Sensor)

	if mock {
		return soil.NewSampler(mockMoisture(cfg), nutrients)
	}

	serialCfg := cfg.Serial
	if serialCfg.Port == "" && serialCfg.AutoProbe {
		serialCfg.Port = soil.ProbePort(logger, serialCfg.BaudRate)
	}
	if serialCfg.Port == "" {
		named.Warn("No sensor port found, using mock moisture data")
		return soil.NewSampler(mockMoisture(cfg), nutrients)
	}

	moisture, err := soil.OpenSerial(serialCfg, cfg.Sensor, logger)
	if err != nil {
		named.Warnw("Failed to open sensor transport, using mock moisture data", "error", err)
		return soil.NewSampler(mockMoisture(cfg), nutrients)
	}

	return soil.NewSampler(moisture, nutrients)
}

func mockMoisture(cfg *config.Config) *soil.MockMoisture {
	return soil.NewMockMoisture(cfg.Sensor.MockMoistureMin, cfg.Sensor.MockMoistureMax)
}

func wireGPIO(cfg *config.Config, ports *analyzer.Ports) error {
	pinA, err := pinByName(cfg.Pins.EncoderA)
	if err != nil {
		return err
	}
	pinB, err := pinByName(cfg.Pins.EncoderB)
	if err != nil {
		return err
	}
	encoder, err := input.NewQuadratureEncoder(pinA, pinB)
	if err != nil {
		return err
	}
	ports.Encoder = encoder

	analyzePin, err := pinByName(cfg.Pins.AnalyzeButton)
	if err != nil {
		return err
	}
	analyzeBtn, err := input.NewGPIOButton(analyzePin)
	if err != nil {
		return err
	}
	ports.AnalyzeBtn = input.NewDebouncer(analyzeBtn, cfg.Pins.Debounce)

	// The predict button is optional; leaving it unconfigured disables
	// the prediction action.
	if cfg.Pins.PredictButton != "" {
		predictPin, err := pinByName(cfg.Pins.PredictButton)
		if err != nil {
			return err
		}
		predictBtn, err := input.NewGPIOButton(predictPin)
		if err != nil {
			return err
		}
		ports.PredictBtn = input.NewDebouncer(predictBtn, cfg.Pins.Debounce)
	}

	return nil
}

func pinByName(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %s not found", name)
	}
	return pin, nil
}
