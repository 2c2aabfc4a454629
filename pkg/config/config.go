package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agrolab/soilanalyzer/pkg/crop"
)

// Read policies for the serial moisture source.
const (
	ReadPolicyBounded  = "bounded"  // try up to max_lines, then fall back
	ReadPolicyBlocking = "blocking" // wait until a valid line appears
)

// Display backends.
const (
	DisplayConsole = "console"
	DisplayLCD     = "lcd"
)

// Nutrient data sources.
const (
	NutrientsMock  = "mock"  // randomized values (no NPK sensor fitted)
	NutrientsFixed = "fixed" // constants from this file
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Pins      PinConfig       `yaml:"pins"`
	Display   DisplayConfig   `yaml:"display"`
	Speech    SpeechConfig    `yaml:"speech"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Crops     []CropConfig    `yaml:"crops"`
}

// SerialConfig contains the moisture sensor link configuration.
type SerialConfig struct {
	Port        string        `yaml:"port"` // empty + auto_probe: scan for it
	BaudRate    int           `yaml:"baud_rate"`
	SettleDelay time.Duration `yaml:"settle_delay"` // wait after open, sensor MCU resets
	AutoProbe   bool          `yaml:"auto_probe"`
}

// PinConfig contains GPIO line assignments for the rotary encoder and
// the action buttons. Names are periph gpioreg names ("GPIO17").
// PredictButton may be empty, which disables the prediction action.
type PinConfig struct {
	EncoderA      string        `yaml:"encoder_a"`
	EncoderB      string        `yaml:"encoder_b"`
	AnalyzeButton string        `yaml:"analyze_button"`
	PredictButton string        `yaml:"predict_button"`
	Debounce      time.Duration `yaml:"debounce"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

// DisplayConfig contains the text display configuration.
type DisplayConfig struct {
	Backend string        `yaml:"backend"` // console | lcd
	I2CBus  string        `yaml:"i2c_bus"`
	I2CAddr uint16        `yaml:"i2c_addr"`
	Rows    int           `yaml:"rows"`
	Cols    int           `yaml:"cols"`
	Hold    time.Duration `yaml:"hold"` // how long results stay up
}

// SpeechConfig contains the voice output configuration.
type SpeechConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"` // espeak-ng voice code, e.g. "en", "hi"
	Speed    int    `yaml:"speed"`    // words per minute
}

// SensorConfig contains acquisition policy and fallback values.
type SensorConfig struct {
	ReadPolicy      string        `yaml:"read_policy"` // bounded | blocking
	MaxLines        int           `yaml:"max_lines"`
	DefaultMoisture int           `yaml:"default_moisture"`
	RetrySleep      time.Duration `yaml:"retry_sleep"` // between blocking attempts
	MockMoistureMin int           `yaml:"mock_moisture_min"`
	MockMoistureMax int           `yaml:"mock_moisture_max"`

	Nutrients       string  `yaml:"nutrients"` // mock | fixed
	MockNutrientMin int     `yaml:"mock_nutrient_min"`
	MockNutrientMax int     `yaml:"mock_nutrient_max"`
	FixedN          float32 `yaml:"fixed_n"`
	FixedP          float32 `yaml:"fixed_p"`
	FixedK          float32 `yaml:"fixed_k"`
	SoilPH          float32 `yaml:"soil_ph"` // used by the prediction tree
}

// TelemetryConfig contains the optional MQTT event publisher settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// CropConfig describes one crop in the selection menu.
type CropConfig struct {
	Name         string  `yaml:"name"`
	LocalName    string  `yaml:"local_name"`
	TargetN      float32 `yaml:"n"`
	TargetP      float32 `yaml:"p"`
	TargetK      float32 `yaml:"k"`
	DryThreshold int     `yaml:"limit"`
	Fertilizer   string  `yaml:"fertilizer"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:        "/dev/ttyUSB0",
			BaudRate:    9600,
			SettleDelay: 2 * time.Second,
			AutoProbe:   true,
		},
		Pins: PinConfig{
			EncoderA:      "GPIO17",
			EncoderB:      "GPIO27",
			AnalyzeButton: "GPIO22",
			PredictButton: "",
			Debounce:      100 * time.Millisecond,
			PollInterval:  10 * time.Millisecond,
		},
		Display: DisplayConfig{
			Backend: DisplayLCD,
			I2CBus:  "1",
			I2CAddr: 0x27,
			Rows:    2,
			Cols:    16,
			Hold:    2 * time.Second,
		},
		Speech: SpeechConfig{
			Enabled:  true,
			Language: "en",
			Speed:    160,
		},
		Sensor: SensorConfig{
			ReadPolicy:      ReadPolicyBounded,
			MaxLines:        10,
			DefaultMoisture: 400,
			RetrySleep:      200 * time.Millisecond,
			MockMoistureMin: 300,
			MockMoistureMax: 600,
			Nutrients:       NutrientsMock,
			MockNutrientMin: 10,
			MockNutrientMax: 90,
			FixedN:          40,
			FixedP:          35,
			FixedK:          30,
			SoilPH:          6.5,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Broker:   "tcp://localhost:1883",
			Topic:    "soilanalyzer/events",
			ClientID: "soil-analyzer",
		},
		Crops: []CropConfig{
			{Name: "Wheat", LocalName: "Gehun", TargetN: 50, TargetP: 30, TargetK: 20, DryThreshold: 400, Fertilizer: "NPK 20-10-10"},
			{Name: "Rice", LocalName: "Dhaan", TargetN: 60, TargetP: 30, TargetK: 20, DryThreshold: 250, Fertilizer: "Urea 46-0-0"},
			{Name: "Maize", LocalName: "Makka", TargetN: 80, TargetP: 40, TargetK: 30, DryThreshold: 350, Fertilizer: "NPK 12-32-16"},
			{Name: "Cotton", LocalName: "Kapas", TargetN: 70, TargetP: 30, TargetK: 40, DryThreshold: 450, Fertilizer: "NPK 14-35-14"},
			{Name: "Tomato", LocalName: "Tamatar", TargetN: 22, TargetP: 35, TargetK: 45, DryThreshold: 300, Fertilizer: "NPK 10-20-20"},
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Catalog builds the ordered crop catalog from the configured table.
func (c *Config) Catalog() crop.Catalog {
	profiles := make([]crop.Profile, len(c.Crops))
	for i, cc := range c.Crops {
		profiles[i] = crop.Profile{
			Name:         cc.Name,
			LocalName:    cc.LocalName,
			TargetN:      cc.TargetN,
			TargetP:      cc.TargetP,
			TargetK:      cc.TargetK,
			DryThreshold: cc.DryThreshold,
			Fertilizer:   cc.Fertilizer,
		}
	}
	return crop.NewCatalog(profiles)
}

// ensureDefaults ensures that all required fields have default values
// if missing or invalid.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate <= 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.SettleDelay <= 0 {
		c.Serial.SettleDelay = def.Serial.SettleDelay
	}

	if c.Pins.EncoderA == "" {
		c.Pins.EncoderA = def.Pins.EncoderA
	}
	if c.Pins.EncoderB == "" {
		c.Pins.EncoderB = def.Pins.EncoderB
	}
	if c.Pins.AnalyzeButton == "" {
		c.Pins.AnalyzeButton = def.Pins.AnalyzeButton
	}
	if c.Pins.Debounce <= 0 {
		c.Pins.Debounce = def.Pins.Debounce
	}
	if c.Pins.PollInterval <= 0 {
		c.Pins.PollInterval = def.Pins.PollInterval
	}

	if c.Display.Backend != DisplayConsole && c.Display.Backend != DisplayLCD {
		c.Display.Backend = def.Display.Backend
	}
	if c.Display.I2CBus == "" {
		c.Display.I2CBus = def.Display.I2CBus
	}
	if c.Display.I2CAddr == 0 {
		c.Display.I2CAddr = def.Display.I2CAddr
	}
	if c.Display.Rows <= 0 {
		c.Display.Rows = def.Display.Rows
	}
	if c.Display.Cols <= 0 {
		c.Display.Cols = def.Display.Cols
	}
	if c.Display.Hold <= 0 {
		c.Display.Hold = def.Display.Hold
	}

	if c.Speech.Language == "" {
		c.Speech.Language = def.Speech.Language
	}
	if c.Speech.Speed <= 0 {
		c.Speech.Speed = def.Speech.Speed
	}

	if c.Sensor.ReadPolicy != ReadPolicyBounded && c.Sensor.ReadPolicy != ReadPolicyBlocking {
		c.Sensor.ReadPolicy = def.Sensor.ReadPolicy
	}
	if c.Sensor.MaxLines <= 0 {
		c.Sensor.MaxLines = def.Sensor.MaxLines
	}
	if c.Sensor.DefaultMoisture <= 0 {
		c.Sensor.DefaultMoisture = def.Sensor.DefaultMoisture
	}
	if c.Sensor.RetrySleep <= 0 {
		c.Sensor.RetrySleep = def.Sensor.RetrySleep
	}
	if c.Sensor.MockMoistureMax <= c.Sensor.MockMoistureMin {
		c.Sensor.MockMoistureMin = def.Sensor.MockMoistureMin
		c.Sensor.MockMoistureMax = def.Sensor.MockMoistureMax
	}
	if c.Sensor.Nutrients != NutrientsMock && c.Sensor.Nutrients != NutrientsFixed {
		c.Sensor.Nutrients = def.Sensor.Nutrients
	}
	if c.Sensor.MockNutrientMax <= c.Sensor.MockNutrientMin {
		c.Sensor.MockNutrientMin = def.Sensor.MockNutrientMin
		c.Sensor.MockNutrientMax = def.Sensor.MockNutrientMax
	}
	if c.Sensor.SoilPH <= 0 {
		c.Sensor.SoilPH = def.Sensor.SoilPH
	}

	if c.Telemetry.Broker == "" {
		c.Telemetry.Broker = def.Telemetry.Broker
	}
	if c.Telemetry.Topic == "" {
		c.Telemetry.Topic = def.Telemetry.Topic
	}
	if c.Telemetry.ClientID == "" {
		c.Telemetry.ClientID = def.Telemetry.ClientID
	}

	if len(c.Crops) == 0 {
		c.Crops = def.Crops
	}
}
