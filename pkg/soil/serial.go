package soil

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/agrolab/soilanalyzer/pkg/config"
)

// readChunkTimeout bounds a single raw read so a silent sensor cannot
// stall a bounded acquisition indefinitely.
const readChunkTimeout = time.Second

// moisturePort is the subset of serial.Port the reader needs. Tests
// substitute a scripted implementation.
type moisturePort interface {
	io.Reader
	ResetInputBuffer() error
	Close() error
}

// SerialMoisture reads newline-terminated moisture values from the
// sensor MCU. Before every acquisition it discards buffered stale
// input so the parsed line reflects a fresh measurement.
type SerialMoisture struct {
	cfg    config.SensorConfig
	logger *zap.SugaredLogger

	port    moisturePort
	pending string
	sleep   func(time.Duration)
}

// OpenSerial opens the configured serial port, waits for the sensor MCU
// to settle, and returns a moisture source bound to it.
func OpenSerial(serialCfg config.SerialConfig, sensorCfg config.SensorConfig, logger *zap.SugaredLogger) (*SerialMoisture, error) {
	logger = logger.Named("serial")

	mode := &serial.Mode{
		BaudRate: serialCfg.BaudRate,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}

	port, err := serial.Open(serialCfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", serialCfg.Port, err)
	}

	// Short per-read timeout so bounded reads return quickly from a
	// dead port instead of hanging in Read.
	if err := port.SetReadTimeout(readChunkTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	logger.Infow("Serial connected", "port", serialCfg.Port, "baudRate", serialCfg.BaudRate)

	// The sensor MCU resets when the port opens; give it time to come up.
	time.Sleep(serialCfg.SettleDelay)

	if err := port.ResetInputBuffer(); err != nil {
		logger.Warnw("Failed to reset input buffer after settle", "error", err)
	}

	return &SerialMoisture{
		cfg:    sensorCfg,
		logger: logger,
		port:   port,
		sleep:  time.Sleep,
	}, nil
}

// Read returns the next moisture value. Transport errors and parse
// exhaustion degrade to the configured default; they never propagate.
func (s *SerialMoisture) Read(ctx context.Context) int {
	if err := s.port.ResetInputBuffer(); err != nil {
		s.logger.Warnw("Failed to reset input buffer", "error", err)
		return s.cfg.DefaultMoisture
	}
	s.pending = ""

	if s.cfg.ReadPolicy == config.ReadPolicyBlocking {
		return s.readBlocking(ctx)
	}
	return s.readBounded()
}

// Close closes the serial port.
func (s *SerialMoisture) Close() error {
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}
	return nil
}

// readBounded tries up to MaxLines lines and falls back to the default
// value if none of them parses.
func (s *SerialMoisture) readBounded() int {
	for i := 0; i < s.cfg.MaxLines; i++ {
		line, err := s.nextLine()
		if err != nil {
			s.logger.Warnw("Serial read failed", "error", err)
			return s.cfg.DefaultMoisture
		}
		if v, ok := parseMoisture(line); ok {
			return v
		}
	}

	s.logger.Debugw("No valid moisture line", "attempts", s.cfg.MaxLines)
	return s.cfg.DefaultMoisture
}

// readBlocking waits for a valid line, sleeping briefly between
// attempts. Cancellation returns the default value.
func (s *SerialMoisture) readBlocking(ctx context.Context) int {
	for {
		select {
		case <-ctx.Done():
			return s.cfg.DefaultMoisture
		default:
		}

		line, err := s.nextLine()
		if err != nil {
			s.logger.Warnw("Serial read failed", "error", err)
			return s.cfg.DefaultMoisture
		}
		if v, ok := parseMoisture(line); ok {
			return v
		}

		s.sleep(s.cfg.RetrySleep)
	}
}

// nextLine returns the next complete newline-terminated line. A read
// that times out with no data yields an empty line and nil error, which
// callers count as a failed attempt.
func (s *SerialMoisture) nextLine() (string, error) {
	buf := make([]byte, 64)

	for {
		if idx := strings.IndexByte(s.pending, '\n'); idx >= 0 {
			line := s.pending[:idx]
			s.pending = s.pending[idx+1:]
			return line, nil
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			// Read timeout, nothing buffered yet.
			return "", nil
		}
		s.pending += string(buf[:n])
	}
}

// parseMoisture accepts a line only if it is a plain non-negative
// integer. Everything else is skipped as line noise.
func parseMoisture(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}
	return v, true
}
