package soil

import (
	"regexp"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	probeTimeout       = 2 * time.Second
	probeReadTimeout   = 100 * time.Millisecond
	requiredValidLines = 2
)

// moistureLinePattern matches the sensor's output: one bare decimal
// value per line.
var moistureLinePattern = regexp.MustCompile(`^\d{1,4}\r?\n$`)

// ProbePort enumerates serial ports and returns the first one that
// emits moisture-sensor lines. Returns empty string if none is found.
func ProbePort(logger *zap.SugaredLogger, baudRate int) string {
	ports, err := serial.GetPortsList()
	if err != nil {
		logger.Warnw("Failed to enumerate serial ports", "error", err)
		return ""
	}

	if len(ports) == 0 {
		logger.Debug("No serial ports found")
		return ""
	}

	logger.Debugw("Scanning serial ports", "ports", ports)

	for _, portName := range ports {
		if probePort(logger, portName, baudRate) {
			logger.Infow("Found moisture sensor", "port", portName)
			return portName
		}
	}

	logger.Debug("No moisture sensor found on any port")
	return ""
}

// probePort opens a serial port and checks if it produces sensor data.
// Reads raw bytes with a short timeout so dead ports don't stall the
// scan.
func probePort(logger *zap.SugaredLogger, portName string, baudRate int) bool {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}

	conn, err := serial.Open(portName, mode)
	if err != nil {
		logger.Debugw("Skipping port (can't open)", "port", portName, "error", err)
		return false
	}
	defer conn.Close()

	if err := conn.SetReadTimeout(probeReadTimeout); err != nil {
		logger.Debugw("Skipping port (can't set timeout)", "port", portName, "error", err)
		return false
	}

	buf := make([]byte, 256)
	var accumulated string
	validLines := 0
	deadline := time.Now().Add(probeTimeout)

	for time.Now().Before(deadline) {
		n, err := conn.Read(buf)
		if err != nil {
			break
		}
		if n == 0 {
			continue
		}

		accumulated += string(buf[:n])

		for {
			idx := strings.Index(accumulated, "\n")
			if idx == -1 {
				break
			}
			line := accumulated[:idx+1]
			accumulated = accumulated[idx+1:]

			if moistureLinePattern.MatchString(line) {
				validLines++
				if validLines >= requiredValidLines {
					return true
				}
			}
		}
	}

	return false
}
