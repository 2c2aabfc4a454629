package display

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// PCF8574 backpack bit assignments.
const (
	lcdRS        = 0x01
	lcdEnable    = 0x04
	lcdBacklight = 0x08
)

// HD44780 commands.
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x06 // increment, no shift
	cmdDisplayOn   = 0x0C // display on, cursor off
	cmdFunctionSet = 0x28 // 4-bit, 2 lines, 5x8 font
	cmdSetDDRAM    = 0x80
)

// rowOffsets maps display rows to DDRAM addresses for up to four rows.
var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

// LCD drives an HD44780 character display behind a PCF8574 I2C
// backpack in 4-bit mode.
type LCD struct {
	dev  i2c.Dev
	rows int
	cols int
}

// NewLCD initializes the display. An error here is fatal for the
// appliance: without a display there is no user interface at all.
func NewLCD(bus i2c.Bus, addr uint16, rows, cols int) (*LCD, error) {
	if rows > len(rowOffsets) {
		return nil, fmt.Errorf("lcd: %d rows not supported", rows)
	}

	l := &LCD{
		dev:  i2c.Dev{Bus: bus, Addr: addr},
		rows: rows,
		cols: cols,
	}

	if err := l.init(); err != nil {
		return nil, fmt.Errorf("initialize lcd: %w", err)
	}
	return l, nil
}

// init runs the HD44780 4-bit initialization sequence.
func (l *LCD) init() error {
	// The controller powers up in 8-bit mode; three 0x30 writes and a
	// 0x20 write force it into 4-bit mode.
	time.Sleep(50 * time.Millisecond)
	for _, nibble := range []byte{0x30, 0x30, 0x30, 0x20} {
		if err := l.pulse(nibble); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}

	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOn, cmdClear, cmdEntryMode} {
		if err := l.command(cmd); err != nil {
			return err
		}
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

// Clear wipes the display.
func (l *LCD) Clear() error {
	if err := l.command(cmdClear); err != nil {
		return fmt.Errorf("clear lcd: %w", err)
	}
	// Clear needs longer than other commands.
	time.Sleep(2 * time.Millisecond)
	return nil
}

// WriteLine writes one row, truncated to the display width.
func (l *LCD) WriteLine(row int, text string) error {
	if row < 0 || row >= l.rows {
		return fmt.Errorf("display row %d out of range", row)
	}
	if len(text) > l.cols {
		text = text[:l.cols]
	}

	if err := l.command(cmdSetDDRAM | rowOffsets[row]); err != nil {
		return fmt.Errorf("set lcd cursor: %w", err)
	}
	for i := 0; i < len(text); i++ {
		if err := l.write(text[i], lcdRS); err != nil {
			return fmt.Errorf("write lcd char: %w", err)
		}
	}
	return nil
}

// Close clears the display and switches the backlight off.
func (l *LCD) Close() error {
	if err := l.Clear(); err != nil {
		return err
	}
	// All control lines low, backlight bit cleared.
	if err := l.dev.Tx([]byte{0x00}, nil); err != nil {
		return fmt.Errorf("close lcd: %w", err)
	}
	return nil
}

func (l *LCD) command(cmd byte) error {
	return l.write(cmd, 0)
}

// write sends one byte as two nibbles with the given mode bits (RS for
// data, 0 for commands).
func (l *LCD) write(value, mode byte) error {
	if err := l.pulse(value&0xF0 | mode); err != nil {
		return err
	}
	return l.pulse(value<<4&0xF0 | mode)
}

// pulse latches one nibble by strobing the enable line.
func (l *LCD) pulse(nibble byte) error {
	data := nibble | lcdBacklight
	if err := l.dev.Tx([]byte{data | lcdEnable}, nil); err != nil {
		return err
	}
	time.Sleep(time.Millisecond)
	if err := l.dev.Tx([]byte{data}, nil); err != nil {
		return err
	}
	time.Sleep(50 * time.Microsecond)
	return nil
}
