package display

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/sweeney/coffee-scale/internal/scale"
)

// SerialDisplay writes the line protocol to a serial port.
type SerialDisplay struct {
	port serial.Port
	name string
}

// NewSerialDisplay opens the display head's serial port.
func NewSerialDisplay(portName string, baudRate int) (*SerialDisplay, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open display port %s: %w", portName, err)
	}

	return &SerialDisplay{port: port, name: portName}, nil
}

// Render sends one frame line to the head.
func (d *SerialDisplay) Render(frame scale.RenderFrame) error {
	if _, err := d.port.Write([]byte(FormatFrame(frame))); err != nil {
		return fmt.Errorf("write frame to %s: %w", d.name, err)
	}
	return nil
}

// SetPower turns the panel on or off.
func (d *SerialDisplay) SetPower(on bool) error {
	if _, err := d.port.Write([]byte(FormatPower(on))); err != nil {
		return fmt.Errorf("write power command to %s: %w", d.name, err)
	}
	return nil
}

// Close blanks the panel and closes the port.
func (d *SerialDisplay) Close() error {
	if d.port == nil {
		return nil
	}
	// Best effort; the port may already be gone.
	d.port.Write([]byte(FormatPower(false)))
	if err := d.port.Close(); err != nil {
		return fmt.Errorf("close display port %s: %w", d.name, err)
	}
	return nil
}
