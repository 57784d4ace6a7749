package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/tarm/serial"

	"tusk/wiegand"
)

// DefaultBaud is used when Config.Baud is zero.
const DefaultBaud = 115200

// maxLine bounds a line with no terminator before it is discarded.
const maxLine = 4 * wiegand.MaxBits

// Serial reads frames from a microcontroller bridge that prints each
// captured frame as a line of '0' and '1' characters.
type Serial struct {
	port    io.ReadCloser
	buf     []byte
	pending []byte
}

// NewSerial opens the bridge on device.
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Second,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}

	log.Printf("Serial bridge on %s at %d baud", device, baud)
	return newSerial(port), nil
}

func newSerial(port io.ReadCloser) *Serial {
	return &Serial{port: port, buf: make([]byte, 128)}
}

// Read implements FrameReader.Read.
func (s *Serial) Read(ctx context.Context) (wiegand.Frame, error) {
	for {
		select {
		case <-ctx.Done():
			return wiegand.Frame{}, ctx.Err()
		default:
		}

		if f, ok := s.next(); ok {
			return f, nil
		}

		n, err := s.port.Read(s.buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return wiegand.Frame{}, fmt.Errorf("read serial: %w", err)
		}
		if n == 0 {
			// Timeout, try again
			time.Sleep(10 * time.Millisecond)
			continue
		}
		s.pending = append(s.pending, s.buf[:n]...)
		if len(s.pending) > maxLine && bytes.IndexByte(s.pending, '\n') < 0 {
			log.Printf("Serial bridge: discarding %d bytes without newline", len(s.pending))
			s.pending = s.pending[:0]
		}
	}
}

// next returns the first well-formed frame among the buffered lines.
func (s *Serial) next() (wiegand.Frame, bool) {
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			return wiegand.Frame{}, false
		}
		line := string(s.pending[:i])
		s.pending = s.pending[i+1:]

		f, ok, err := ParseLine(line)
		if err != nil {
			log.Printf("Serial bridge: %v", err)
			continue
		}
		if ok {
			return f, true
		}
	}
}

// ParseLine parses one bridge line. Blank lines and lines starting with
// '#' are skipped without error.
func ParseLine(line string) (wiegand.Frame, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return wiegand.Frame{}, false, nil
	}
	f, err := wiegand.ParseFrame(line)
	if err != nil {
		return wiegand.Frame{}, false, fmt.Errorf("parse line %q: %w", line, err)
	}
	return f, f.Len() > 0, nil
}

// Close implements FrameReader.Close.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
