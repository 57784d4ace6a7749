// Package eventpipe accepts bench-test and control commands on a named pipe.
package eventpipe

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"tusk/credential"
	"tusk/wiegand"
)

// Config holds configuration for the event pipe.
type Config struct {
	Path string `yaml:"path"` // Path to named pipe (e.g., "/tmp/tusk-events")
}

// Op is a command verb.
type Op int

const (
	OpFrame Op = iota
	OpClear
	OpEnable
	OpDisable
)

// Command is one parsed pipe line.
type Command struct {
	Op    Op
	Frame wiegand.Frame // OpFrame only
}

// Handler is called for every command received from the pipe.
type Handler func(Command)

// EventPipe listens for commands on a named pipe.
type EventPipe struct {
	path    string
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc

	mu   sync.Mutex
	file *os.File // open read end, if any
}

// New creates a new EventPipe. Returns nil if path is empty.
func New(cfg Config, handler Handler) (*EventPipe, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	// Remove existing pipe if it exists
	os.Remove(cfg.Path)

	if err := syscall.Mkfifo(cfg.Path, 0666); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", cfg.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &EventPipe{
		path:    cfg.Path,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins listening for commands on the pipe.
// This should be called as a goroutine.
func (ep *EventPipe) Start() {
	log.Printf("Event pipe listening on %s", ep.path)

	for {
		select {
		case <-ep.ctx.Done():
			return
		default:
		}

		// Blocks until a writer connects.
		file, err := os.OpenFile(ep.path, os.O_RDONLY, 0)
		if err != nil {
			if ep.ctx.Err() != nil {
				return
			}
			log.Printf("Event pipe open error: %v", err)
			continue
		}

		if !ep.track(file) {
			file.Close()
			return
		}
		ep.serve(file)
		ep.track(nil)
		file.Close()
		// Writer closed the pipe, loop back to wait for next writer
	}
}

// track records the open read end for Close. It reports false once the
// pipe is closing.
func (ep *EventPipe) track(f *os.File) bool {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if f != nil && ep.ctx.Err() != nil {
		return false
	}
	ep.file = f
	return true
}

func (ep *EventPipe) serve(file *os.File) {
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if ep.ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cmd, err := parseLine(line)
		if err != nil {
			log.Printf("Event pipe parse error: %v", err)
			continue
		}

		if ep.handler != nil {
			ep.handler(cmd)
		}
	}
}

// Close stops the event pipe listener and removes the pipe. Start returns
// soon after, even while a writer still holds the pipe open.
func (ep *EventPipe) Close() error {
	ep.cancel()

	ep.mu.Lock()
	if ep.file != nil {
		ep.file.Close()
	}
	ep.mu.Unlock()

	// Wake a reader blocked in open.
	if f, err := os.OpenFile(ep.path, os.O_WRONLY|syscall.O_NONBLOCK, 0); err == nil {
		f.Close()
	}
	return os.Remove(ep.path)
}

// parseLine parses a command line into a Command.
// Command format:
//
//	bits <0101...>          - Inject a raw frame
//	h10301 <facility> <card> - Inject a 26-bit HID frame with parity
//	clear                   - Clear all records
//	enable                  - Enable capture
//	disable                 - Disable capture
func parseLine(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "bits":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("bits requires a bit string")
		}
		f, err := wiegand.ParseFrame(strings.Join(parts[1:], ""))
		if err != nil {
			return Command{}, err
		}
		if f.Len() == 0 {
			return Command{}, fmt.Errorf("bits requires a bit string")
		}
		return Command{Op: OpFrame, Frame: f}, nil

	case "h10301", "hid":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("%s requires <facility> <card>", cmd)
		}
		fc, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			return Command{}, fmt.Errorf("invalid facility code: %s", parts[1])
		}
		cn, err := strconv.ParseUint(parts[2], 10, 16)
		if err != nil {
			return Command{}, fmt.Errorf("invalid card number: %s", parts[2])
		}
		return Command{Op: OpFrame, Frame: credential.EncodeH10301(uint8(fc), uint16(cn))}, nil

	case "clear":
		return Command{Op: OpClear}, nil

	case "enable":
		return Command{Op: OpEnable}, nil

	case "disable":
		return Command{Op: OpDisable}, nil

	default:
		return Command{}, fmt.Errorf("unknown command: %s", cmd)
	}
}
