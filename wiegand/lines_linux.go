//go:build linux

package wiegand

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
	"github.com/warthog618/gpio"
)

// Open attaches falling-edge handlers for both data lines to c.
// Driver "none" returns a no-op so frames can come from other sources.
func Open(cfg Config, c *Capture) (Lines, error) {
	switch cfg.Driver {
	case "", "cdev":
		return openCdev(cfg, c)
	case "sysfs":
		return openSysfs(cfg, c)
	case "none":
		log.Println("Wiegand lines disabled (driver none)")
		return noLines{}, nil
	default:
		return nil, fmt.Errorf("unknown wiegand driver %q", cfg.Driver)
	}
}

type cdevLines struct {
	data0 *gpiocdev.Line
	data1 *gpiocdev.Line
}

func openCdev(cfg Config, c *Capture) (Lines, error) {
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}

	opts := func(handler func(gpiocdev.LineEvent)) []gpiocdev.LineReqOption {
		o := []gpiocdev.LineReqOption{
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(handler),
		}
		if cfg.Debounce > 0 {
			o = append(o, gpiocdev.WithDebounce(cfg.Debounce))
		}
		return o
	}

	l := &cdevLines{}
	var err error

	l.data0, err = gpiocdev.RequestLine(cfg.Chip, cfg.Data0Pin, opts(func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge {
			c.Zero()
		}
	})...)
	if err != nil {
		return nil, fmt.Errorf("request DATA0 line %d: %w", cfg.Data0Pin, err)
	}

	l.data1, err = gpiocdev.RequestLine(cfg.Chip, cfg.Data1Pin, opts(func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge {
			c.One()
		}
	})...)
	if err != nil {
		l.data0.Close()
		return nil, fmt.Errorf("request DATA1 line %d: %w", cfg.Data1Pin, err)
	}

	log.Printf("Wiegand lines on %s (DATA0=%d, DATA1=%d)", cfg.Chip, cfg.Data0Pin, cfg.Data1Pin)
	return l, nil
}

func (l *cdevLines) Close() error {
	var lastErr error
	if l.data0 != nil {
		if err := l.data0.Close(); err != nil {
			lastErr = err
		}
	}
	if l.data1 != nil {
		if err := l.data1.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

type sysfsLines struct {
	data0 *gpio.Pin
	data1 *gpio.Pin
}

func openSysfs(cfg Config, c *Capture) (Lines, error) {
	if err := gpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	l := &sysfsLines{
		data0: gpio.NewPin(cfg.Data0Pin),
		data1: gpio.NewPin(cfg.Data1Pin),
	}
	l.data0.Input()
	l.data1.Input()
	l.data0.PullUp()
	l.data1.PullUp()

	if err := l.data0.Watch(gpio.EdgeFalling, func(*gpio.Pin) { c.Zero() }); err != nil {
		gpio.Close()
		return nil, fmt.Errorf("watch DATA0 pin %d: %w", cfg.Data0Pin, err)
	}
	if err := l.data1.Watch(gpio.EdgeFalling, func(*gpio.Pin) { c.One() }); err != nil {
		l.data0.Unwatch()
		gpio.Close()
		return nil, fmt.Errorf("watch DATA1 pin %d: %w", cfg.Data1Pin, err)
	}

	log.Printf("Wiegand lines on sysfs (DATA0=%d, DATA1=%d)", cfg.Data0Pin, cfg.Data1Pin)
	return l, nil
}

func (l *sysfsLines) Close() error {
	l.data0.Unwatch()
	l.data1.Unwatch()
	return gpio.Close()
}
