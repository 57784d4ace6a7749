package indicator

import (
	"fmt"
	"image/color"
	"log"
	"sync"

	"tusk/display"
)

var (
	colorIdle      = color.RGBA{0, 0, 96, 255}
	colorRecorded  = color.RGBA{0, 160, 0, 255}
	colorDuplicate = color.RGBA{192, 160, 0, 255}
	colorRejected  = color.RGBA{176, 0, 0, 255}
	colorLost      = color.RGBA{128, 76, 0, 255}
)

// Video implements Indicator on a display output.
type Video struct {
	mu        sync.Mutex
	out       display.Output
	connected bool
}

// NewVideo creates a video indicator drawing on out.
func NewVideo(out display.Output) *Video {
	return &Video{out: out}
}

func (v *Video) show(s display.Screen) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.out == nil {
		return
	}
	if err := display.Show(v.out, s); err != nil {
		log.Printf("Video: show: %v", err)
	}
}

// Idle implements Indicator.Idle.
func (v *Video) Idle() {
	v.mu.Lock()
	connected := v.connected
	v.mu.Unlock()

	if !connected {
		v.ConnectionLost()
		return
	}
	v.show(display.Screen{Background: colorIdle, Title: "Ready"})
}

// Recorded implements Indicator.Recorded.
func (v *Video) Recorded(info *ReadInfo) {
	v.show(readScreen(colorRecorded, color.White, "Recorded", info))
}

// Duplicate implements Indicator.Duplicate.
func (v *Video) Duplicate(info *ReadInfo) {
	v.show(readScreen(colorDuplicate, color.Black, "Already recorded", info))
}

// Rejected implements Indicator.Rejected.
func (v *Video) Rejected(info *ReadInfo) {
	v.show(readScreen(colorRejected, color.White, "Rejected", info))
}

// DecodeError implements Indicator.DecodeError.
func (v *Video) DecodeError(info *ReadInfo) {
	v.show(readScreen(colorRejected, color.White, "Decode error", info))
}

// Connected implements Indicator.Connected.
func (v *Video) Connected() {
	v.mu.Lock()
	v.connected = true
	v.mu.Unlock()
}

// ConnectionLost implements Indicator.ConnectionLost.
func (v *Video) ConnectionLost() {
	v.mu.Lock()
	v.connected = false
	v.mu.Unlock()
	v.show(display.Screen{Background: colorLost, Title: "Connection Lost"})
}

// Shutdown implements Indicator.Shutdown.
func (v *Video) Shutdown() {
	v.show(display.Screen{Background: color.Black})
}

// Release implements Indicator.Release.
func (v *Video) Release() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.out == nil {
		return nil
	}
	err := v.out.Close()
	v.out = nil
	return err
}

func readScreen(bg, fg color.Color, title string, info *ReadInfo) display.Screen {
	s := display.Screen{Background: bg, Foreground: fg, Title: title}
	if info == nil {
		return s
	}

	if info.Format != "" {
		s.Lines = append(s.Lines, fmt.Sprintf("%s %d-bit", info.Format, info.BitLength))
	} else {
		s.Lines = append(s.Lines, fmt.Sprintf("%d bits", info.BitLength))
	}
	if info.FacilityCode != 0 || info.CardNumber != 0 {
		s.Lines = append(s.Lines, fmt.Sprintf("FC %d  CN %d", info.FacilityCode, info.CardNumber))
	}
	if info.Hex != "" {
		s.Lines = append(s.Lines, info.Hex)
	}
	if info.Reason != "" {
		s.Lines = append(s.Lines, info.Reason)
	}
	return s
}
