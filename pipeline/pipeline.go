// Package pipeline runs the capture loop: it takes completed frames from
// the capture engine, decodes and filters them, and records accepted
// credentials.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"tusk/credential"
	"tusk/filter"
	"tusk/indicator"
	"tusk/settings"
	"tusk/sink"
	"tusk/wiegand"
)

// DefaultPollInterval is how often the loop checks for a completed frame.
const DefaultPollInterval = time.Millisecond

// injectQueue bounds the complete frames waiting from the serial bridge and
// the event pipe.
const injectQueue = 16

// Outcome is what happened to one frame.
type Outcome int

const (
	OutcomeEmitted Outcome = iota
	OutcomeDuplicate
	OutcomeInvalid
	OutcomeUnrecognized
	OutcomeDecodeError
	OutcomeDisabled
	OutcomeSinkError
)

var outcomeNames = [...]string{
	OutcomeEmitted:      "emitted",
	OutcomeDuplicate:    "duplicate",
	OutcomeInvalid:      "invalid",
	OutcomeUnrecognized: "unrecognized",
	OutcomeDecodeError:  "decode error",
	OutcomeDisabled:     "disabled",
	OutcomeSinkError:    "sink error",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Publisher receives every emitted record. Failures are logged only.
type Publisher interface {
	PublishRecord(r sink.Record) error
}

// Options wires a Pipeline. Capture, Sink and Settings are required.
type Options struct {
	Capture   *wiegand.Capture
	Decoder   *credential.Decoder
	Sink      sink.Sink
	Settings  settings.Source
	Indicator indicator.Indicator
	Publisher Publisher

	PollInterval time.Duration
	Hold         time.Duration
}

// Pipeline owns the decode, filter and emit stages.
type Pipeline struct {
	capture   *wiegand.Capture
	decoder   *credential.Decoder
	filter    *filter.Filter
	sink      sink.Sink
	settings  settings.Source
	indicator indicator.Indicator

	pubMu     sync.RWMutex
	publisher Publisher

	poll     time.Duration
	hold     time.Duration
	now      func() time.Time
	injected chan wiegand.Frame

	// mu serialises Process against ClearRecords.
	mu      sync.Mutex
	enabled atomic.Bool
	idleAt  time.Time
}

// New creates a Pipeline. The capture-enabled flag is read from settings.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		capture:   opts.Capture,
		decoder:   opts.Decoder,
		filter:    filter.New(),
		sink:      opts.Sink,
		settings:  opts.Settings,
		indicator: opts.Indicator,
		publisher: opts.Publisher,
		poll:      opts.PollInterval,
		hold:      opts.Hold,
		now:       time.Now,
		injected:  make(chan wiegand.Frame, injectQueue),
	}
	if p.decoder == nil {
		p.decoder = credential.New(credential.Config{})
	}
	if p.indicator == nil {
		p.indicator = &indicator.Noop{}
	}
	if p.poll <= 0 {
		p.poll = DefaultPollInterval
	}
	if p.hold <= 0 {
		p.hold = indicator.DefaultHold
	}
	p.enabled.Store(settings.Bool(p.settings, settings.CaptureEnabled))
	return p
}

// SetPublisher replaces the record publisher. nil disables publishing.
func (p *Pipeline) SetPublisher(pub Publisher) {
	p.pubMu.Lock()
	p.publisher = pub
	p.pubMu.Unlock()
}

// Run polls for frames until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-p.injected:
			p.handle(ctx, f)
		case now := <-ticker.C:
			p.Poll(ctx, now)
		}
	}
}

// Poll processes at most one completed frame, taken from the capture
// engine before the inject queue, and returns the indicator to idle once
// the feedback hold has elapsed.
func (p *Pipeline) Poll(ctx context.Context, now time.Time) {
	if f, ok := p.capture.TakeFrame(now); ok {
		p.handle(ctx, f)
		return
	}
	select {
	case f := <-p.injected:
		p.handle(ctx, f)
		return
	default:
	}

	p.mu.Lock()
	idle := !p.idleAt.IsZero() && !now.Before(p.idleAt)
	if idle {
		p.idleAt = time.Time{}
	}
	p.mu.Unlock()
	if idle {
		p.indicator.Idle()
	}
}

func (p *Pipeline) handle(ctx context.Context, f wiegand.Frame) {
	outcome, err := p.Process(ctx, f)
	if err != nil {
		log.Printf("Process %d-bit frame (%s): %v", f.Len(), outcome, err)
	}
}

// Process runs one frame through decode, filter and emit. A sink failure
// leaves the dedup state untouched so the same card can be recorded on
// its next read.
func (p *Pipeline) Process(ctx context.Context, f wiegand.Frame) (Outcome, error) {
	if !p.enabled.Load() {
		return OutcomeDisabled, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cred, err := p.decoder.Decode(f)
	if err != nil {
		info := readInfo(cred)
		info.Reason = reason(err)
		p.feedback(p.indicator.DecodeError, info)
		return OutcomeDecodeError, fmt.Errorf("decode frame: %w", err)
	}

	switch p.filter.Check(cred, f) {
	case filter.Invalid:
		// Unsupported lengths are ignored without feedback.
		if cred.Kind == credential.KindUnknown {
			return OutcomeUnrecognized, nil
		}
		p.feedback(p.indicator.Rejected, readInfo(cred))
		return OutcomeInvalid, nil
	case filter.Duplicate:
		p.feedback(p.indicator.Duplicate, readInfo(cred))
		return OutcomeDuplicate, nil
	}

	rec := sink.NewRecord(cred, p.now())
	if err := p.sink.Append(ctx, rec); err != nil {
		p.feedback(p.indicator.Rejected, readInfo(cred))
		return OutcomeSinkError, fmt.Errorf("append record: %w", err)
	}
	p.filter.Commit(f)

	log.Printf("Recorded %s %s: facility %d card %d", cred.Kind, cred.Format, cred.FacilityCode, cred.CardNumber)
	p.publish(rec)
	p.feedback(p.indicator.Recorded, readInfo(cred))
	return OutcomeEmitted, nil
}

func (p *Pipeline) publish(rec sink.Record) {
	p.pubMu.RLock()
	pub := p.publisher
	p.pubMu.RUnlock()
	if pub == nil {
		return
	}
	if err := pub.PublishRecord(rec); err != nil {
		log.Printf("Publish record %s: %v", rec.ID, err)
	}
}

// feedback must be called with p.mu held.
func (p *Pipeline) feedback(show func(*indicator.ReadInfo), info *indicator.ReadInfo) {
	show(info)
	p.idleAt = p.now().Add(p.hold)
}

// Enabled reports whether frames are being recorded.
func (p *Pipeline) Enabled() bool {
	return p.enabled.Load()
}

// SetEnabled turns recording on or off and persists the choice.
func (p *Pipeline) SetEnabled(on bool) error {
	if err := p.settings.Set(settings.CaptureEnabled, settings.FormatBool(on)); err != nil {
		return fmt.Errorf("save capture setting: %w", err)
	}
	p.enabled.Store(on)
	log.Printf("Capture enabled: %v", on)
	return nil
}

// ClearRecords empties the sink and forgets the last emitted frame.
func (p *Pipeline) ClearRecords(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.sink.Clear(ctx); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	p.filter.Reset()
	log.Println("Records cleared")
	return nil
}

// Inject queues a complete frame from a source other than the data lines.
// It blocks while the queue is full until ctx is done.
func (p *Pipeline) Inject(ctx context.Context, f wiegand.Frame) error {
	select {
	case p.injected <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Last returns the last recorded frame, if any.
func (p *Pipeline) Last() (wiegand.Frame, bool) {
	return p.filter.Last()
}

func readInfo(c credential.Credential) *indicator.ReadInfo {
	return &indicator.ReadInfo{
		CardType:     c.Kind.String(),
		Format:       c.Format,
		BitLength:    c.BitLength,
		FacilityCode: c.FacilityCode,
		CardNumber:   c.CardNumber,
		Hex:          c.Hex,
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, credential.ErrNoPreamble):
		return "no preamble"
	case errors.Is(err, credential.ErrShortPayload):
		return "short payload"
	case errors.Is(err, credential.ErrParity):
		return "parity error"
	case errors.Is(err, credential.ErrChecksum):
		return "checksum error"
	default:
		return "malformed"
	}
}
