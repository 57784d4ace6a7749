package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tusk/button"
	"tusk/credential"
	"tusk/eventpipe"
	"tusk/indicator"
	"tusk/mqtt"
	"tusk/pipeline"
	"tusk/reader"
	"tusk/settings"
	"tusk/sink"
	"tusk/wiegand"
)

var myBuild = "dev"

// App holds the daemon state and dependencies.
type App struct {
	cfg       *Config
	settings  *settings.Store
	sink      sink.Sink
	capture   *wiegand.Capture
	lines     wiegand.Lines
	pipeline  *pipeline.Pipeline
	mqtt      *mqtt.Client
	indicator indicator.Indicator
	serial    reader.FrameReader
	events    *eventpipe.EventPipe
	button    *button.Button
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func main() {
	app := newCLIApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runDaemon captures frames until SIGINT or SIGTERM.
func runDaemon(cfg *Config) error {
	fmt.Printf("tusk build %s\n", myBuild)

	if cfg.ClientID == "" {
		return errors.New("client_id missing in config file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	defer cancel()

	if err := app.init(); err != nil {
		app.release()
		return err
	}

	app.start()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	cancel()
	app.release()
	fmt.Println("Shutdown complete")
	return nil
}

func (app *App) init() error {
	cfg := app.cfg
	var err error

	app.settings, err = settings.Open(cfg.SettingsFile)
	if err != nil {
		return fmt.Errorf("init settings: %w", err)
	}

	app.sink, err = sink.New(cfg.Sink)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}

	// Initialize indicator (LEDs, neopixels, screen)
	app.indicator, err = indicator.New(cfg.Indicator)
	if err != nil {
		return fmt.Errorf("init indicator: %w", err)
	}
	app.indicator.ConnectionLost() // Start with connection lost state

	app.capture = wiegand.NewCapture(cfg.Wiegand.Silence)
	app.pipeline = pipeline.New(pipeline.Options{
		Capture:      app.capture,
		Decoder:      credential.New(cfg.Decoder),
		Sink:         app.sink,
		Settings:     app.settings,
		Indicator:    app.indicator,
		PollInterval: cfg.PollInterval,
		Hold:         cfg.Indicator.HoldOrDefault(),
	})

	app.mqtt, err = mqtt.New(cfg.MQTT, cfg.ClientID, mqtt.Handlers{
		OnConnect:    app.onMQTTConnect,
		OnDisconnect: app.onMQTTDisconnect,
		OnControl:    app.handleControl,
	})
	if err != nil {
		return fmt.Errorf("init MQTT: %w", err)
	}
	if app.mqtt.IsEnabled() {
		app.pipeline.SetPublisher(app.mqtt)
	}

	app.lines, err = wiegand.Open(cfg.Wiegand, app.capture)
	if err != nil {
		return fmt.Errorf("init wiegand lines: %w", err)
	}

	app.serial, err = reader.New(cfg.Serial)
	if err != nil {
		return fmt.Errorf("init serial bridge: %w", err)
	}

	app.events, err = eventpipe.New(cfg.EventPipe, app.handleEvent)
	if err != nil {
		return fmt.Errorf("init event pipe: %w", err)
	}

	app.button, err = button.New(cfg.Button, app.toggleCapture)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}

	ap := settings.LoadAccessPoint(app.settings)
	log.Printf("Access point %q channel %d hidden %v", ap.SSID, ap.Channel, ap.Hidden)
	log.Printf("Capture enabled: %v", app.pipeline.Enabled())
	return nil
}

func (app *App) start() {
	go func() {
		if err := app.mqtt.Connect(); err != nil {
			log.Printf("MQTT connect: %v", err)
		}
	}()
	go app.pingSender()

	if app.events != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.events.Start()
		}()
	}
	if app.serial != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.serialListener()
		}()
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		if err := app.pipeline.Run(app.ctx); err != nil {
			log.Printf("Pipeline: %v", err)
		}
	}()
}

// release tears down in reverse order of init. Safe on a partial init.
func (app *App) release() {
	if app.events != nil {
		app.events.Close()
	}
	if app.serial != nil {
		app.serial.Close()
	}
	app.wg.Wait()

	if app.button != nil {
		app.button.Release()
	}
	if app.lines != nil {
		app.lines.Close()
	}
	if app.mqtt != nil {
		app.mqtt.Disconnect()
	}
	if app.indicator != nil {
		app.indicator.Shutdown()
		app.indicator.Release()
	}
	if app.sink != nil {
		if err := app.sink.Close(); err != nil {
			log.Printf("Close sink: %v", err)
		}
	}
	if app.capture != nil {
		if n := app.capture.Dropped(); n > 0 {
			log.Printf("Dropped %d bits past the frame limit", n)
		}
	}
}

func (app *App) onMQTTConnect() {
	app.indicator.Connected()
	app.indicator.Idle()
}

func (app *App) onMQTTDisconnect() {
	app.indicator.ConnectionLost()
}

func (app *App) handleControl(cmd string) {
	var err error
	switch cmd {
	case mqtt.CommandClear:
		err = app.pipeline.ClearRecords(app.ctx)
	case mqtt.CommandEnable:
		err = app.pipeline.SetEnabled(true)
	case mqtt.CommandDisable:
		err = app.pipeline.SetEnabled(false)
	}
	if err != nil {
		log.Printf("Control %s: %v", cmd, err)
	}
}

func (app *App) handleEvent(cmd eventpipe.Command) {
	switch cmd.Op {
	case eventpipe.OpFrame:
		if err := app.pipeline.Inject(app.ctx, cmd.Frame); err != nil {
			log.Printf("Inject event frame: %v", err)
		}
	case eventpipe.OpClear:
		app.handleControl(mqtt.CommandClear)
	case eventpipe.OpEnable:
		app.handleControl(mqtt.CommandEnable)
	case eventpipe.OpDisable:
		app.handleControl(mqtt.CommandDisable)
	}
}

func (app *App) toggleCapture() {
	if err := app.pipeline.SetEnabled(!app.pipeline.Enabled()); err != nil {
		log.Printf("Toggle capture: %v", err)
	}
}

func (app *App) serialListener() {
	for {
		f, err := app.serial.Read(app.ctx)
		if err != nil {
			if app.ctx.Err() != nil {
				return
			}
			log.Printf("Read serial bridge: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if err := app.pipeline.Inject(app.ctx, f); err != nil {
			return
		}
	}
}

func (app *App) pingSender() {
	ticker := time.NewTicker(120 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			app.mqtt.Publish(app.mqtt.StatusTopic(), mqtt.StatusOK)
		}
	}
}
