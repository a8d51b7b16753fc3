package app

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
	"rffedec/pkg/app/config"
	"rffedec/pkg/capture"
	"rffedec/pkg/mqtt"
	"rffedec/pkg/report"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// source is the live capture, nil when decoding a file
	source capture.Source
	// recorder collects the edges of the live capture
	recorder *capture.Recorder

	// stats counts the decoded packets of all passes
	stats *report.Statistics
	// recent holds the last decoded packets for the data web service
	recent *recentPackets

	ctx    context.Context
	cancel context.CancelFunc

	// restart signals application restart
	restart chan struct{}
	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config:    config,
		urlParsed: u,

		web:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:   mqtt.New(),
		stats:  report.NewStatistics(),
		recent: newRecentPackets(recentSize),

		ctx:      ctx,
		cancel:   cancel,
		restart:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()

	if app.source != nil {
		go app.capture()
	} else {
		go app.decodeFile()
	}

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	src := app.config.Source
	names := []string{app.config.Channels.Clock, app.config.Channels.Data}
	lines := []int{src.ClockGpio, src.DataGpio}

	switch src.Type {
	case config.SourceGpiod:
		app.recorder = capture.NewRecorder(src.SampleRate, nil, names...)
		chip, err := capture.OpenChip(src.Chip, lines, src.Terminator, app.recorder)
		if err != nil {
			debug.ErrorLog.Printf("can't open gpio chip %v: %v", src.Chip, err)
			return err
		}
		app.source = chip
	case config.SourceGpiomem:
		app.recorder = capture.NewRecorder(src.SampleRate, nil, names...)
		mem, err := capture.OpenMem(lines, src.Terminator, app.recorder)
		if err != nil {
			debug.ErrorLog.Printf("can't open gpio memory: %v", err)
			return err
		}
		app.source = mem
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// Restart returns the read only restart channel.
// Restart is used to be able to react on application restart. (see cmd/main.go)
func (app *App) Restart() <-chan struct{} {
	return app.restart
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/main.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

func (app *App) Close() error {
	if app.cancel != nil {
		app.cancel()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	if app.source != nil {
		_ = app.source.Close()
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}
	return nil
}
