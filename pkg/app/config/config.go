package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
	"rffedec/pkg/rffe"
)

var (
	// ErrInvalidSampleRate is returned if the sample rate can't resolve a quarter bit period.
	ErrInvalidSampleRate = errors.New("sample rate too low for the bit rate")
	// ErrInvalidSource is returned for an unknown source type or missing source parameters.
	ErrInvalidSource = errors.New("invalid source")
)

// Source types.
const (
	SourceFile    = "file"
	SourceGpiod   = "gpiod"
	SourceGpiomem = "gpiomem"
)

// Config holds the application configuration. Attention!
// To make it possible to overwrite fields with the -overwrite command
// line option each of the struct fields must be in the format
// first letter uppercase -> followed by CamelCase as in the config file.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Channels  ChannelConfig   `yaml:"channels"`
	BitRate   uint32          `yaml:"bitrate"`
	Source    SourceConfig    `yaml:"source"`
	Flag      FlagConfig      `yaml:"-"`
	Log       LogConfig       `yaml:"debug"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Version    bool
	LogLevel   string
	ConfigFile string
}

// ChannelConfig names the clock and data channels, by name or index.
type ChannelConfig struct {
	Clock string `yaml:"clock"`
	Data  string `yaml:"data"`
}

// SourceConfig defines where the edges come from.
type SourceConfig struct {
	Type       string `yaml:"type"`
	File       string `yaml:"file"`
	SampleRate uint32 `yaml:"samplerate"`
	Chip       string `yaml:"chip"`
	ClockGpio  int    `yaml:"clockgpio"`
	DataGpio   int    `yaml:"datagpio"`
	Terminator string `yaml:"terminator"`
	// QuietInt is the bus idle time (ms) after which a live capture is decoded.
	QuietInt int           `yaml:"quiet"`
	Quiet    time.Duration `yaml:"-"`
	// IntervalInt is the poll interval (ms) of a live capture.
	IntervalInt int           `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	ClientID   string `yaml:"clientid"`
	Topic      string `yaml:"topic"`
	// StatisticsTopic receives the retained statistics after every decode pass.
	StatisticsTopic string `yaml:"statisticstopic"`
}

// LogConfig defines the struct of the debug configuration and configuration file
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Channels: ChannelConfig{Clock: "SCLK", Data: "SDATA"},
		BitRate:  10_000_000,
		Source: SourceConfig{
			Type:        SourceFile,
			SampleRate:  100_000_000,
			Chip:        "gpiochip0",
			ClockGpio:   17,
			DataGpio:    27,
			Terminator:  "none",
			QuietInt:    100,
			IntervalInt: 50,
		},
		Flag: FlagConfig{},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":    true,
				"health":     true,
				"data":       true,
				"statistics": true,
			},
		},
		MQTT: MQTTConfig{
			ClientID:        "rffedec",
			Topic:           "rffe/packets",
			StatisticsTopic: "rffe/statistics",
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Log.FileString, err)
	}

	return c.Validate()
}

// Validate converts the millisecond settings and checks the source parameters.
func (c *Config) Validate() error {
	c.Source.Quiet = time.Duration(c.Source.QuietInt) * time.Millisecond
	c.Source.Interval = time.Duration(c.Source.IntervalInt) * time.Millisecond

	switch c.Source.Type {
	case SourceFile:
		if c.Source.File == "" {
			return fmt.Errorf("%w: no file", ErrInvalidSource)
		}
	case SourceGpiod, SourceGpiomem:
		if c.Source.ClockGpio == c.Source.DataGpio {
			return fmt.Errorf("%w: clock and data on gpio %d", ErrInvalidSource, c.Source.ClockGpio)
		}
		if c.Source.SampleRate == 0 {
			return fmt.Errorf("%w: live capture needs a sample rate", ErrInvalidSource)
		}
		if c.Source.Interval <= 0 {
			return fmt.Errorf("%w: interval must be positive", ErrInvalidSource)
		}
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidSource, c.Source.Type)
	}

	if c.Channels.Clock == "" || c.Channels.Data == "" || c.Channels.Clock == c.Channels.Data {
		return fmt.Errorf("%w: channels %q and %q", ErrInvalidSource, c.Channels.Clock, c.Channels.Data)
	}

	// a file in the native format carries its own sample rate, it is checked after loading
	if c.Source.SampleRate > 0 && !c.SampleRateOK(c.Source.SampleRate) {
		return fmt.Errorf("%w: %d < %d", ErrInvalidSampleRate, c.Source.SampleRate, rffe.MinimumSampleRate(c.BitRate))
	}
	return nil
}

// SampleRateOK reports whether rate resolves a quarter period of the configured bit rate.
func (c *Config) SampleRateOK(rate uint32) bool {
	return uint64(rate) >= rffe.MinimumSampleRate(c.BitRate)
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Log.FlagString {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Log.Flag = debug.Standard
	}

	switch c.Log.FileString {
	case "stderr":
		c.Log.File = os.Stderr
	case "stdout":
		c.Log.File = os.Stdout
	default:
		if c.Log.File, err = os.OpenFile(c.Log.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}

// SetLogLevel applies a log level name without a config file, for the one shot commands.
func (c *Config) SetLogLevel(level string) error {
	c.Log.FlagString = level
	return c.setDebugConfig()
}
