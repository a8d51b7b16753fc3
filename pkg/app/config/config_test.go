package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rffedec.yaml")
	data := `
channels:
  clock: "0"
  data: "1"
bitrate: 26000000
source:
  type: file
  file: /tmp/capture.csv
  samplerate: 125000000
  quiet: 20
debug:
  file: stdout
  flag: standard
mqtt:
  connection: tcp://127.0.0.1:1883
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	c := NewConfig()
	c.Flag.ConfigFile = path
	c.Flag.LogLevel = "debug"
	if err := c.LoadConfig(); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if c.Channels.Clock != "0" || c.Channels.Data != "1" || c.BitRate != 26_000_000 {
		t.Errorf("channels %+v bitrate %d", c.Channels, c.BitRate)
	}
	if c.Source.Quiet != 20*time.Millisecond || c.Source.Interval != 50*time.Millisecond {
		t.Errorf("quiet %v interval %v", c.Source.Quiet, c.Source.Interval)
	}
	if c.Log.FlagString != "debug" || c.Log.File != os.Stdout {
		t.Errorf("log config %+v", c.Log)
	}
	if c.MQTT.Topic != "rffe/packets" || c.MQTT.Connection != "tcp://127.0.0.1:1883" {
		t.Errorf("mqtt config %+v", c.MQTT)
	}
	if !c.Webserver.Webservices["statistics"] {
		t.Error("statistics webservice disabled by default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{name: "defaults with file", modify: func(c *Config) {}},
		{name: "no file", modify: func(c *Config) { c.Source.File = "" }, want: ErrInvalidSource},
		{name: "unknown type", modify: func(c *Config) { c.Source.Type = "usb" }, want: ErrInvalidSource},
		{name: "same gpio", modify: func(c *Config) {
			c.Source.Type = SourceGpiod
			c.Source.DataGpio = c.Source.ClockGpio
		}, want: ErrInvalidSource},
		{name: "live without sample rate", modify: func(c *Config) {
			c.Source.Type = SourceGpiomem
			c.Source.SampleRate = 0
		}, want: ErrInvalidSource},
		{name: "same channel", modify: func(c *Config) { c.Channels.Data = c.Channels.Clock }, want: ErrInvalidSource},
		{name: "undersampled", modify: func(c *Config) { c.Source.SampleRate = 39_999_999 }, want: ErrInvalidSampleRate},
		{name: "exactly four times", modify: func(c *Config) { c.Source.SampleRate = 40_000_000 }},
		{name: "rate from file", modify: func(c *Config) { c.Source.SampleRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			c.Source.File = "capture.cbor"
			tt.modify(c)

			err := c.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}
