package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
	"rffedec/pkg/app"
	"rffedec/pkg/app/config"
	"rffedec/pkg/report"
	"rffedec/pkg/rffe"
	"rffedec/pkg/simulate"
	"rffedec/pkg/trace"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "RFFE bus decoder for SCLK/SDATA edge traces",
		Version: app.VERSION,
		Description: "Decode RFFE transactions from a two-wire capture and publish them to mqtt" +
			"\n the edges come from a trace file (.cbor or .csv transition export)" +
			"\n or from a live capture of two GPIO lines (gpiod or gpiomem).",
		UsageText: "rffedec [--conf <file>] [--log error|debug|trace] [command]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the decoder service and use the configuration file rffedec.yaml" +
			"\n\t\trffedec --conf /opt/womat/rffedec.yaml" +
			"\n\tdecode a trace file" +
			"\n\t\trffedec decode --samplerate 100000000 capture.csv",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Value: "standard", Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
		},
		Commands: []*cli.Command{
			decodeCommand(cfg),
			simulateCommand(cfg),
		},
		Action: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
			defer func() {
				debug.InfoLog.Printf("closing debug file %s", cfg.Log.FileString)
				_ = cfg.Log.File.Close()
			}()

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for am os.Interrupt signal (CTRL C)
			select {
			case sig := <-quit:
				debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
			case <-a.Shutdown():
				debug.InfoLog.Print("shutdown requested")
			}

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
	return
}

func decodeCommand(cfg *config.Config) *cli.Command {
	var sampleRate, bitRate uint
	var clock, data string
	var quiet bool

	return &cli.Command{
		Name:      "decode",
		Usage:     "decode a trace file and print the packets",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "samplerate", Aliases: []string{"r"}, Destination: &sampleRate, Usage: "sample rate of a csv `FILE` in Hz"},
			&cli.UintFlag{Name: "bitrate", Aliases: []string{"b"}, Destination: &bitRate, Value: uint(cfg.BitRate), Usage: "nominal bit rate in Hz"},
			&cli.StringFlag{Name: "clock", Destination: &clock, Value: cfg.Channels.Clock, Usage: "clock channel name or index"},
			&cli.StringFlag{Name: "data", Destination: &data, Value: cfg.Channels.Data, Usage: "data channel name or index"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Destination: &quiet, Usage: "print the statistics only"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.Exit("decode needs exactly one trace file", 2)
			}
			if err := cfg.SetLogLevel(cfg.Flag.LogLevel); err != nil {
				return err
			}
			debug.SetDebug(os.Stderr, cfg.Log.Flag)

			t, err := trace.Load(ctx.Args().First(), uint32(sampleRate))
			if err != nil {
				return err
			}

			cfg.BitRate = uint32(bitRate)
			if !cfg.SampleRateOK(t.SampleRate) {
				debug.ErrorLog.Printf("sample rate %d Hz is below %d Hz, bits may be lost", t.SampleRate, rffe.MinimumSampleRate(cfg.BitRate))
			}

			if clk, err := t.Channel(clock); err == nil {
				if _, bit, err := trace.EstimateBitPeriod(clk); err == nil {
					fmt.Printf("estimated bit rate %.0f Hz (%.1f samples per bit)\n", float64(t.SampleRate)/bit, bit)
				}
			}

			stats := report.NewStatistics()
			packets, err := rffe.Decode(context.Background(), t, clock, data)
			if err != nil {
				return err
			}

			for _, p := range packets {
				stats.Update(p)
				if !quiet {
					fmt.Println(report.FormatPacket(p, t.SampleRate))
				}
			}
			fmt.Print(stats.String())
			return nil
		},
	}
}

func simulateCommand(cfg *config.Config) *cli.Command {
	var sampleRate, bitRate uint

	return &cli.Command{
		Name:      "simulate",
		Usage:     "write a demo trace with every transaction kind",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "samplerate", Aliases: []string{"r"}, Destination: &sampleRate, Value: uint(cfg.Source.SampleRate), Usage: "sample rate in Hz"},
			&cli.UintFlag{Name: "bitrate", Aliases: []string{"b"}, Destination: &bitRate, Value: uint(cfg.BitRate), Usage: "bit rate in Hz"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.Exit("simulate needs exactly one output file", 2)
			}

			g, err := simulate.New(uint32(sampleRate), uint32(bitRate), cfg.Channels.Clock, cfg.Channels.Data)
			if err != nil {
				return err
			}
			g.Demo()

			t, err := g.Trace()
			if err != nil {
				return err
			}
			if err = trace.Save(ctx.Args().First(), t); err != nil {
				return err
			}

			fmt.Printf("wrote %d samples to %s\n", t.Samples, ctx.Args().First())
			return nil
		},
	}
}
