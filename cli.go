package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"tusk/credential"
	"tusk/filter"
	"tusk/settings"
	"tusk/sink"
	"tusk/wiegand"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "tusk",
		Usage:   "Wiegand credential capture daemon",
		Version: myBuild,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cfg", Aliases: []string{"c"}, Value: "tusk.yml", Usage: "Config file"},
		},
		Commands: []*cli.Command{
			runCmd(),
			recordsCmd(),
			settingsCmd(),
			decodeCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Capture credentials until interrupted",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("cfg"))
			if err != nil {
				return outputError(err)
			}
			if err := runDaemon(cfg); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

func recordsCmd() *cli.Command {
	return &cli.Command{
		Name:  "records",
		Usage: "Inspect or clear recorded credentials",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print all records as JSON",
				Action: func(c *cli.Context) error {
					return withSink(c, func(s sink.Sink) error {
						records, err := s.ReadAll(c.Context)
						if err != nil {
							return err
						}
						if records == nil {
							records = []sink.Record{}
						}
						return outputJSON(c.App.Writer, records)
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Delete all records",
				Action: func(c *cli.Context) error {
					return withSink(c, func(s sink.Sink) error {
						if err := s.Clear(c.Context); err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, "Records cleared")
						return nil
					})
				},
			},
		},
	}
}

func withSink(c *cli.Context, fn func(sink.Sink) error) error {
	cfg, err := loadConfig(c.String("cfg"))
	if err != nil {
		return outputError(err)
	}
	s, err := sink.New(cfg.Sink)
	if err != nil {
		return outputError(err)
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return outputError(err)
	}
	return nil
}

func settingsCmd() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Read or change device settings",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print one setting",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: tusk settings get <name>", 1)
					}
					return withSettings(c, func(s *settings.Store) error {
						name := c.Args().First()
						if _, ok := settings.Defaults[name]; !ok {
							return fmt.Errorf("%w: %q", settings.ErrUnknown, name)
						}
						fmt.Fprintln(c.App.Writer, s.Get(name))
						return nil
					})
				},
			},
			{
				Name:      "set",
				Usage:     "Change one setting",
				ArgsUsage: "<name> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: tusk settings set <name> <value>", 1)
					}
					return withSettings(c, func(s *settings.Store) error {
						return s.Set(c.Args().Get(0), c.Args().Get(1))
					})
				},
			},
			{
				Name:  "list",
				Usage: "Print all settings",
				Action: func(c *cli.Context) error {
					return withSettings(c, func(s *settings.Store) error {
						for _, name := range settings.Names() {
							fmt.Fprintf(c.App.Writer, "%s=%s\n", name, s.Get(name))
						}
						return nil
					})
				},
			},
		},
	}
}

func withSettings(c *cli.Context, fn func(*settings.Store) error) error {
	cfg, err := loadConfig(c.String("cfg"))
	if err != nil {
		return outputError(err)
	}
	s, err := settings.Open(cfg.SettingsFile)
	if err != nil {
		return outputError(err)
	}
	if err := fn(s); err != nil {
		return outputError(err)
	}
	return nil
}

// decodeResult is the decode command's output.
type decodeResult struct {
	CardType     string `json:"card_type"`
	Format       string `json:"format,omitempty"`
	BitLength    int    `json:"bit_length"`
	FacilityCode uint32 `json:"facility_code"`
	CardNumber   uint32 `json:"card_number"`
	Hex          string `json:"hex,omitempty"`
	RegionCode   *uint8 `json:"region_code,omitempty"`
	IssueLevel   *uint8 `json:"issue_level,omitempty"`
	Valid        bool   `json:"valid"`
}

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a frame given as 0/1 characters",
		ArgsUsage: "<bits>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verify-checksum", Usage: "Enforce the Gallagher checksum"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("usage: tusk decode <bits>", 1)
			}
			f, err := wiegand.ParseFrame(strings.Join(c.Args().Slice(), ""))
			if err != nil {
				return outputError(err)
			}

			dec := credential.New(credential.Config{VerifyGallagherChecksum: c.Bool("verify-checksum")})
			cred, err := dec.Decode(f)
			if err != nil {
				return outputError(err)
			}

			res := decodeResult{
				CardType:     cred.Kind.String(),
				Format:       cred.Format,
				BitLength:    cred.BitLength,
				FacilityCode: cred.FacilityCode,
				CardNumber:   cred.CardNumber,
				Hex:          cred.Hex,
				Valid:        filter.Valid(cred),
			}
			if g := cred.Gallagher; g != nil {
				res.RegionCode = &g.RegionCode
				res.IssueLevel = &g.IssueLevel
			}
			return outputJSON(c.App.Writer, res)
		},
	}
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	return cli.Exit(err.Error(), 1)
}
