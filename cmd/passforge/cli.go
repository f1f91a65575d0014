package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/mcp"
	"github.com/hpungsan/passforge/internal/ops"
	"github.com/hpungsan/passforge/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(deps ops.Deps) *cli.App {
	app := &cli.App{
		Name:    "passforge",
		Usage:   "Secure password generator",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(deps),
			analyzeCmd(deps),
			statusCmd(deps),
			presetCmd(deps),
			serveCmd(deps),
			mcpCmd(deps),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// optionFlags are the generator toggles shared by generate, analyze, and preset save.
func optionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "length", Aliases: []string{"l"}, Usage: fmt.Sprintf("Password length (%d-%d)", generator.MinLength, generator.MaxLength)},
		&cli.BoolFlag{Name: "lowercase", Usage: "Include lowercase letters"},
		&cli.BoolFlag{Name: "uppercase", Usage: "Include uppercase letters"},
		&cli.BoolFlag{Name: "numbers", Usage: "Include digits"},
		&cli.BoolFlag{Name: "symbols", Usage: "Include symbols"},
		&cli.BoolFlag{Name: "exclude-similar", Usage: "Exclude look-alike characters (il1Lo0O)"},
		&cli.BoolFlag{Name: "exclude-ambiguous", Usage: "Exclude hard-to-type symbols"},
		&cli.BoolFlag{Name: "ensure-all-types", Usage: "Require at least one character of each selected type"},
	}
}

// overridesFromFlags returns overrides for the option flags that were set.
// Unset flags leave the preset or configured default in place, so
// --symbols=false turns symbols off while omitting --symbols keeps them.
func overridesFromFlags(c *cli.Context) generator.Overrides {
	var ov generator.Overrides
	if c.IsSet("length") {
		v := c.Int("length")
		ov.Length = &v
	}
	ov.Lowercase = boolFlag(c, "lowercase")
	ov.Uppercase = boolFlag(c, "uppercase")
	ov.Numbers = boolFlag(c, "numbers")
	ov.Symbols = boolFlag(c, "symbols")
	ov.ExcludeSimilar = boolFlag(c, "exclude-similar")
	ov.ExcludeAmbiguous = boolFlag(c, "exclude-ambiguous")
	ov.EnsureAllTypes = boolFlag(c, "ensure-all-types")
	return ov
}

func boolFlag(c *cli.Context, name string) *bool {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Bool(name)
	return &v
}

// generateCmd creates the generate command.
func generateCmd(deps ops.Deps) *cli.Command {
	flags := append(optionFlags(),
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1, Usage: fmt.Sprintf("Number of passwords (max %d)", generator.MaxBatch)},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "Start from a saved preset"},
		&cli.BoolFlag{Name: "analyze", Aliases: []string{"a"}, Usage: "Include strength and entropy for each password"},
		&cli.BoolFlag{Name: "plain", Usage: "Print passwords one per line instead of JSON"},
	)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate one or more passwords",
		Flags: flags,
		Action: func(c *cli.Context) error {
			count := c.Int("count")
			output, err := ops.Generate(c.Context, deps, ops.GenerateInput{
				Preset:    c.String("preset"),
				Overrides: overridesFromFlags(c),
				Count:     &count,
				Analyze:   c.Bool("analyze"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("plain") {
				if output.Warning != "" {
					fmt.Fprintf(c.App.ErrWriter, "warning: %s\n", output.Warning)
				}
				for _, p := range output.Passwords {
					fmt.Fprintln(c.App.Writer, p.Password)
				}
				return nil
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// analyzeCmd creates the analyze command.
func analyzeCmd(deps ops.Deps) *cli.Command {
	flags := append(optionFlags(),
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "Assume the password was drawn from a preset's pool"},
	)

	return &cli.Command{
		Name:      "analyze",
		Usage:     "Score a password and estimate its entropy (reads stdin when no argument is given)",
		ArgsUsage: "[password]",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			password, err := readPassword(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Analyze(c.Context, deps, ops.AnalyzeInput{
				Password:  password,
				Preset:    c.String("preset"),
				Overrides: overridesFromFlags(c),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report random source availability and preset count",
		Action: func(c *cli.Context) error {
			output, err := ops.Status(c.Context, deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// presetCmd creates the preset command and its subcommands.
func presetCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "preset",
		Usage: "Manage named option presets",
		Subcommands: []*cli.Command{
			presetSaveCmd(deps),
			presetListCmd(deps),
			presetShowCmd(deps),
			presetUpdateCmd(deps),
			presetDeleteCmd(deps),
			presetExportCmd(deps),
			presetImportCmd(deps),
		},
	}
}

func presetSaveCmd(deps ops.Deps) *cli.Command {
	flags := append(optionFlags(),
		&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
	)

	return &cli.Command{
		Name:      "save",
		Usage:     "Save options as a named preset (unset flags use configured defaults)",
		ArgsUsage: "<name>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one preset name is required"))
			}

			opts := overridesFromFlags(c).Apply(deps.Config.GeneratorDefaults())
			output, err := ops.SavePreset(c.Context, deps.DB, ops.SavePresetInput{
				Name:    c.Args().First(),
				Options: opts,
				Mode:    ops.SaveMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

func presetListCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List presets, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: ops.DefaultListLimit, Usage: "Max items to return"},
			&cli.IntFlag{Name: "offset", Value: 0, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListPresets(c.Context, deps.DB, ops.ListPresetsInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func presetShowCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a preset by name",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one preset name is required"))
			}
			output, err := ops.FetchPreset(c.Context, deps.DB, ops.FetchPresetInput{Name: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func presetUpdateCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Change selected options of a preset (unset flags keep stored values)",
		ArgsUsage: "<name>",
		Flags:     optionFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one preset name is required"))
			}
			output, err := ops.UpdatePreset(c.Context, deps.DB, ops.UpdatePresetInput{
				Name:      c.Args().First(),
				Overrides: overridesFromFlags(c),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func presetDeleteCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a preset by name",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one preset name is required"))
			}
			output, err := ops.DeletePreset(c.Context, deps.DB, ops.DeletePresetInput{Name: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func presetExportCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all presets to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Output path (default: ~/.passforge/exports/presets-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportPresets(c.Context, deps.DB, deps.Config, ops.ExportPresetsInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func presetImportCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import presets from a JSONL export",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one import path is required"))
			}
			output, err := ops.ImportPresets(c.Context, deps.DB, deps.Config, ops.ImportPresetsInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func serveCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Interface to listen on (default from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := deps.Config.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := deps.Config.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv, err := web.NewServer(deps, Version, bind, port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, deps.Logger)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve password tools over MCP stdio",
		Action: func(_ *cli.Context) error {
			return mcp.Run(deps, Version)
		},
	}
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var pErr *errors.PassError
	if stderrors.As(err, &pErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readPassword takes the password from the first argument, from the app
// reader when it is piped, or from a no-echo prompt when stdin is a terminal.
// Only the trailing line ending is stripped, since leading and trailing
// spaces are valid password characters.
func readPassword(c *cli.Context) (string, error) {
	if c.NArg() > 1 {
		return "", errors.NewInvalidRequest("at most one password argument is allowed")
	}
	if c.NArg() == 1 {
		return c.Args().First(), nil
	}

	if c.App.Reader == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		return promptPassword(c.App.ErrWriter, os.Stdin)
	}

	data, err := io.ReadAll(io.LimitReader(c.App.Reader, 64<<10))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func promptPassword(w io.Writer, f *os.File) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", errors.NewInternal(err)
	}
	password, err := term.ReadPassword(int(f.Fd()))
	// ReadPassword leaves the cursor on the prompt line.
	fmt.Fprintln(w)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(password), nil
}
