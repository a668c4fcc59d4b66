package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/meteor3lint/internal/config"
	"github.com/phobologic/meteor3lint/internal/rules"
)

const configHeader = "# meteor3lint configuration. Severities: off, warn, error.\n"

// newInitCmd returns the `meteor3lint init` subcommand, which writes a
// configuration file listing every rule at its preset severity.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		preset string
		dryRun bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file",
		Long: `Write a meteor3lint configuration file that spells out every rule at the
severity of the chosen preset, ready for editing.

path defaults to ./` + config.FileNames[0] + `. An existing file is only
replaced with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := renderConfig(preset)
			if err != nil {
				return err
			}

			if dryRun {
				_, _ = stdout.Write(content)
				return nil
			}

			path := config.FileNames[0]
			if len(args) > 0 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("checking %s: %w", path, err)
				}
			}

			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(stderr, "wrote %s preset to %s\n", preset, path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&preset, "preset", config.DefaultPreset, "preset to write: "+strings.Join(config.PresetNames(), ", "))
	f.BoolVar(&dryRun, "dry-run", false, "print the configuration instead of writing it")
	f.BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// renderConfig returns the YAML configuration for the named preset.
func renderConfig(preset string) ([]byte, error) {
	file, err := config.Preset(preset)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// newRulesCmd returns the `meteor3lint rules` subcommand.
func newRulesCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRules(stdout)
		},
	}
}

func listRules(w io.Writer) error {
	names := config.PresetNames()
	presets := make([]map[string]string, len(names))
	for i, name := range names {
		sev, err := config.PresetSeverities(name)
		if err != nil {
			return err
		}
		presets[i] = make(map[string]string, len(sev))
		for rule, s := range sev {
			presets[i][rule] = s.String()
		}
	}

	headers := []string{"RULE", "TYPE", "FIXABLE"}
	for _, name := range names {
		headers = append(headers, strings.ToUpper(name))
	}
	headers = append(headers, "DESCRIPTION")

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == len(headers)-1 {
				return lipgloss.NewStyle()
			}
			return lipgloss.NewStyle().PaddingRight(2)
		}).
		Headers(headers...)

	for _, r := range rules.All() {
		fixable := "no"
		if r.Fixable {
			fixable = "yes"
		}
		row := []string{r.QualifiedName(), string(r.Type), fixable}
		for i := range names {
			row = append(row, presets[i][r.Name])
		}
		row = append(row, r.Description)
		t.Row(row...)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
