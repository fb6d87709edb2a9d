package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidationResult is the JSON payload of validate.
type ValidationResult struct {
	Valid    bool          `json:"valid"`
	Path     string        `json:"path,omitempty"`
	Commands []CommandView `json:"commands,omitempty"`
	Errors   []Issue       `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration file",
		Long: `Load a configuration file, check it against the schema and build the
command table without touching any input device.

Every problem is reported, not just the first one.

Examples:
  natty validate
  natty validate --config ./Natty.toml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "config file (default ./Natty.toml, then the user config dir)")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		result := ValidationResult{Errors: issues(err)}
		if cfg != nil {
			result.Path = cfg.Path
		}
		return outputValidationErrors(formatter, result, exitCodeFor(err))
	}

	formatter.VerboseLog("Loaded %s", cfg.Path)

	result := ValidationResult{
		Valid:    true,
		Path:     cfg.Path,
		Commands: viewCommands(cfg.Table.Snapshot()),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	out := formatter.Writer
	fmt.Fprintf(out, "%s: %d command(s)\n", result.Path, len(result.Commands))
	for _, c := range result.Commands {
		fmt.Fprintf(out, "  %-16s %-7s %s %s", c.Trigger, c.Method, c.Action, c.Target)
		if c.MaxCPS > 0 {
			fmt.Fprintf(out, " @ %d-%d cps", c.MinCPS, c.MaxCPS)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult, code int) error {
	if formatter.JSON() {
		first := result.Errors[0]
		if err := formatter.Error(first.Code, fmt.Sprintf("%d configuration error(s)", len(result.Errors)), result); err != nil {
			return err
		}
	} else {
		if result.Path != "" {
			fmt.Fprintf(formatter.Writer, "%s: invalid configuration\n", result.Path)
		}
		for _, issue := range result.Errors {
			if issue.Field != "" {
				fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", issue.Code, issue.Field, issue.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "  [%s] %s\n", issue.Code, issue.Message)
			}
		}
	}
	return NewExitError(code, fmt.Sprintf("%d configuration error(s)", len(result.Errors)))
}
