package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/keymap"
)

// KeyList is the set of names a configuration may use.
type KeyList struct {
	Keys    []string `json:"keys"`
	Buttons []string `json:"buttons"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the key and button names natty understands",
		Long: `List the canonical key names and mouse button names accepted in a
configuration's listen and action values.

Key names are matched ignoring case; KEY_ prefixes and common aliases such
as ctrl, escape and return are accepted too.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(rootOpts, cmd)
		},
	}
	return cmd
}

func runKeys(opts *RootOptions, cmd *cobra.Command) error {
	list := KeyList{Keys: keymap.Default().Names()}
	for _, b := range command.Buttons {
		list.Buttons = append(list.Buttons, b.String())
	}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(list)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Buttons (%d):\n  %s\n\n", len(list.Buttons), strings.Join(list.Buttons, " "))
	fmt.Fprintf(w, "Keys (%d):\n", len(list.Keys))
	for i := 0; i < len(list.Keys); i += 8 {
		end := min(i+8, len(list.Keys))
		fmt.Fprintf(w, "  %s\n", strings.Join(list.Keys[i:end], " "))
	}
	return nil
}
