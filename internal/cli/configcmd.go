package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the engine configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check config.yml plus environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(rootOpts, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := prepare(rootOpts.DataDir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rt.CfgPath)
			return err
		},
	})
	return cmd
}

func runConfigValidate(rootOpts *RootOptions, out io.Writer) error {
	rt, err := prepare(rootOpts.DataDir)
	if err != nil {
		return err
	}
	_, vr, err := rt.load()
	if err != nil {
		return WrapExitError(ExitCommandError, "config", err)
	}

	fmt.Fprintf(out, "config: %s\n", rt.CfgPath)
	for _, w := range vr.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	for _, e := range vr.Errors {
		fmt.Fprintf(out, "  error: %s\n", e)
	}
	if !vr.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(vr.Errors)))
	}
	fmt.Fprintln(out, "OK")
	return nil
}
