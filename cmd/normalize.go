package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
	Use:  "normalize [flags] names...",
	Long: `Normalize attribute, extension and algorithm names.

Each argument is printed in canonical long form, or short form with --short.
Names that are not in the tables are printed unchanged.`,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().BoolP("short", "s", false, "Prefer short names")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	e := getEnv(cmd)
	short, _ := cmd.Flags().GetBool("short")

	for _, name := range args {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), e.names.Normalize(name, short)); err != nil {
			return err
		}
	}
	return nil
}
