package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/certcat/certext/oid"
)

var oidCmd = &cobra.Command{
	Use:   "oid",
	Short: "Convert object identifiers between DER and dotted form",
}

var oidDecodeCmd = &cobra.Command{
	Args: cobra.MinimumNArgs(1),
	RunE: runOIDDecode,
	Use:  "decode [flags] hex...",
	Long: `Decode hex-encoded OBJECT IDENTIFIER content octets to dotted form.

With --element the input is a complete DER element, tag and length included.
Spaces and colons in the hex are ignored.`,
}

var oidEncodeCmd = &cobra.Command{
	Args: cobra.MinimumNArgs(1),
	RunE: runOIDEncode,
	Use:  "encode [flags] oids...",
	Long: `Encode dotted OIDs to hex content octets.

With --element the complete DER element is printed.`,
}

func init() {
	rootCmd.AddCommand(oidCmd)
	oidCmd.AddCommand(oidDecodeCmd, oidEncodeCmd)

	oidDecodeCmd.Flags().BoolP("element", "e", false, "Input includes the tag and length")
	oidEncodeCmd.Flags().BoolP("element", "e", false, "Output includes the tag and length")
}

func runOIDDecode(cmd *cobra.Command, args []string) error {
	decode := oid.Decode
	if element, _ := cmd.Flags().GetBool("element"); element {
		decode = oid.DecodeElement
	}

	for _, arg := range args {
		raw, err := hex.DecodeString(strings.NewReplacer(" ", "", ":", "").Replace(arg))
		if err != nil {
			return fmt.Errorf("%q: %w", arg, err)
		}

		dotted, err := decode(raw)
		if err != nil {
			return fmt.Errorf("%q: %w", arg, err)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), dotted); err != nil {
			return err
		}
	}
	return nil
}

func runOIDEncode(cmd *cobra.Command, args []string) error {
	encode := oid.Encode
	if element, _ := cmd.Flags().GetBool("element"); element {
		encode = oid.EncodeElement
	}

	for _, arg := range args {
		content, err := encode(arg)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(content)); err != nil {
			return err
		}
	}
	return nil
}
