package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/basketloom/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	encodeOpts   miningFlags
	encodeOutput string
)

var encodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Print the one-hot transaction matrix a file encodes to, as CSV",
	Long: `Encode loads a transaction file the same way mine does and prints the
boolean matrix: one column per distinct item in sorted order, one row per
transaction, cells 1 or 0.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := encodeOpts.resolve(cmd.Flags(), effectiveConfig())
		if err != nil {
			return err
		}
		raw, t, err := loadTable(args[0], s)
		if err != nil {
			return err
		}
		log.Debug("encoded transactions", zap.String("file", raw.Name), zap.Int("transactions", t.N()), zap.Int("items", t.Width()))
		for _, w := range raw.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
		}
		if encodeOutput == "" {
			return t.WriteCSV(cmd.OutOrStdout())
		}
		var buf bytes.Buffer
		if err := t.WriteCSV(&buf); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(encodeOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d transactions x %d items to %s\n", t.N(), t.Width(), encodeOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeOpts.registerInput(encodeCmd.Flags())
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "write the matrix to this path instead of stdout")
}
