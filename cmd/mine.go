package cmd

import (
	"fmt"

	"github.com/KaramelBytes/basketloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	mineOpts   miningFlags
	mineOutput string
)

var mineCmd = &cobra.Command{
	Use:   "mine <file>",
	Short: "Find frequent itemsets and association rules in a transaction file",
	Long: `Mine reads a CSV/TSV/XLSX table (each row a transaction, each non-blank
cell an item) or a basket text file (one transaction per line), runs Apriori
and derives association rules.

With --binary the table is read as a one-hot matrix: each column is an item
and a cell of 1/true marks it present.`,
	Example: `  basketloom mine groceries.csv --min-support 0.05 --min-confidence 0.3
  basketloom mine onehot.csv --binary --strict --format json -o rules.json
  basketloom mine orders.csv --split-column items --split-sep ';' --charts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := mineOpts.resolve(cmd.Flags(), effectiveConfig())
		if err != nil {
			return err
		}
		rep, err := mineFile(cmd.Context(), args[0], s, log)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		errOut := cmd.ErrOrStderr()
		for _, w := range rep.Warnings {
			fmt.Fprintf(errOut, "⚠ %s\n", w)
		}
		if rep.Outcome.Empty() {
			fmt.Fprintf(errOut, "⚠ %s\n", rep.Outcome.Guidance())
		}

		if mineOutput != "" {
			b, err := renderToBytes(rep, s)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(mineOutput, b); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote %d itemsets and %d rules to %s\n", len(rep.Itemsets), len(rep.Rules), mineOutput)
			return nil
		}
		return renderReport(out, rep, s)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineOpts.register(mineCmd.Flags())
	mineCmd.Flags().StringVarP(&mineOutput, "output", "o", "", "write the report to this path instead of stdout")
}
