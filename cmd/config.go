package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/basketloom/internal/config"
	"github.com/KaramelBytes/basketloom/internal/dataset"
	"github.com/KaramelBytes/basketloom/internal/mining"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set BasketLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "min_support: %g\n", c.MinSupport)
		fmt.Fprintf(out, "min_confidence: %g\n", c.MinConfidence)
		fmt.Fprintf(out, "min_lift: %g\n", c.MinLift)
		fmt.Fprintf(out, "max_len: %d\n", c.MaxLen)
		fmt.Fprintf(out, "workers: %d\n", c.Workers)
		fmt.Fprintf(out, "use_encoder: %t\n", c.UseEncoder)
		fmt.Fprintf(out, "strict_binary: %t\n", c.StrictBinary)
		fmt.Fprintf(out, "item_separator: %q\n", c.ItemSeparator)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "top_n: %d\n", c.TopN)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := applySetting(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	p := mining.Params{MinSupport: c.MinSupport, MinConfidence: c.MinConfidence, MinLift: c.MinLift}
	switch key {
	case "min_support", "min_confidence", "min_lift":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		switch key {
		case "min_support":
			p.MinSupport = f
		case "min_confidence":
			p.MinConfidence = f
		default:
			p.MinLift = f
		}
		if err := p.Validate(); err != nil {
			return err
		}
		c.MinSupport, c.MinConfidence, c.MinLift = p.MinSupport, p.MinConfidence, p.MinLift
	case "max_len", "workers", "max_rows", "top_n", "chart_width":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "max_len":
			c.MaxLen = i
		case "workers":
			c.Workers = i
		case "max_rows":
			c.MaxRows = i
		case "top_n":
			c.TopN = i
		case "chart_width":
			c.ChartWidth = i
		}
	case "use_encoder", "strict_binary":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		if key == "use_encoder" {
			c.UseEncoder = b
		} else {
			c.StrictBinary = b
		}
	case "item_separator":
		sep, err := dataset.ParseSeparator(val)
		if err != nil {
			return err
		}
		c.ItemSeparator = sep
	case "output_format":
		switch strings.ToLower(val) {
		case "md", "markdown":
			c.OutputFormat = "md"
		case "table", "json", "csv":
			c.OutputFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid output_format: %s (use md|table|json|csv)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
