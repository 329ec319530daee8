package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	mineOutput, encodeOutput, batchOutDir, batchQuiet = "", "", "", false
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

// isolate points HOME at a temp dir so no real config is read or written.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeBaskets(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "baskets.csv")
	content := "i1,i2,i3\nA,B,\nA,B,C\nA,,\nB,C,\nB,,\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestCLI_MineMarkdown(t *testing.T) {
	home := isolate(t)
	p := writeBaskets(t, home)
	out := mustRun(t, "mine", p, "--min-support", "0.4")
	for _, want := range []string{
		"[MINING SUMMARY]",
		"Transactions: 5",
		"[ASSOCIATION RULES]",
		"| B | C | 0.4000 | 0.5000 | 1.2500 |",
		"[TOP RULES BY LIFT]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_MineJSONToFile(t *testing.T) {
	home := isolate(t)
	p := writeBaskets(t, home)
	dest := filepath.Join(home, "out", "rules.json")
	out := mustRun(t, "mine", p, "--min-support", "0.4", "--format", "json", "-o", dest)
	if !strings.Contains(out, "✓ Wrote") {
		t.Fatalf("expected confirmation, got %q", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var rep struct {
		Outcome string            `json:"outcome"`
		Rules   []json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Outcome != "ok" || len(rep.Rules) != 2 {
		t.Fatalf("outcome=%q rules=%d", rep.Outcome, len(rep.Rules))
	}
}

func TestCLI_MineEmptyOutcomePrintsGuidance(t *testing.T) {
	home := isolate(t)
	p := writeBaskets(t, home)
	_, errOut, err := runCmd(t, "mine", p, "--min-support", "0.6")
	if err != nil {
		t.Fatalf("empty outcome must not fail: %v", err)
	}
	if !strings.Contains(errOut, "No association rules can be generated") {
		t.Fatalf("missing guidance on stderr: %q", errOut)
	}
}

func TestCLI_MineRejectsBadThreshold(t *testing.T) {
	home := isolate(t)
	p := writeBaskets(t, home)
	if _, _, err := runCmd(t, "mine", p, "--min-support", "0"); err == nil {
		t.Fatal("expected invalid parameter error")
	}
	if _, _, err := runCmd(t, "mine", p, "--format", "xml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestCLI_MineBinaryStrict(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "onehot.csv")
	if err := os.WriteFile(p, []byte("A,B,C\n1,1,0\n1,1,1\n1,0,0\n0,1,1\n0,1,maybe\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := runCmd(t, "mine", p, "--binary", "--strict", "--min-support", "0.4"); err == nil {
		t.Fatal("expected strict mode to reject 'maybe'")
	}
	out := mustRun(t, "mine", p, "--binary", "--min-support", "0.4", "--format", "csv")
	if !strings.HasPrefix(out, "antecedents,consequents,") {
		t.Fatalf("csv output:\n%s", out)
	}
}

func TestCLI_MineSplitColumnWithCharts(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "orders.csv")
	content := "order,items\n1,A;B\n2,A;B;C\n3,A\n4,B;C\n5,B\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := mustRun(t, "mine", p, "--split-column", "items", "--split-sep", ";",
		"--min-support", "0.4", "--charts", "--chart-width", "10", "--format", "table")
	for _, want := range []string{"Association rules", "Top 2 rules by lift", "C → B"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_Encode(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "week.basket")
	if err := os.WriteFile(p, []byte("milk, bread\nbread\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := mustRun(t, "encode", p)
	want := "bread,milk\n1,1\n1,0\n"
	if out != want {
		t.Fatalf("encode output = %q, want %q", out, want)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	mustRun(t, "config", "set", "min_support", "0.4")
	mustRun(t, "config", "set", "output_format", "json")
	if _, err := os.Stat(filepath.Join(home, ".basketloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "min_support: 0.4") || !strings.Contains(out, "output_format: json") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, _, err := runCmd(t, "config", "set", "min_support", "2"); err == nil {
		t.Fatal("expected validation error for min_support=2")
	}
	if _, _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}

	// Saved thresholds drive mine without flags.
	p := writeBaskets(t, home)
	out = mustRun(t, "mine", p)
	if !strings.Contains(out, `"outcome": "ok"`) {
		t.Fatalf("mine did not pick up config:\n%s", out)
	}
}
