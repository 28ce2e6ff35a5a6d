package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/classify"
	"github.com/spec-kit/support-router/internal/config"
	"github.com/spec-kit/support-router/internal/eval"
	"github.com/spec-kit/support-router/internal/eventlog"
	"github.com/spec-kit/support-router/internal/llm"
)

var (
	evalUseCapability bool
	evalLimit         int
)

// EvalCmd runs the classifier benchmark.
var EvalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the classifier benchmark and print per-case results",
	RunE:  runEval,
}

func init() {
	EvalCmd.Flags().BoolVar(&evalUseCapability, "use-capability", false, "classify via the external model instead of rules only")
	EvalCmd.Flags().IntVar(&evalLimit, "limit", 0, "cap the number of benchmark cases (0 = all)")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var capability classify.Capability
	if evalUseCapability {
		client := llm.NewClient(cfg.Capability)
		if client == nil {
			return fmt.Errorf("capability requested but not configured (set ANTHROPIC_API_KEY)")
		}
		capability = client
	}
	classifier := classify.New(capability, cfg.Capability.Timeout(), eventlog.NopSink{}, zap.NewNop())

	correct, total, rows := eval.Run(context.Background(), classifier, evalUseCapability, evalLimit)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RESULT\tEXPECTED\tPREDICTED\tTEXT")
	for _, row := range rows {
		mark := "ok"
		if !row.Correct {
			mark = "MISS"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, row.Expected, row.Predicted, row.Text)
	}
	w.Flush()

	fmt.Printf("\naccuracy: %d/%d (%.1f%%)\n", correct, total, float64(correct)/float64(total)*100)
	return nil
}
