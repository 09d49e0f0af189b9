package pipeline

import (
	"fmt"
	"strings"

	"github.com/steelfab-ops/fitpo/internal/model"
)

// FormatReport generates a human-readable run report for the CLI.
func FormatReport(state model.RunState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Classification Run %s\n\n", state.RunID)

	b.WriteString("## Stages\n")
	for _, st := range state.Stages {
		fmt.Fprintf(&b, "- %s: %s", st.Name, st.Status)
		if st.Message != "" {
			fmt.Fprintf(&b, " — %s", st.Message)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## Phase 1 Classifications\n")
	if len(state.Classifications) == 0 {
		b.WriteString("No items classified.\n")
	}
	for _, c := range state.Classifications {
		fmt.Fprintf(&b, "- %s %q → %s (type %s, pass-through %s, amount %d JPY)\n",
			c.MaterialNo, c.Description, c.FinalClass, c.TypeCode, c.PassThrough, c.OrderAmount)
	}
	b.WriteString("\n")

	b.WriteString("## Phase 2 Verifications\n")
	if len(state.Verifications) == 0 {
		b.WriteString("No review responses verified.\n")
	}
	for _, v := range state.Verifications {
		fmt.Fprintf(&b, "- %s [%s] %s → %s", v.MaterialNo, v.Disposition, v.Outcome, v.Action)
		if v.HITLType != "" {
			fmt.Fprintf(&b, " (%s)", v.HITLType)
		}
		fmt.Fprintf(&b, ": %s\n", v.Rationale)
		if v.PriceAnalysis != nil {
			fmt.Fprintf(&b, "  price analysis [%s]: %.0f JPY/kg, strategy %s\n",
				v.PriceAnalysis.Source, v.PriceAnalysis.RecommendedPrice, v.PriceAnalysis.Strategy)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Purchase Orders\n")
	if len(state.Orders) == 0 {
		b.WriteString("No purchase orders issued.\n")
	}
	for _, o := range state.Orders {
		fmt.Fprintf(&b, "- %s: %s (%s) %d JPY, %s\n",
			o.PONo, o.MaterialNo, o.Fabricator, o.OrderAmount, o.Status)
	}
	b.WriteString("\n")

	if s := state.Summary; s != nil {
		b.WriteString("## Summary\n")
		fmt.Fprintf(&b, "- Items: %d (%d quantity-review, %d quote-required)\n",
			s.TotalItems, s.QuantityReview, s.QuoteRequired)
		fmt.Fprintf(&b, "- Verified: %d (%d confirmed, %d HITL pending, %d cancelled)\n",
			s.Verified, s.Confirmed, s.HITLPending, s.Cancelled)
		fmt.Fprintf(&b, "- Automation rate: %.0f%%\n", s.AutomationRate*100)
		fmt.Fprintf(&b, "- Purchase orders: %d totalling %d JPY\n", s.POCount, s.TotalPOValue)
	}

	return b.String()
}
