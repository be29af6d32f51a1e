package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/vsinha/stockseed/pkg/application/dto"
)

// PrintSummary renders one company's generation outcome.
func PrintSummary(w io.Writer, s *dto.CompanySummary) {
	fmt.Fprintf(w, "📊 %s\n", s.Company)
	fmt.Fprintf(w, "==================================================\n\n")

	fmt.Fprintf(w, "Operations: %d created, %d skipped, %d failed\n\n",
		s.Succeeded(), s.Skipped(), s.Failed())

	if len(s.Counts) > 0 {
		fmt.Fprintf(w, "%-12s %-10s %-8s\n", "Kind", "Result", "Count")
		fmt.Fprintf(w, "%-12s %-10s %-8s\n", "------------", "----------", "--------")
		keys := make([]string, 0, len(s.Counts))
		for k := range s.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kind, result := splitCountKey(k)
			fmt.Fprintf(w, "%-12s %-10s %-8d\n", kind, result, s.Counts[k])
		}
		fmt.Fprintln(w)
	}

	if len(s.TopOutboundSKUs) > 0 {
		fmt.Fprintf(w, "📦 Top Outbound SKUs:\n")
		fmt.Fprintf(w, "%-12s %-12s\n", "SKU", "Qty")
		fmt.Fprintf(w, "%-12s %-12s\n", "------------", "------------")
		for _, sq := range s.TopOutboundSKUs {
			fmt.Fprintf(w, "%-12s %-12s\n", sq.SKU, sq.Qty.StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	if len(s.LowestDaysCover) > 0 {
		fmt.Fprintf(w, "⏳ Lowest Days of Cover:\n")
		fmt.Fprintf(w, "%-12s %-8s %-12s %-12s\n", "SKU", "Days", "Stock", "Out/Day")
		fmt.Fprintf(w, "%-12s %-8s %-12s %-12s\n", "------------", "--------", "------------", "------------")
		for _, c := range s.LowestDaysCover {
			fmt.Fprintf(w, "%-12s %-8.1f %-12s %-12s\n", c.SKU, c.Days, c.Stock.StringFixed(2), c.OutRate.StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	if len(s.Anomalies) > 0 {
		fmt.Fprintf(w, "⚠️  Injected Anomalies:\n")
		for _, a := range s.Anomalies {
			fmt.Fprintf(w, "  [%s] %s\n", a.Kind, a.Detail)
		}
		fmt.Fprintln(w)
	}

	if len(s.FailedOperations) > 0 {
		fmt.Fprintf(w, "❌ Failed Operations:\n")
		for _, f := range s.FailedOperations {
			fmt.Fprintf(w, "  %s: %s\n", f.Origin, f.Reason)
		}
		fmt.Fprintln(w)
	}

	if s.PickingsCSV != "" {
		fmt.Fprintf(w, "Pickings file: %s\n", s.PickingsCSV)
	}
	if s.MovesCSV != "" {
		fmt.Fprintf(w, "Moves file:    %s\n", s.MovesCSV)
	}
	fmt.Fprintln(w)
}

func splitCountKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
