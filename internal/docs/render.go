package docs

import (
	"encoding/json"
	"fmt"
	"strings"

	"engagerag/internal/domain"
)

// ContextBlock renders the snapshot into the fixed-format block handed to the
// language model: every metric, the best hour and day, and the engagement
// rate as a percentage for each post type, followed by totals.
func ContextBlock(snap domain.Snapshot) string {
	return summary(snap, true)
}

func summary(snap domain.Snapshot, withTiming bool) string {
	var b strings.Builder
	b.WriteString("SOCIAL MEDIA ANALYTICS SUMMARY\n")
	b.WriteString("============================\n\n")
	b.WriteString("POST TYPE PERFORMANCE METRICS:\n")
	for _, pt := range snap.PostTypes() {
		fmt.Fprintf(&b, "\n%s POSTS:\n", strings.ToUpper(string(pt)))
		for _, m := range domain.Metrics {
			fmt.Fprintf(&b, "- Average %s: %.1f\n", m, snap.AvgEngagementByType.For(m)[pt])
		}
		if withTiming {
			fmt.Fprintf(&b, "- Best posting time: %02d:00 hours\n", snap.BestTimeByPostType[pt])
			fmt.Fprintf(&b, "- Best posting day: %s\n", snap.BestDayByPostType[pt])
			fmt.Fprintf(&b, "- Average engagement rate: %s\n", Percent(snap.EngagementRateByType[pt]))
		}
	}
	b.WriteString("\nOTHER STATISTICS:\n")
	fmt.Fprintf(&b, "- Total posts analyzed: %d\n", snap.TotalPosts)
	fmt.Fprintf(&b, "- Post type distribution: %s\n", distributionJSON(snap))
	return b.String()
}

// Percent formats a ratio such as 0.0421 as "4.21%".
func Percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func distributionJSON(snap domain.Snapshot) string {
	// map keys marshal sorted, which keeps the text deterministic
	data, err := json.Marshal(snap.PostTypeDistribution)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func formatHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatDays(days []domain.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
