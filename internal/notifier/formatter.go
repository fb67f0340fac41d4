package notifier

import (
	"fmt"
	"sort"
	"strings"

	"RiskDial/internal/band"
	"RiskDial/internal/model"
)

var bandEmoji = map[string]string{
	"minimal":  "🟢",
	"low":      "🟢",
	"neutral":  "🟡",
	"elevated": "🟠",
	"high":     "🔴",
	"extreme":  "🚨",
}

func emojiFor(key string) string {
	if e, ok := bandEmoji[key]; ok {
		return e
	}
	return "⚪"
}

// FormatDailyReport formats a run snapshot into a Telegram message.
func FormatDailyReport(snap *model.CompositeSnapshot, symbol string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>RiskDial %s</b> | %s\n\n", symbol, snap.Date))
	if !snap.HasScore() {
		b.WriteString("No score available: every factor is stale or excluded.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s Risk: <b>%d</b>/100 (%s)\n", emojiFor(snap.Band.Key), *snap.Score, snap.Band.Label))
	if snap.RawScore != nil {
		adj := snap.Adjustments
		b.WriteString(fmt.Sprintf("Composite %.1f | cycle %+.2f | spike %+.2f\n", *snap.RawScore, adj.Cycle.Points, adj.Spike.Points))
	}
	if snap.Band.Recommendation != "" {
		b.WriteString(fmt.Sprintf("\n💡 %s\n", snap.Band.Recommendation))
	}

	b.WriteString("\n📈 <b>Pillars:</b>\n")
	for _, p := range snap.Pillars {
		if p.Score == nil {
			b.WriteString(fmt.Sprintf("  %s: n/a (%.0f%%)\n", p.Key, p.WeightPct))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %.0f (%.0f%% → %.0f%%)\n", p.Key, *p.Score, p.WeightPct, p.EffectiveWeight*100))
	}

	var degraded []string
	for _, f := range snap.Factors {
		if f.Status != model.StatusFresh {
			degraded = append(degraded, f.Key+" "+string(f.Status))
		}
	}
	if len(degraded) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Degraded: %s\n", strings.Join(degraded, ", ")))
	}
	return b.String()
}

// FormatFactors lists every factor with its score, status and age.
func FormatFactors(snap *model.CompositeSnapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧮 <b>Factors</b> | %s\n\n", snap.Date))
	for _, f := range snap.Factors {
		score := "n/a"
		if f.Score != nil {
			score = fmt.Sprintf("%d", *f.Score)
		}
		b.WriteString(fmt.Sprintf("  %s [%s] %s (%s, %.1f%%)", f.Key, f.Pillar, score, f.Status, f.WeightPct))
		if f.Reason != "" {
			b.WriteString(" · " + f.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatAlert formats one alert log entry.
func FormatAlert(a model.AlertLogEntry) string {
	switch a.Type {
	case model.AlertBandChange:
		return fmt.Sprintf("🔔 <b>Band change</b> %s: %s → %s (score %s)",
			a.Date, a.Details["from"], a.Details["to"], a.Details["score"])
	case model.AlertETFZeroCross:
		arrow := "⬇️"
		if a.Details["direction"] == "up" {
			arrow = "⬆️"
		}
		return fmt.Sprintf("%s <b>ETF flows crossed zero</b> %s: %s-day sum %s (deadband %s)",
			arrow, a.Date, a.Details["window"], a.Details["sum"], a.Details["deadband"])
	}
	keys := make([]string, 0, len(a.Details))
	for k := range a.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + a.Details[k]
	}
	return fmt.Sprintf("🔔 %s %s %s", a.Type, a.Date, strings.Join(parts, " "))
}

// FormatAlerts formats a list of alerts, one per line.
func FormatAlerts(alerts []model.AlertLogEntry) string {
	if len(alerts) == 0 {
		return "No alerts recorded."
	}
	lines := make([]string, len(alerts))
	for i, a := range alerts {
		lines[i] = FormatAlert(a)
	}
	return strings.Join(lines, "\n")
}

// FormatBands prints the band table.
func FormatBands(table band.Table) string {
	var b strings.Builder
	b.WriteString("🎚 <b>Risk bands</b>\n\n")
	for _, bd := range table {
		b.WriteString(fmt.Sprintf("%s %3d–%-3d %s", emojiFor(bd.Key), bd.Lo, bd.Hi, bd.Label))
		if bd.Recommendation != "" {
			b.WriteString(": " + bd.Recommendation)
		}
		b.WriteString("\n")
	}
	return b.String()
}
