package notifier

import (
	"strings"

	"RiskDial/internal/band"
	"RiskDial/internal/model"
)

// StateReader is the read side of the state store used by commands.
type StateReader interface {
	Latest() *model.CompositeSnapshot
	RecentAlerts(n int) []model.AlertLogEntry
}

const helpText = `RiskDial commands:
/score - latest composite score and band
/factors - factor scores and freshness
/alerts - recent alerts
/bands - risk band table`

// NewCommandHandler answers the bot commands from persisted state.
func NewCommandHandler(st StateReader, bands band.Table, symbol string) CommandHandler {
	return func(command string) string {
		cmd := strings.Fields(command)
		if len(cmd) == 0 {
			return ""
		}
		// Strip the "@botname" suffix used in group chats.
		name, _, _ := strings.Cut(cmd[0], "@")
		switch name {
		case "/score":
			snap := st.Latest()
			if snap == nil {
				return "No run recorded yet."
			}
			return FormatDailyReport(snap, symbol)
		case "/factors":
			snap := st.Latest()
			if snap == nil {
				return "No run recorded yet."
			}
			return FormatFactors(snap)
		case "/alerts":
			return FormatAlerts(st.RecentAlerts(10))
		case "/bands":
			return FormatBands(bands)
		case "/start", "/help":
			return helpText
		}
		return ""
	}
}
