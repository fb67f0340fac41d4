package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskDial/internal/band"
	"RiskDial/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []string
	failures int32
	status   int
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if atomic.AddInt32(&f.failures, -1) >= 0 {
				w.WriteHeader(f.status)
				return
			}
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "42", payload["chat_id"])
			assert.Equal(t, "HTML", payload["parse_mode"])
			f.mu.Lock()
			f.sent = append(f.sent, payload["text"])
			f.mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			assert.Equal(t, "7", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":"/bands@riskdial_bot"}},{"update_id":8}]}`)
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSendWithRetry_RecoversFromServerErrors(t *testing.T) {
	fake := &fakeTelegram{failures: 1, status: http.StatusBadGateway}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 3))
	assert.Equal(t, []string{"hello"}, fake.sent)
}

func TestSendWithRetry_ClientErrorIsPermanent(t *testing.T) {
	fake := &fakeTelegram{failures: 5, status: http.StatusBadRequest}
	n := newTestNotifier(t, fake)

	err := n.SendWithRetry(context.Background(), "hello", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
	assert.Empty(t, fake.sent)
}

func TestPoll_DispatchesCommandAndReplies(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	var got []string
	handler := func(cmd string) string {
		got = append(got, cmd)
		return "pong"
	}
	next, err := n.poll(context.Background(), n.Client, 7, handler)
	require.NoError(t, err)
	assert.Equal(t, 9, next)
	assert.Equal(t, []string{"/bands@riskdial_bot"}, got)
	assert.Equal(t, []string{"pong"}, fake.sent)
}

func TestEnabled(t *testing.T) {
	assert.True(t, NewTelegramNotifier("t", "c", "").Enabled())
	assert.False(t, NewTelegramNotifier("", "c", "").Enabled())
	var nilNotifier *TelegramNotifier
	assert.False(t, nilNotifier.Enabled())
}

func scoredSnapshot() *model.CompositeSnapshot {
	b := band.Default.Classify(72)
	return &model.CompositeSnapshot{
		Date:     "2025-04-01",
		Score:    model.IntPtr(72),
		RawScore: model.FloatPtr(69.4),
		Band:     &b,
		Pillars: []model.Pillar{
			{Key: "liquidity", WeightPct: 35, EffectiveWeight: 0.4375, Score: model.FloatPtr(80)},
			{Key: "leverage", WeightPct: 20},
		},
		Factors: []model.Factor{
			{Key: "etf_flows", Pillar: "liquidity", Score: model.IntPtr(80), Status: model.StatusFresh, WeightPct: 21},
			{Key: "derivatives", Pillar: "leverage", Status: model.StatusExcluded, Reason: "source_unavailable"},
		},
		Adjustments: model.Adjustments{Spike: model.Adjustment{Points: 2.6}},
	}
}

func TestFormatDailyReport(t *testing.T) {
	msg := FormatDailyReport(scoredSnapshot(), "BTC")
	assert.Contains(t, msg, "RiskDial BTC")
	assert.Contains(t, msg, "<b>72</b>/100 (High risk)")
	assert.Contains(t, msg, "spike +2.60")
	assert.Contains(t, msg, "leverage: n/a")
	assert.Contains(t, msg, "Degraded: derivatives excluded")

	empty := FormatDailyReport(&model.CompositeSnapshot{Date: "2025-04-01"}, "BTC")
	assert.Contains(t, empty, "No score available")
}

func TestFormatAlert(t *testing.T) {
	up := model.AlertLogEntry{Date: "2025-04-01", Type: model.AlertETFZeroCross,
		Details: map[string]string{"direction": "up", "sum": "1500", "deadband": "1000", "window": "21"}}
	assert.Contains(t, FormatAlert(up), "⬆️")
	assert.Contains(t, FormatAlert(up), "21-day sum 1500 (deadband 1000)")

	change := model.AlertLogEntry{Date: "2025-04-01", Type: model.AlertBandChange,
		Details: map[string]string{"from": "neutral", "to": "elevated", "score": "56"}}
	assert.Contains(t, FormatAlert(change), "neutral → elevated (score 56)")
	assert.Equal(t, "No alerts recorded.", FormatAlerts(nil))
}

type fakeState struct {
	latest *model.CompositeSnapshot
	alerts []model.AlertLogEntry
}

func (f fakeState) Latest() *model.CompositeSnapshot       { return f.latest }
func (f fakeState) RecentAlerts(int) []model.AlertLogEntry { return f.alerts }

func TestCommandHandler(t *testing.T) {
	h := NewCommandHandler(fakeState{latest: scoredSnapshot()}, band.Default, "BTC")
	assert.Contains(t, h("/score"), "<b>72</b>")
	assert.Contains(t, h("/factors@riskdial_bot"), "derivatives [leverage] n/a")
	assert.Contains(t, h("/bands"), "Extreme")
	assert.Equal(t, "No alerts recorded.", h("/alerts"))
	assert.Contains(t, h("/help"), "/score")
	assert.Empty(t, h("hello"))

	none := NewCommandHandler(fakeState{}, band.Default, "BTC")
	assert.Equal(t, "No run recorded yet.", none("/score"))
}
