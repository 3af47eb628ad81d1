package alert

import (
	"fmt"
	"time"

	"github.com/samijaber1/poolwatch/internal/detect"
)

// Render produces the human-readable notification text for an event,
// including the suggested remediation steps for the on-call engineer.
func Render(ev detect.Event) string {
	switch e := ev.(type) {
	case detect.Failover:
		return renderFailover(e)
	case detect.HighErrorRate:
		return renderHighErrorRate(e)
	default:
		return fmt.Sprintf("unknown event kind %q", ev.Kind())
	}
}

func renderFailover(e detect.Failover) string {
	return fmt.Sprintf(
		"🔄 *Failover Detected*\n"+
			"• From: %s → To: %s\n"+
			"• Release: %s\n"+
			"• Upstream: %s\n"+
			"• Time: %s\n\n"+
			"*Actions Required:*\n"+
			"1. Check %s container logs\n"+
			"2. Verify health endpoints on both pools\n"+
			"3. Investigate failover cause",
		e.FromPool, e.ToPool,
		e.Release,
		e.UpstreamAddr,
		formatTimestamp(e.Timestamp),
		e.FromPool,
	)
}

func renderHighErrorRate(e detect.HighErrorRate) string {
	return fmt.Sprintf(
		"⚠️ *High Error Rate Alert*\n"+
			"• Rate: %.1f%% 5xx errors\n"+
			"• Window: last %d requests\n"+
			"• Current Pool: %s\n"+
			"• Time: %s\n\n"+
			"*Actions Required:*\n"+
			"1. Check application logs for errors\n"+
			"2. Verify upstream health endpoints\n"+
			"3. Consider manual failover if persistent\n"+
			"4. Set MAINTENANCE_MODE=true if investigating",
		e.RatePercent,
		e.WindowLen,
		e.CurrentPool,
		formatTimestamp(e.Timestamp),
	)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
