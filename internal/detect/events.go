package detect

import "time"

// Kind identifies an alert event family. It doubles as the dispatcher's
// cooldown key.
type Kind string

const (
	KindFailover  Kind = "failover"
	KindErrorRate Kind = "error_rate"
)

// Event is a detected operational event. Exactly one of Failover or
// HighErrorRate carries the payload for its kind.
type Event interface {
	Kind() Kind
	When() time.Time
}

// Failover reports that traffic moved from one pool to another.
type Failover struct {
	FromPool     string
	ToPool       string
	Release      string
	UpstreamAddr string
	Timestamp    time.Time
}

func (e Failover) Kind() Kind      { return KindFailover }
func (e Failover) When() time.Time { return e.Timestamp }

// HighErrorRate reports a 5xx ratio at or above the configured threshold.
type HighErrorRate struct {
	RatePercent float64
	WindowLen   int
	CurrentPool string
	Timestamp   time.Time
}

func (e HighErrorRate) Kind() Kind      { return KindErrorRate }
func (e HighErrorRate) When() time.Time { return e.Timestamp }
