// Package alert turns detected events into webhook notifications, applying
// the suppression gates that keep the channel quiet: maintenance mode,
// missing target, and per-kind cooldown.
package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/samijaber1/poolwatch/internal/detect"
	"github.com/samijaber1/poolwatch/internal/notify"
)

// Outcome describes what the dispatcher did with an event.
type Outcome string

const (
	OutcomeSent                  Outcome = "sent"
	OutcomeSendFailed            Outcome = "send_failed"
	OutcomeSuppressedMaintenance Outcome = "maintenance"
	OutcomeSuppressedNoWebhook   Outcome = "no_webhook"
	OutcomeSuppressedCooldown    Outcome = "cooldown"
)

// Suppressed reports whether the outcome was a suppression (as opposed to a
// delivery attempt).
func (o Outcome) Suppressed() bool {
	switch o {
	case OutcomeSuppressedMaintenance, OutcomeSuppressedNoWebhook, OutcomeSuppressedCooldown:
		return true
	}
	return false
}

// Dispatcher formats events and delivers them through a Notifier. It owns
// the per-kind cooldown timestamps; like the detection state these are only
// touched from the watch loop.
type Dispatcher struct {
	notifier    notify.Notifier
	cooldown    time.Duration
	maintenance bool
	log         zerolog.Logger

	lastAlert map[detect.Kind]time.Time

	// now is swapped in tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher. A nil notifier means no webhook target
// is configured: every event is suppressed and logged instead of delivered.
func NewDispatcher(notifier notify.Notifier, cooldown time.Duration, maintenance bool, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:    notifier,
		cooldown:    cooldown,
		maintenance: maintenance,
		log:         log,
		lastAlert:   make(map[detect.Kind]time.Time),
		now:         time.Now,
	}
}

// LastAlertTime returns the timestamp of the last successfully delivered
// alert of the given kind (zero before any delivery).
func (d *Dispatcher) LastAlertTime(kind detect.Kind) time.Time {
	return d.lastAlert[kind]
}

// Dispatch applies the suppression gates in order (maintenance, missing
// target, cooldown) and, if all pass, renders the event and sends it. The
// cooldown timestamp advances only when the transport reports success, so a
// failed delivery is retried by the next qualifying event rather than
// silently dropped for a full cooldown period.
func (d *Dispatcher) Dispatch(ctx context.Context, ev detect.Event) Outcome {
	kind := ev.Kind()
	message := Render(ev)

	if d.maintenance {
		d.log.Info().
			Str("kind", string(kind)).
			Str("reason", string(OutcomeSuppressedMaintenance)).
			Str("message", message).
			Msg("alert suppressed: maintenance mode on")
		return OutcomeSuppressedMaintenance
	}

	if d.notifier == nil {
		d.log.Info().
			Str("kind", string(kind)).
			Str("reason", string(OutcomeSuppressedNoWebhook)).
			Str("message", message).
			Msg("alert suppressed: no webhook configured")
		return OutcomeSuppressedNoWebhook
	}

	now := d.now()
	if now.Sub(d.lastAlert[kind]) < d.cooldown {
		d.log.Info().
			Str("kind", string(kind)).
			Str("reason", string(OutcomeSuppressedCooldown)).
			Time("last_alert", d.lastAlert[kind]).
			Msg("alert suppressed: in cooldown")
		return OutcomeSuppressedCooldown
	}

	if err := d.notifier.Send(ctx, message); err != nil {
		d.log.Error().
			Err(err).
			Str("kind", string(kind)).
			Msg("alert delivery failed")
		return OutcomeSendFailed
	}

	d.lastAlert[kind] = now
	d.log.Info().
		Str("kind", string(kind)).
		Msg("alert delivered")
	return OutcomeSent
}
