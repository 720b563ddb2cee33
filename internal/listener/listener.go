// Package listener subscribes to the alert subject on the message bus and
// runs each inbound alert through triage, agent enrichment, and the
// append-only log.
//
// Messages are handled strictly one at a time: a slow lookup or agent call
// backpressures the subject rather than fanning out, so log append order
// matches arrival order. A failing message is logged and dropped; only
// context cancellation or connection loss ends the loop.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/alert"
	"github.com/threatsentry/threatsentry/internal/config"
	"github.com/threatsentry/threatsentry/internal/history"
	"github.com/threatsentry/threatsentry/internal/triage"
)

// Enricher is the agent invocation used to analyze each alert.
type Enricher interface {
	Invoke(ctx context.Context, input string) (string, error)
}

// Listener consumes alerts from one subject and records triage verdicts.
type Listener struct {
	cfg      *config.Config
	store    history.Store
	enricher Enricher
	logger   *zap.Logger
}

// New creates a Listener. enricher may not be nil.
func New(cfg *config.Config, store history.Store, enricher Enricher, logger *zap.Logger) *Listener {
	return &Listener{cfg: cfg, store: store, enricher: enricher, logger: logger}
}

// Run connects to the bus and processes messages until ctx is cancelled
// or the connection is lost. Connection loss is fatal; there is no
// in-process reconnect.
func (l *Listener) Run(ctx context.Context) error {
	nc, err := nats.Connect(l.cfg.NATSURL, nats.Name("threatsentry-listener"))
	if err != nil {
		return fmt.Errorf("connect to nats at %s: %w", l.cfg.NATSURL, err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync(l.cfg.NATSSubject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", l.cfg.NATSSubject, err)
	}
	defer sub.Unsubscribe() //nolint:errcheck

	l.logger.Info("listening for alerts",
		zap.String("url", l.cfg.NATSURL),
		zap.String("subject", l.cfg.NATSSubject),
	)

	for {
		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				l.logger.Info("listener stopping")
				return nil
			}
			return fmt.Errorf("subscription lost: %w", err)
		}
		l.HandleMessage(ctx, msg.Data)
	}
}

// HandleMessage runs the triage/enrich/log pipeline for one payload.
// Every failure is recorded in metrics and the log, never propagated:
// one bad message must not end the subscription.
func (l *Listener) HandleMessage(ctx context.Context, data []byte) {
	alertsReceived.Inc()

	var rec alert.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		alertsDropped.WithLabelValues("decode").Inc()
		l.logger.Warn("dropping undecodable alert", zap.Error(err), zap.ByteString("payload", truncate(data, 512)))
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	verdict := triage.Triage(rec)
	l.logger.Info("alert triaged",
		zap.String("alert_id", rec.ID),
		zap.String("verdict", verdict.String()),
	)

	enrichment, err := l.enricher.Invoke(ctx, string(data))
	if err != nil {
		alertsDropped.WithLabelValues("enrich").Inc()
		l.logger.Warn("agent enrichment failed, dropping alert",
			zap.String("alert_id", rec.ID), zap.Error(err))
		return
	}
	l.logger.Debug("agent enrichment", zap.String("alert_id", rec.ID), zap.String("output", enrichment))

	entry := history.Entry{Alert: rec, Triage: verdict.String()}
	if err := l.store.Append(ctx, entry); err != nil {
		alertsDropped.WithLabelValues("append").Inc()
		l.logger.Error("failed to append alert log entry",
			zap.String("alert_id", rec.ID), zap.Error(err))
		return
	}
	alertsLogged.Inc()
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
