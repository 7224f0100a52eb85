// Package processor drives a peerspend run: it reads the batch sequence
// to seed parameters, the friend graph, and purchase history, then reads
// the stream sequence, evaluating each purchase against its owner's
// network and emitting flagged records in arrival order.
//
// Processing is strictly single-threaded: one dispatch loop is the only
// writer of directory and window state, so no locking is needed.
package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"peerspend/internal/amount"
	"peerspend/internal/anomaly"
	"peerspend/internal/logging"
	"peerspend/internal/metrics"
	"peerspend/internal/purchase"
	"peerspend/internal/social"
)

// ErrMissingParameters is returned when the batch sequence ends without a
// valid parameter record, or an event arrives before one.
var ErrMissingParameters = errors.New("no parameter record (D, T) seen before events")

// maxLineBytes bounds a single feed line.
const maxLineBytes = 1 << 20

// Processor holds the run-scoped state for one batch+stream run. Create
// a fresh Processor per run; nothing is shared between runs.
type Processor struct {
	logger *slog.Logger
	strict bool

	seq    *purchase.Sequencer
	dir    *social.Directory
	engine *anomaly.Engine

	degrees   int
	threshold int

	eventsProcessed int
	anomaliesFound  int
}

// Option configures a Processor.
type Option func(*Processor)

// WithStrictEvents makes malformed events abort the run instead of being
// skipped with a warning.
func WithStrictEvents(strict bool) Option {
	return func(p *Processor) { p.strict = strict }
}

// New creates a Processor with no parameters set; the first record of the
// batch sequence supplies D and T.
func New(logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		logger: logger,
		seq:    &purchase.Sequencer{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Degrees returns the configured network depth D (0 before the parameter
// record is seen).
func (p *Processor) Degrees() int { return p.degrees }

// Threshold returns the configured window capacity T (0 before the
// parameter record is seen).
func (p *Processor) Threshold() int { return p.threshold }

// Directory exposes the run's user directory for diagnostics and tests.
func (p *Processor) Directory() *social.Directory { return p.dir }

// RunBatch consumes the batch sequence: the leading parameter record,
// then graph mutations and purchase history. No anomaly evaluation takes
// place; this is how historical data seeds state without producing
// output. Returns ErrMissingParameters if the sequence ends without a
// valid parameter record.
func (p *Processor) RunBatch(ctx context.Context, r io.Reader) error {
	if err := p.scan(ctx, r, nil); err != nil {
		return err
	}
	if p.dir == nil {
		return ErrMissingParameters
	}
	return nil
}

// RunStream consumes the stream sequence, writing one flagged record per
// anomalous purchase to w in arrival order. RunBatch must have completed
// successfully first.
func (p *Processor) RunStream(ctx context.Context, r io.Reader, w io.Writer) error {
	if p.dir == nil {
		return ErrMissingParameters
	}

	pastFirst := false
	emit := func(ev *Event, a *anomaly.Assessment) error {
		line := flaggedLine(ev.raw, a.MeanString(), a.StdDevString())
		if pastFirst {
			line = "\n" + line
		}
		pastFirst = true
		_, err := io.WriteString(w, line)
		return err
	}
	return p.scan(ctx, r, emit)
}

// scan is the shared dispatch loop. emit is nil for the batch phase.
func (p *Processor) scan(ctx context.Context, r io.Reader, emit func(*Event, *anomaly.Assessment) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, err := parseEvent(line)
		if err != nil {
			if err := p.skipMalformed(ctx, line, "unparseable JSON"); err != nil {
				return err
			}
			continue
		}

		if ev.Type == "" {
			if ev.Degrees == "" && ev.Threshold == "" {
				// Neither an event nor a parameter record (e.g. {} or
				// a JSON null).
				if err := p.skipMalformed(ctx, line, "no event type or parameter fields"); err != nil {
					return err
				}
				continue
			}
			if err := p.applyParameters(ctx, ev); err != nil {
				return err
			}
			continue
		}

		if p.dir == nil {
			return fmt.Errorf("event %q at %s: %w", ev.Type, ev.Timestamp, ErrMissingParameters)
		}
		if err := p.apply(ctx, ev, emit); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// applyParameters handles a parameter-init record. The first valid record
// wins; later ones are logged and ignored.
func (p *Processor) applyParameters(ctx context.Context, ev *Event) error {
	if p.dir != nil {
		logging.L(ctx).Warn("duplicate parameter record ignored",
			"degrees", ev.Degrees, "threshold", ev.Threshold)
		return nil
	}

	degrees, err := strconv.Atoi(ev.Degrees)
	if err != nil || degrees < 1 {
		return fmt.Errorf("parameter record: D must be a positive integer, got %q", ev.Degrees)
	}
	threshold, err := strconv.Atoi(ev.Threshold)
	if err != nil || threshold < 1 {
		return fmt.Errorf("parameter record: T must be a positive integer, got %q", ev.Threshold)
	}

	p.degrees = degrees
	p.threshold = threshold
	p.dir = social.NewDirectory(threshold, p.seq)
	p.engine = anomaly.NewEngine(p.dir, degrees, threshold, p.seq)

	logging.L(ctx).Info("parameters set", "degrees", degrees, "threshold", threshold)
	return nil
}

// apply dispatches one event. emit, when non-nil, receives flagged
// purchases before they are recorded.
func (p *Processor) apply(ctx context.Context, ev *Event, emit func(*Event, *anomaly.Assessment) error) error {
	switch ev.Type {
	case EventBefriend:
		u1 := p.dir.GetOrCreate(ev.ID1)
		u2 := p.dir.GetOrCreate(ev.ID2)
		u1.Befriend(ev.Timestamp, u2)
		u2.Befriend(ev.Timestamp, u1)

	case EventUnfriend:
		u1 := p.dir.GetOrCreate(ev.ID1)
		u2 := p.dir.GetOrCreate(ev.ID2)
		u1.Unfriend(ev.Timestamp, u2)
		u2.Unfriend(ev.Timestamp, u1)

	case EventPurchase:
		pennies, ok := amount.Parse(ev.Amount)
		if !ok {
			return p.skipMalformed(ctx, ev.raw, "bad amount")
		}
		u := p.dir.GetOrCreate(ev.ID)

		// Evaluate before recording: the candidate never counts toward
		// its own network window.
		if emit != nil {
			if a, flagged := p.engine.Assess(u, ev.Timestamp, pennies); flagged {
				p.anomaliesFound++
				metrics.AnomaliesFlaggedTotal.Inc()
				logging.L(ctx).Info("purchase flagged",
					"flag_id", a.ID,
					"user", a.UserID,
					"timestamp", a.Timestamp,
					"amount", ev.Amount,
					"mean", a.MeanString(),
					"sd", a.StdDevString(),
				)
				if err := emit(ev, a); err != nil {
					return fmt.Errorf("writing flagged record: %w", err)
				}
			}
		}

		if u.Purchases.Add(ev.Timestamp, pennies) {
			metrics.PurchasesRecordedTotal.Inc()
		} else {
			metrics.PurchasesDiscardedTotal.Inc()
		}

	default:
		return p.skipMalformed(ctx, ev.raw, "unknown event type")
	}

	p.eventsProcessed++
	metrics.EventsTotal.WithLabelValues(ev.Type).Inc()
	metrics.UsersRegistered.Set(float64(p.dir.Len()))
	return nil
}

// skipMalformed records a malformed event. In strict mode it returns an
// error that aborts the run; otherwise the event is skipped.
func (p *Processor) skipMalformed(ctx context.Context, line, reason string) error {
	metrics.MalformedEventsTotal.Inc()
	if p.strict {
		return fmt.Errorf("malformed event (%s): %s", reason, truncate(line, 200))
	}
	logging.L(ctx).Warn("skipping malformed event", "reason", reason, "line", truncate(line, 200))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
