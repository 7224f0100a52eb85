package anomaly

import (
	"math"

	"peerspend/internal/metrics"
	"peerspend/internal/purchase"
	"peerspend/internal/social"
)

// Engine evaluates purchases against aggregated network history.
// Pure in-memory computation driven by the single run loop.
type Engine struct {
	dir       *social.Directory
	degrees   int
	threshold int
	seq       *purchase.Sequencer
}

// NewEngine creates an anomaly engine over the given directory.
// degrees is the network hop bound D; threshold is the window capacity T.
func NewEngine(dir *social.Directory, degrees, threshold int, seq *purchase.Sequencer) *Engine {
	return &Engine{
		dir:       dir,
		degrees:   degrees,
		threshold: threshold,
		seq:       seq,
	}
}

// AggregateWindow builds a fresh capacity-T window holding the T most
// recent purchases across every member of u's network. u's own purchases
// are not included.
func (e *Engine) AggregateWindow(u *social.User) *purchase.Window {
	members := e.dir.Network(u, e.degrees)
	metrics.NetworkSize.Observe(float64(len(members)))

	w := purchase.NewWindow(e.threshold, e.seq)
	for _, member := range members {
		w.Merge(member.Purchases)
	}
	return w
}

// Evaluate applies the 3-sigma test to candidate against the window.
// Returns the mean and population standard deviation in pennies, and
// whether the candidate is anomalous. ok is false when the window holds
// fewer than MinSamples purchases.
func (e *Engine) Evaluate(w *purchase.Window, candidate int64) (mean, stddev int64, ok bool) {
	if w.Len() < MinSamples {
		return 0, 0, false
	}

	values := w.Amounts()
	var sum int64
	for _, v := range values {
		sum += v
	}
	mean = sum / int64(len(values)) // truncates to whole pennies

	var sumSquares float64
	for _, v := range values {
		d := float64(v - mean)
		sumSquares += d * d
	}
	stddev = int64(math.Sqrt(sumSquares / float64(len(values))))

	return mean, stddev, candidate > mean+SigmaMultiplier*stddev
}

// Assess aggregates u's network window and evaluates candidate against
// it. The candidate purchase must not yet be recorded in u's own window;
// the caller records it after assessment. Returns nil, false when the
// purchase is not anomalous or the network history is too thin.
func (e *Engine) Assess(u *social.User, timestamp string, candidate int64) (*Assessment, bool) {
	timer := metrics.NewEvaluationTimer()
	defer timer()

	window := e.AggregateWindow(u)
	mean, stddev, flagged := e.Evaluate(window, candidate)
	if !flagged {
		return nil, false
	}

	return &Assessment{
		ID:        newFlagID(),
		UserID:    u.ID,
		Timestamp: timestamp,
		Amount:    candidate,
		Mean:      mean,
		StdDev:    stddev,
	}, true
}
