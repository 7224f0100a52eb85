// Package anomaly flags purchases that are outliers within the purchasing
// user's social network.
//
// A purchase is anomalous when its amount exceeds the mean of the
// network's recent purchases by more than three standard deviations
// (population, integer pennies). Fewer than two network purchases is too
// little history to form a distribution, so no decision is made.
package anomaly

import (
	"crypto/rand"
	"encoding/hex"

	"peerspend/internal/amount"
)

const (
	// MinSamples is the minimum network purchase count for an assessment.
	MinSamples = 2

	// SigmaMultiplier is the number of standard deviations above the mean
	// a purchase must exceed to be flagged.
	SigmaMultiplier = 3
)

// Assessment is the result of flagging one anomalous purchase.
type Assessment struct {
	ID        string
	UserID    string
	Timestamp string
	Amount    int64 // pennies
	Mean      int64 // pennies
	StdDev    int64 // pennies
}

// MeanString returns the mean as a two-fractional-digit decimal string.
func (a *Assessment) MeanString() string {
	return amount.Format(a.Mean)
}

// StdDevString returns the standard deviation as a two-fractional-digit
// decimal string.
func (a *Assessment) StdDevString() string {
	return amount.Format(a.StdDev)
}

// newFlagID generates a random id for one flagged purchase (audit trail
// in logs; never part of the output record).
func newFlagID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return "flag_" + hex.EncodeToString(b)
}
