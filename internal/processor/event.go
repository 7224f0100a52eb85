package processor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event kinds as they appear on the wire.
const (
	EventBefriend = "befriend"
	EventUnfriend = "unfriend"
	EventPurchase = "purchase"
)

// Event is one normalized feed record. A parameter-init record has no
// event_type and carries the network depth D and window threshold T as
// decimal strings instead.
type Event struct {
	Type      string `json:"event_type"`
	Timestamp string `json:"timestamp"`
	ID        string `json:"id"`
	ID1       string `json:"id1"`
	ID2       string `json:"id2"`
	Amount    string `json:"amount"`
	Degrees   string `json:"D"`
	Threshold string `json:"T"`

	raw string // original line, kept verbatim for output splicing
}

func parseEvent(line string) (*Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return nil, err
	}
	ev.raw = line
	return &ev, nil
}

// flaggedSuffixTemplate is appended to the raw purchase line in place of
// its closing brace. The exact spacing is part of the output contract.
const flaggedSuffixTemplate = `, "mean": "%s", "sd": "%s"}`

// flaggedLine rewrites the original purchase line into a flagged record,
// preserving the upstream field order by splicing rather than
// re-marshalling.
func flaggedLine(raw, mean, sd string) string {
	trimmed := strings.TrimRight(raw, " \t\r")
	return trimmed[:len(trimmed)-1] + fmt.Sprintf(flaggedSuffixTemplate, mean, sd)
}
