package policy

import (
	"math"
	"strconv"

	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/record"
)

// rawCeiling bounds the intermediate parse result before the record narrows
// the payload to whole percent.
const rawCeiling = 255

// Classifier turns raw sample strings from one source into records, applying
// that source's policy thresholds.
type Classifier struct {
	appName string
	policy  Policy
}

// NewClassifier binds a policy to the application identity stamped on every
// record it produces.
func NewClassifier(appName string, p Policy) Classifier {
	return Classifier{
		appName: appName,
		policy:  p,
	}
}

// Format parses raw as a float with no tolerance for trailing garbage,
// classifies it against the policy thresholds, and builds the canonical
// record. The severity is inferred from the unclamped value, so an
// out-of-range sample still lands in the right bucket.
func (c Classifier) Format(raw string) (record.Record, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return record.Record{}, errors.Wrap(errors.ErrParseSample, err)
	}

	severity := c.policy.InferSeverity(value)
	payload := int(math.Round(math.Min(rawCeiling, math.Max(0, value))))

	return record.NewWithSeverity(c.appName, c.policy.Context, severity, payload), nil
}

// Policy returns the bound policy.
func (c Classifier) Policy() Policy {
	return c.policy
}
