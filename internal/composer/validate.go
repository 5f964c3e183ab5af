package composer

import (
	"strings"

	"github.com/google/uuid"
)

// Draft is the unsubmitted transfer: branches, notes and lines.
type Draft struct {
	SourceBranchID      *int64
	DestinationBranchID *int64
	Notes               string
	Lines               []Line

	// Reference identifies the draft to the backend so a retried submit
	// cannot create a second transfer.
	Reference uuid.UUID
}

// Reason is the rule a draft violates.
type Reason int

const (
	Valid Reason = iota
	SourceMissing
	DestinationMissing
	SourceEqualsDestination
	NoPositiveLines
	LineExceedsStock
)

var reasonMessages = map[Reason]string{
	Valid:                   "The transfer is ready to submit.",
	SourceMissing:           "Select the source branch.",
	DestinationMissing:      "Select the destination branch.",
	SourceEqualsDestination: "Source and destination branch must be different.",
	NoPositiveLines:         "Add at least one product with a quantity greater than zero.",
	LineExceedsStock:        "Quantity exceeds available stock for: ",
}

func (r Reason) String() string {
	switch r {
	case Valid:
		return "valid"
	case SourceMissing:
		return "source_missing"
	case DestinationMissing:
		return "destination_missing"
	case SourceEqualsDestination:
		return "source_equals_destination"
	case NoPositiveLines:
		return "no_positive_lines"
	case LineExceedsStock:
		return "line_exceeds_stock"
	default:
		return "unknown"
	}
}

// Outcome is the result of Validate.
type Outcome struct {
	Reason Reason

	// Products and Names list every offending line for LineExceedsStock.
	Products []string
	Names    []string
}

// Valid reports whether the draft may be submitted.
func (o Outcome) Valid() bool {
	return o.Reason == Valid
}

// Message is the user-facing text for the outcome.
func (o Outcome) Message() string {
	msg := reasonMessages[o.Reason]
	if o.Reason == LineExceedsStock {
		msg += strings.Join(o.Names, ", ")
	}
	return msg
}

// ValidationError wraps an invalid Outcome.
type ValidationError struct {
	Outcome Outcome
}

func (e *ValidationError) Error() string {
	return "composer: invalid draft: " + e.Outcome.Reason.String()
}

// Validate checks d against the submit rules in a fixed order and reports
// the first one violated. Lines with quantity 0 are ignored.
func Validate(d Draft) Outcome {
	switch {
	case d.SourceBranchID == nil:
		return Outcome{Reason: SourceMissing}
	case d.DestinationBranchID == nil:
		return Outcome{Reason: DestinationMissing}
	case *d.SourceBranchID == *d.DestinationBranchID:
		return Outcome{Reason: SourceEqualsDestination}
	}

	positive := 0
	var out Outcome
	for _, l := range d.Lines {
		if l.Quantity <= 0 {
			continue
		}
		positive++
		if l.Quantity > l.AvailableQuantity {
			out.Products = append(out.Products, l.ProductID)
			out.Names = append(out.Names, l.DisplayName)
		}
	}
	if positive == 0 {
		return Outcome{Reason: NoPositiveLines}
	}
	if len(out.Products) > 0 {
		out.Reason = LineExceedsStock
		return out
	}
	return Outcome{Reason: Valid}
}
