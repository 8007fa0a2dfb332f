package section

import "fmt"

// Reason is the machine-readable code attached to a rejected operation.
type Reason string

const (
	ReasonLastJobRole  Reason = "LastJobRole"
	ReasonFixedSection Reason = "FixedSection"
	ReasonAnchorInUse  Reason = "AnchorInUse"
	ReasonDuplicateID  Reason = "DuplicateID"
)

// InvariantViolation reports an operation refused because it would break a
// document invariant. The document is left untouched.
type InvariantViolation struct {
	Reason    Reason
	SectionID string
	Message   string
}

func (e *InvariantViolation) Error() string {
	if e.SectionID != "" {
		return fmt.Sprintf("invariant violation %s on %q: %s", e.Reason, e.SectionID, e.Message)
	}
	return fmt.Sprintf("invariant violation %s: %s", e.Reason, e.Message)
}

// NotFoundError reports a section id absent from the document.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("section not found: %s", e.ID)
}
