package types

// MoveOutcome is the terminal disposition of one FileEntry.
type MoveOutcome int

const (
	// OutcomeSkipped covers ineligible entries, no-op moves and per-item failures
	OutcomeSkipped MoveOutcome = iota

	// OutcomeMoved is a plain move into the resolved category folder
	OutcomeMoved

	// OutcomeRenamedAndMoved is a move where the filename changed on the way
	OutcomeRenamedAndMoved

	// OutcomeDeleted is a rule-requested deletion
	OutcomeDeleted

	// OutcomeSkippedDuplicate is a content duplicate left in place
	OutcomeSkippedDuplicate

	// OutcomeDeletedDuplicate is a content duplicate removed from the source
	OutcomeDeletedDuplicate
)

func (o MoveOutcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeRenamedAndMoved:
		return "renamed-and-moved"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeSkippedDuplicate:
		return "skipped-duplicate"
	case OutcomeDeletedDuplicate:
		return "deleted-duplicate"
	default:
		return "skipped"
	}
}
