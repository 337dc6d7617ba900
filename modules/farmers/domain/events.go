package domain

// CreatedEvent fires after the backend confirms a new farmer.
type CreatedEvent struct {
	Result Farmer
}

// UpdatedEvent fires after a successful edit.
type UpdatedEvent struct {
	Result Farmer
}

// DeletedEvent fires per confirmed remote delete.
type DeletedEvent struct {
	ID string
}

// DuplicateResolvedEvent fires once a keep decision succeeds upstream.
type DuplicateResolvedEvent struct {
	KeptID      string
	DiscardedID string
}
