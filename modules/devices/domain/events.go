package domain

type CreatedEvent struct {
	Result Device
}

type UpdatedEvent struct {
	Result Device
}

type DeletedEvent struct {
	ID string
}

// StatusChangedEvent fires after a confirmed post or unpost transition.
type StatusChangedEvent struct {
	ID     string
	Status string
}
