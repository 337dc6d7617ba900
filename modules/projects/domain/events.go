package domain

type CreatedEvent struct {
	Result Project
}

type UpdatedEvent struct {
	Result Project
}

type DeletedEvent struct {
	ID string
}

// StatusChangedEvent fires after a confirmed open or close transition.
type StatusChangedEvent struct {
	ID     string
	Status string
}
