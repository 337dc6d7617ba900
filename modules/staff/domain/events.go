package domain

type CreatedEvent struct {
	Result Staff
}

type UpdatedEvent struct {
	Result Staff
}

type DeletedEvent struct {
	ID string
}
