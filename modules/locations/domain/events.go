package domain

// SiteSelectedEvent fires when the console switches its working site.
type SiteSelectedEvent struct {
	SiteID string
}

type SiteCreatedEvent struct {
	Result Site
}

type SiteDeletedEvent struct {
	ID string
}

type GroupCreatedEvent struct {
	Result Group
}

type GroupDeletedEvent struct {
	ID string
}
