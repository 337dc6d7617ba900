package application

// Module is one self-contained feature area: it registers its services,
// controllers, locale files and navigation into the application.
type Module interface {
	Name() string
	Register(app Application) error
}
