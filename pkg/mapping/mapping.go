package mapping

// MapViewModels converts a slice of domain entities into view models.
func MapViewModels[T, V any](entities []T, mapFunc func(T) V) []V {
	viewModels := make([]V, 0, len(entities))
	for _, entity := range entities {
		viewModels = append(viewModels, mapFunc(entity))
	}
	return viewModels
}

// Or returns value when it is non-empty and fallback otherwise. Used to
// default absent nested relations to the "N/A" sentinel before rendering.
func Or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Pointer returns a pointer to v.
func Pointer[T any](v T) *T {
	return &v
}
