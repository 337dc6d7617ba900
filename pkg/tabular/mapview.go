package tabular

// MapView converts a view's page rows into another shape, keeping the
// pagination facts intact. Used to serialize domain rows as view models.
func MapView[T, V any](view View[T], f func(T) V) View[V] {
	rows := make([]V, 0, len(view.Rows))
	for _, row := range view.Rows {
		rows = append(rows, f(row))
	}
	return View[V]{
		Rows:       rows,
		TotalRows:  view.TotalRows,
		Page:       view.Page,
		TotalPages: view.TotalPages,
	}
}
