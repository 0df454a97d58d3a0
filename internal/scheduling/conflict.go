package scheduling

// HasConflict reports whether the candidate window overlaps any of the
// existing windows. Чистый предикат без побочных эффектов; existing должен
// быть заранее отфильтрован по мастеру и занимающим статусам.
func HasConflict(candidate TimeWindow, existing []TimeWindow) bool {
	_, found := FirstConflict(candidate, existing)
	return found
}

// FirstConflict returns the first existing window the candidate overlaps.
// Пустой existing никогда не конфликтует.
func FirstConflict(candidate TimeWindow, existing []TimeWindow) (TimeWindow, bool) {
	for _, w := range existing {
		if candidate.Overlaps(w) {
			return w, true
		}
	}
	return TimeWindow{}, false
}
