// Package markup builds lemonbar's inline %{...} formatting directives.
// The scheduler core treats markup as opaque bytes; only modules use these.
package markup

// ClickArea wraps text in a clickable region that fires event when clicked.
func ClickArea(event, text string) string {
	return "%{A:" + event + ":}" + text + "%{A}"
}

// Fg colors the text's foreground, resetting afterwards.
func Fg(color, text string) string {
	return "%{F" + color + "}" + text + "%{F-}"
}

// Bg colors the text's background, resetting afterwards.
func Bg(color, text string) string {
	return "%{B" + color + "}" + text + "%{B-}"
}

// Underline draws the under- and overline attributes around text.
func Underline(text string) string {
	return "%{+u}%{+o}" + text + "%{-u}%{-o}"
}

// Align returns an alignment directive: "l", "c" or "r".
func Align(side string) string {
	return "%{" + side + "}"
}

// Monitor returns a monitor-selection directive, e.g. "f" for the first
// monitor or a zero-based index.
func Monitor(sel string) string {
	return "%{S" + sel + "}"
}
