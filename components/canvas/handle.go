package canvas

import "strings"

// Handle names the edge or corner a resize gesture drags.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// ParseHandle normalizes a handle name. Corners may be written in either order
// ("en" == "ne").
func ParseHandle(raw string) (Handle, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "en":
		raw = "ne"
	case "wn":
		raw = "nw"
	case "es":
		raw = "se"
	case "ws":
		raw = "sw"
	}
	h := Handle(raw)
	if !h.Valid() {
		return "", false
	}
	return h, true
}

// Valid reports whether h is one of the eight known handles.
func (h Handle) Valid() bool {
	switch h {
	case HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW:
		return true
	}
	return false
}

// axes returns the sign applied to the column and row deltas. Zero means the
// handle does not control that axis.
func (h Handle) axes() (cols, rows int) {
	s := string(h)
	switch {
	case strings.Contains(s, "e"):
		cols = 1
	case strings.Contains(s, "w"):
		cols = -1
	}
	switch {
	case strings.Contains(s, "s"):
		rows = 1
	case strings.Contains(s, "n"):
		rows = -1
	}
	return cols, rows
}
