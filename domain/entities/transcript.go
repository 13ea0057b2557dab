package entities

// Identity is the authenticated caller for one connection.
type Identity struct {
	Email string
	Name  string
}

// SessionTranscript accumulates final transcript lines for the lifetime of
// one connection. It is owned exclusively by that connection's session and
// handed off read-only to the transcript store at teardown.
type SessionTranscript struct {
	lines []string
}

// Append records one final transcript line.
func (t *SessionTranscript) Append(line string) {
	t.lines = append(t.lines, line)
}

// Lines returns a copy of the accumulated transcript.
func (t *SessionTranscript) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Len returns the number of accumulated lines.
func (t *SessionTranscript) Len() int {
	return len(t.lines)
}
