package protocol

import (
	"errors"
	"strings"
)

// EOL is the wire line terminator.
const EOL = "\r\n"

// EndCommandMarker closes multi-line command output.
const EndCommandMarker = "--END COMMAND--"

var ErrNotEvent = errors.New("protocol: message has no Event header")

// Message is one parsed server message. Headers keeps the last value seen
// per name, MultiHeaders keeps every value in arrival order, Data is the
// free-form trailing body for lines that did not parse as headers.
// A Message is immutable after ParseMessage returns it.
type Message struct {
	Headers      map[string]string
	MultiHeaders map[string][]string
	Data         string

	raw          []string
	sawEndMarker bool
}

// ParseMessage parses one raw line-group into a classified Message.
//
// Header lines end in CRLF and split on the first colon with surrounding
// whitespace trimmed. The first line that fails that test starts the body;
// all remaining lines are kept verbatim, except --END COMMAND-- marker
// lines, which delimit the body without belonging to it.
//
// Every group classifies as either an event or a response. Groups lacking
// both headers are recovered: an echoed ActionID means a response whose
// Response header was omitted, a body that carried the end marker means an
// event split off a misbehaved command, and anything else is presumed to be
// a response.
func ParseMessage(lines []string) *Message {
	m := &Message{
		Headers:      make(map[string]string),
		MultiHeaders: make(map[string][]string),
		raw:          lines,
	}

	var body []string
	for i, line := range lines {
		if !strings.HasSuffix(line, EOL) {
			body = lines[i:]
			break
		}
		key, value, ok := splitHeader(line)
		if !ok {
			body = lines[i:]
			break
		}
		m.Headers[key] = value
		m.MultiHeaders[key] = append(m.MultiHeaders[key], value)
	}

	kept := make([]string, 0, len(body))
	for _, line := range body {
		if strings.HasPrefix(line, EndCommandMarker) {
			m.sawEndMarker = true
			continue
		}
		kept = append(kept, line)
	}
	m.Data = strings.Join(kept, "")

	m.classify()
	return m
}

// classify fills in the synthesized header for groups that arrived without
// an authoritative Event or Response header.
func (m *Message) classify() {
	if m.HasHeader("Event") || m.HasHeader("Response") {
		return
	}
	switch {
	case m.HasHeader("ActionID"):
		// Commands like IAXpeers echo the ActionID but omit Response.
		m.setSynthetic("Response", "Generated Header")
	case m.sawEndMarker:
		// A \n\r\n sequence inside command output split the group; the
		// remainder carried the end marker with no usable headers.
		m.setSynthetic("Event", "NoClue")
	default:
		m.setSynthetic("Response", "Generated Header")
	}
}

func (m *Message) setSynthetic(key, value string) {
	m.Headers[key] = value
	m.MultiHeaders[key] = append(m.MultiHeaders[key], value)
}

// HasHeader reports whether the named header is present.
func (m *Message) HasHeader(name string) bool {
	_, ok := m.Headers[name]
	return ok
}

// GetHeader returns the last value seen for the named header, or "".
func (m *Message) GetHeader(name string) string {
	return m.Headers[name]
}

// GetHeaderDefault returns the last value seen for the named header, or
// defval when absent.
func (m *Message) GetHeaderDefault(name, defval string) string {
	if v, ok := m.Headers[name]; ok {
		return v
	}
	return defval
}

// Raw returns the line-group the message was parsed from.
func (m *Message) Raw() []string {
	return m.raw
}

// Event is a Message known to carry an Event header.
type Event struct {
	*Message

	// Name is the value of the Event header.
	Name string
}

// NewEvent wraps a parsed message as an event. Messages without an Event
// header are a contract violation and fail with ErrNotEvent.
func NewEvent(m *Message) (*Event, error) {
	if !m.HasHeader("Event") {
		return nil, ErrNotEvent
	}
	return &Event{Message: m, Name: m.GetHeader("Event")}, nil
}

// ActionID returns the echoed ActionID header, or "" when absent.
func (e *Event) ActionID() string {
	return e.GetHeaderDefault("ActionID", "")
}

// splitHeader splits "Key: Value\r\n" on the first colon. Lines without a
// colon are not headers.
func splitHeader(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}
