package protocol

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/medularis/go-asterisk/internal/testutil/testlog"
)

func TestParseMessageHeadersAndRepeats(t *testing.T) {
	testlog.Start(t)
	m := ParseMessage([]string{
		"Response: Success\r\n",
		"Variable:  a=1 \r\n",
		"Variable: b=2\r\n",
	})
	if got := m.GetHeader("Response"); got != "Success" {
		t.Fatalf("Response got=%q", got)
	}
	if got := m.GetHeader("Variable"); got != "b=2" {
		t.Fatalf("last-wins Variable got=%q", got)
	}
	want := []string{"a=1", "b=2"}
	if !reflect.DeepEqual(m.MultiHeaders["Variable"], want) {
		t.Fatalf("multiheaders got=%v want=%v", m.MultiHeaders["Variable"], want)
	}
	if m.Data != "" {
		t.Fatalf("unexpected body: %q", m.Data)
	}
}

func TestParseMessageIdempotent(t *testing.T) {
	testlog.Start(t)
	lines := []string{
		"Event: Newchannel\r\n",
		"Channel: SIP/101-0001\r\n",
		"free form trailer\r\n",
	}
	a := ParseMessage(lines)
	b := ParseMessage(lines)
	if !reflect.DeepEqual(a.Headers, b.Headers) {
		t.Fatalf("headers differ: %v vs %v", a.Headers, b.Headers)
	}
	if !reflect.DeepEqual(a.MultiHeaders, b.MultiHeaders) {
		t.Fatalf("multiheaders differ: %v vs %v", a.MultiHeaders, b.MultiHeaders)
	}
	if a.Data != b.Data {
		t.Fatalf("body differs: %q vs %q", a.Data, b.Data)
	}
}

func TestParseMessageBodyStartsAtFirstNonHeader(t *testing.T) {
	testlog.Start(t)
	m := ParseMessage([]string{
		"Response: Follows\r\n",
		"output line\r\n",
		"Looks: like a header but is body\r\n",
	})
	if m.GetHeader("Response") != "Follows" {
		t.Fatalf("Response got=%q", m.GetHeader("Response"))
	}
	if m.HasHeader("Looks") {
		t.Fatalf("body line parsed as header")
	}
	if m.Data != "output line\r\nLooks: like a header but is body\r\n" {
		t.Fatalf("body got=%q", m.Data)
	}
}

func TestClassificationLadder(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name   string
		lines  []string
		header string
		value  string
	}{
		{"event", []string{"Event: Hangup\r\n"}, "Event", "Hangup"},
		{"response", []string{"Response: Success\r\n"}, "Response", "Success"},
		{"actionid only", []string{"ActionID: host-1-2\r\n"}, "Response", "Generated Header"},
		{"orphan marker body", []string{"stray output\r\n", "--END COMMAND--\r\n"}, "Event", "NoClue"},
		{"garbage", []string{"no structure at all\r\n"}, "Response", "Generated Header"},
	}
	for _, tc := range cases {
		m := ParseMessage(tc.lines)
		if got := m.GetHeader(tc.header); got != tc.value {
			t.Fatalf("%s: %s got=%q want=%q", tc.name, tc.header, got, tc.value)
		}
		if !m.HasHeader("Event") && !m.HasHeader("Response") {
			t.Fatalf("%s: message left unclassified", tc.name)
		}
	}
}

func TestMultiLineFramingEndToEnd(t *testing.T) {
	testlog.Start(t)
	raw := "Response: Follows\r\n" +
		"first\r\n" +
		"\r\n" +
		"second\r\n" +
		"--END COMMAND--\r\n" +
		"\r\n"
	g := NewGroupReader(strings.NewReader(raw))
	lines, err := g.ReadGroup()
	if err != nil {
		t.Fatalf("read group: %v", err)
	}
	m := ParseMessage(lines)
	if !m.HasHeader("Response") {
		t.Fatalf("expected response classification")
	}
	if m.Data != "first\r\n\r\nsecond\r\n" {
		t.Fatalf("body got=%q", m.Data)
	}
	if strings.Contains(m.Data, EndCommandMarker) {
		t.Fatalf("marker line leaked into body: %q", m.Data)
	}
}

func TestNewEvent(t *testing.T) {
	testlog.Start(t)
	m := ParseMessage([]string{"Event: Hangup\r\n", "ActionID: abc\r\n"})
	ev, err := NewEvent(m)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if ev.Name != "Hangup" {
		t.Fatalf("name got=%q", ev.Name)
	}
	if ev.ActionID() != "abc" {
		t.Fatalf("action id got=%q", ev.ActionID())
	}

	resp := ParseMessage([]string{"Response: Success\r\n"})
	if _, err := NewEvent(resp); !errors.Is(err, ErrNotEvent) {
		t.Fatalf("expected ErrNotEvent, got %v", err)
	}
}

func TestEventActionIDDefault(t *testing.T) {
	testlog.Start(t)
	m := ParseMessage([]string{"Event: Reload\r\n"})
	ev, err := NewEvent(m)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if ev.ActionID() != "" {
		t.Fatalf("action id got=%q want empty", ev.ActionID())
	}
}
