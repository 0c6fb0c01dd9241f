package protocol

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/medularis/go-asterisk/internal/testutil/testlog"
)

func TestReadGroupGreeting(t *testing.T) {
	testlog.Start(t)
	g := NewGroupReader(strings.NewReader("Asterisk Call Manager/1.1\r\n"))
	lines, err := g.ReadGroup()
	if err != nil {
		t.Fatalf("read group: %v", err)
	}
	want := []string{"Response: Generated Header\r\n", "Asterisk Call Manager/1.1\r\n"}
	if len(lines) != 2 || lines[0] != want[0] || lines[1] != want[1] {
		t.Fatalf("banner group mismatch: got=%q want=%q", lines, want)
	}
	if g.Title() != "Asterisk Call Manager" {
		t.Fatalf("title got=%q", g.Title())
	}
	if g.Version() != "1.1" {
		t.Fatalf("version got=%q", g.Version())
	}
}

func TestReadGroupFirstLineWithColonIsNotBanner(t *testing.T) {
	testlog.Start(t)
	g := NewGroupReader(strings.NewReader("Response: Success\r\nChannel: SIP/1-00\r\n\r\n"))
	lines, err := g.ReadGroup()
	if err != nil {
		t.Fatalf("read group: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("group len got=%d want=2", len(lines))
	}
	if g.Title() != "" {
		t.Fatalf("no banner expected, title got=%q", g.Title())
	}
}

func TestReadGroupSkipsLeadingBlankLines(t *testing.T) {
	testlog.Start(t)
	g := NewGroupReader(strings.NewReader("Response: Success\r\n\r\n\r\n\r\nEvent: Hangup\r\n\r\n"))
	first, err := g.ReadGroup()
	if err != nil {
		t.Fatalf("first group: %v", err)
	}
	if len(first) != 1 || first[0] != "Response: Success\r\n" {
		t.Fatalf("first group got=%q", first)
	}
	second, err := g.ReadGroup()
	if err != nil {
		t.Fatalf("second group: %v", err)
	}
	if len(second) != 1 || second[0] != "Event: Hangup\r\n" {
		t.Fatalf("second group got=%q", second)
	}
}

func TestReadGroupFollowsKeepsEmbeddedBlankLines(t *testing.T) {
	testlog.Start(t)
	raw := "Response: Follows\r\n" +
		"Privilege: Command\r\n" +
		"line one\r\n" +
		"\r\n" +
		"line two\r\n" +
		"--END COMMAND--\r\n" +
		"\r\n"
	g := NewGroupReader(strings.NewReader(raw))
	lines, err := g.ReadGroup()
	if err != nil {
		t.Fatalf("read group: %v", err)
	}
	if len(lines) != 6 {
		t.Fatalf("group len got=%d want=6: %q", len(lines), lines)
	}
	if lines[3] != "\r\n" {
		t.Fatalf("embedded blank line lost: got=%q", lines[3])
	}
	if lines[5] != "--END COMMAND--\r\n" {
		t.Fatalf("end marker line got=%q", lines[5])
	}
}

func TestReadGroupEmptyStream(t *testing.T) {
	testlog.Start(t)
	g := NewGroupReader(strings.NewReader(""))
	if _, err := g.ReadGroup(); !errors.Is(err, ErrEmptyRead) {
		t.Fatalf("expected ErrEmptyRead, got %v", err)
	}
}

func TestReadGroupEOFMidGroupAborts(t *testing.T) {
	testlog.Start(t)
	g := NewGroupReader(strings.NewReader("Response: Success\r\nMessage: half"))
	if _, err := g.ReadGroup(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}
