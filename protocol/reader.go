package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
)

var (
	ErrEmptyRead = errors.New("protocol: no lines received")
)

// GroupReader reassembles raw CRLF-terminated lines from the transport into
// complete logical line-groups. ReadGroup is single-consumer; the banner
// accessors may be called from any goroutine.
type GroupReader struct {
	r *bufio.Reader

	started bool

	bannerMu sync.Mutex
	title    string
	version  string
}

func NewGroupReader(r io.Reader) *GroupReader {
	return &GroupReader{r: bufio.NewReader(r)}
}

// Title returns the product title from the server banner, or "".
func (g *GroupReader) Title() string {
	g.bannerMu.Lock()
	defer g.bannerMu.Unlock()
	return g.title
}

// Version returns the product version from the server banner, or "".
func (g *GroupReader) Version() string {
	g.bannerMu.Lock()
	defer g.bannerMu.Unlock()
	return g.version
}

func (g *GroupReader) setBanner(title, version string) {
	g.bannerMu.Lock()
	defer g.bannerMu.Unlock()
	g.title = title
	g.version = version
}

// ReadGroup returns the next complete line-group.
//
// The very first line of the stream, if shaped "Product/Version" with no
// colon, is the server banner; it is returned as a one-line group behind a
// synthesized "Response: Generated Header" so the session's connect path
// receives it like any other response.
//
// A bare CRLF ends the group, unless a "Response: Follows" header put the
// group into await-end-marker mode, in which case blank lines belong to the
// body and only a line starting with --END COMMAND-- restores normal
// framing. Any line that lacks its CRLF terminator or has no colon flips
// the group into multi-line mode.
//
// A transport error aborts the group and is returned as-is. A clean end of
// stream with nothing collected returns ErrEmptyRead; the session treats
// both as fatal.
func (g *GroupReader) ReadGroup() ([]string, error) {
	var (
		lines         []string
		multiline     bool
		waitForMarker bool
	)
	for {
		line, err := g.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" && len(lines) == 0 {
				return nil, ErrEmptyRead
			}
			return nil, err
		}

		if !g.started {
			g.started = true
			if strings.Contains(line, "/") && !strings.Contains(line, ":") {
				g.setBanner(splitBanner(line))
				return []string{"Response: Generated Header" + EOL, line}, nil
			}
		}

		// A bare CRLF terminates the group. Embedded blank lines are
		// legal while awaiting the end marker.
		if line == EOL && !waitForMarker {
			multiline = false
			if len(lines) > 0 {
				return lines, nil
			}
			// ignore empty lines before any content
			continue
		}

		lines = append(lines, line)

		// A line without its terminator or without a colon is not a
		// header and starts free-form content.
		if !strings.HasSuffix(line, EOL) || !strings.Contains(line, ":") {
			multiline = true
		}
		if !multiline {
			if key, value, ok := splitHeader(line); ok && key == "Response" && value == "Follows" {
				waitForMarker = true
			}
		}
		if multiline && strings.HasPrefix(line, EndCommandMarker) {
			waitForMarker = false
			multiline = false
		}
	}
}

// splitBanner splits "Asterisk Call Manager/1.1\r\n" into title and version.
func splitBanner(line string) (title, version string) {
	idx := strings.Index(line, "/")
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}
