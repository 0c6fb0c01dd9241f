package manager

import (
	"fmt"
	"net"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/medularis/go-asterisk/protocol"
)

// DefaultPort is the stock AMI listen port.
const DefaultPort = 5038

// Wildcard subscribes a handler to every event name.
const Wildcard = "*"

// EventHandler handles one dispatched event. Returning true stops dispatch
// of that event to any remaining handlers, wildcard ones included.
type EventHandler func(*protocol.Event, *Manager) bool

// Config tunes a Manager. The zero value is usable after WithDefaults.
type Config struct {
	// DialTimeout bounds the TCP connect.
	DialTimeout time.Duration
	// ErrorBuffer sizes the background error channel. When full, further
	// errors are logged and dropped from the channel only.
	ErrorBuffer int
	// Logger receives session logs. Nil disables logging.
	Logger *zerolog.Logger
}

func (c Config) WithDefaults() Config {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.ErrorBuffer <= 0 {
		c.ErrorBuffer = 16
	}
	return c
}

// Manager is an AMI client session. Create one with New, then Connect and
// Login. All methods are safe for concurrent use.
type Manager struct {
	cfg Config
	log zerolog.Logger

	hostname string
	pid      int

	// writeMu serializes request transmission and waiter registration so
	// FIFO registration order equals wire order.
	writeMu sync.Mutex
	// stateMu guards the Connect/Close transitions.
	stateMu sync.Mutex

	conn   net.Conn
	reader *protocol.GroupReader
	corr   *correlator
	events *eventQueue

	connected atomic.Bool
	running   atomic.Bool
	closing   atomic.Bool
	seq       atomic.Uint64

	errs chan error

	cbMu      sync.Mutex
	callbacks map[string][]EventHandler

	routerDone   chan struct{}
	dispatchDone chan struct{}
	dispatchGID  atomic.Uint64
}

func New(cfg Config) *Manager {
	cfg = cfg.WithDefaults()
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return &Manager{
		cfg:       cfg,
		log:       logger,
		hostname:  hostname,
		pid:       os.Getpid(),
		errs:      make(chan error, cfg.ErrorBuffer),
		callbacks: make(map[string][]EventHandler),
	}
}

// IsConnected reports whether the socket handshake completed and no
// transport failure has been observed since.
func (m *Manager) IsConnected() bool {
	return m.connected.Load()
}

// IsRunning reports whether the background loops are live, from Connect
// until Close completes or the session terminates.
func (m *Manager) IsRunning() bool {
	return m.running.Load()
}

// Errors surfaces failures detected in the background loops, which cannot
// be raised into any caller's stack.
func (m *Manager) Errors() <-chan error {
	return m.errs
}

// Title returns the product title from the server banner, or "".
func (m *Manager) Title() string {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.reader == nil {
		return ""
	}
	return m.reader.Title()
}

// Version returns the product version from the server banner, or "".
func (m *Manager) Version() string {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.reader == nil {
		return ""
	}
	return m.reader.Version()
}

// Connect dials the manager interface and starts the background loops.
// Port 0 means DefaultPort. It returns the synthesized banner response.
func (m *Manager) Connect(host string, port int) (*protocol.Message, error) {
	m.stateMu.Lock()
	if m.connected.Load() {
		m.stateMu.Unlock()
		return nil, ErrAlreadyConnected
	}
	if port == 0 {
		port = DefaultPort
	}

	dialer := net.Dialer{Timeout: m.cfg.DialTimeout}
	conn, err := dialer.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		m.stateMu.Unlock()
		return nil, newTransportError("dial", err)
	}

	m.writeMu.Lock()
	m.conn = conn
	m.writeMu.Unlock()
	m.reader = protocol.NewGroupReader(conn)
	m.corr = newCorrelator()
	m.events = newEventQueue()
	m.routerDone = make(chan struct{})
	m.dispatchDone = make(chan struct{})
	m.closing.Store(false)
	m.connected.Store(true)
	m.running.Store(true)

	// the banner arrives as the first synthesized response
	banner, err := m.corr.register()
	if err != nil {
		m.stateMu.Unlock()
		return nil, err
	}

	go m.routerLoop()
	go m.dispatchLoop()
	m.stateMu.Unlock()

	m.log.Debug().Str("host", host).Int("port", port).Msg("connected, waiting for banner")
	resp, ok := <-banner
	if !ok {
		return nil, m.corr.terminalError()
	}
	return resp, nil
}

// Close logs off best-effort, terminates the session, and joins the
// background loops. It is idempotent, and safe to call from inside an
// event handler: the dispatcher is never asked to join itself.
func (m *Manager) Close() error {
	m.stateMu.Lock()
	conn := m.conn
	routerDone := m.routerDone
	dispatchDone := m.dispatchDone
	m.stateMu.Unlock()
	if conn == nil {
		// never connected
		return nil
	}

	if m.running.Load() && m.connected.Load() {
		m.closing.Store(true)
		if _, err := m.Logoff(); err != nil {
			m.log.Debug().Err(err).Msg("logoff before close failed")
		}
	}
	m.closing.Store(true)
	_ = conn.Close()

	<-routerDone
	if gid() != m.dispatchGID.Load() {
		<-dispatchDone
	}

	m.running.Store(false)
	return nil
}

// SendAction transmits one request and blocks for the next response in
// FIFO order. An ActionID of the form {host}-{pid}-{seq} is assigned when
// the caller did not supply one.
func (m *Manager) SendAction(fields protocol.Fields) (*protocol.Message, error) {
	if !m.connected.Load() {
		return nil, ErrNotConnected
	}
	if fields == nil {
		fields = protocol.Fields{}
	}
	if fields.Get("ActionID") == "" {
		fields.Set("ActionID", m.nextActionID())
	}
	payload := protocol.EncodeAction(fields)

	m.writeMu.Lock()
	conn := m.conn
	if conn == nil {
		m.writeMu.Unlock()
		return nil, ErrNotConnected
	}
	ch, err := m.corr.register()
	if err != nil {
		m.writeMu.Unlock()
		return nil, err
	}
	_, werr := conn.Write(payload)
	m.writeMu.Unlock()
	if werr != nil {
		m.corr.abandon(ch)
		return nil, newTransportError("write", werr)
	}
	m.log.Debug().Str("action", fields.Get("Action")).Str("action_id", fields.Get("ActionID")).Msg("action sent")

	resp, ok := <-ch
	if !ok {
		return nil, m.corr.terminalError()
	}
	return resp, nil
}

func (m *Manager) nextActionID() string {
	seq := m.seq.Add(1) - 1
	return fmt.Sprintf("%s-%04d-%08x", m.hostname, m.pid, seq)
}

// RegisterEvent registers a callback for the named event, or for every
// event under the Wildcard name. Handlers run in registration order,
// exact-name subscribers before wildcard ones.
func (m *Manager) RegisterEvent(name string, handler EventHandler) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	cur := m.callbacks[name]
	next := make([]EventHandler, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, handler)
	m.callbacks[name] = next
}

// UnregisterEvent removes the first registration of handler under name,
// matched by function identity. Distinct closures over one function
// literal share an identity; prefer named functions when unregistering.
func (m *Manager) UnregisterEvent(name string, handler EventHandler) {
	target := reflect.ValueOf(handler).Pointer()
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	cur := m.callbacks[name]
	for i, h := range cur {
		if reflect.ValueOf(h).Pointer() == target {
			next := make([]EventHandler, 0, len(cur)-1)
			next = append(next, cur[:i]...)
			next = append(next, cur[i+1:]...)
			m.callbacks[name] = next
			return
		}
	}
}

// handlersFor snapshots the dispatch list for one event: exact-name
// handlers first, then wildcard handlers. Registrations during dispatch
// never mutate a snapshot already in flight.
func (m *Manager) handlersFor(name string) []EventHandler {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	exact := m.callbacks[name]
	wild := m.callbacks[Wildcard]
	out := make([]EventHandler, 0, len(exact)+len(wild))
	out = append(out, exact...)
	out = append(out, wild...)
	return out
}

// routerLoop pulls line-groups, parses them, and routes events to the
// dispatcher and responses to the oldest blocked caller. Any read failure
// is terminal: the loop fans out shutdown and exits.
func (m *Manager) routerLoop() {
	defer close(m.routerDone)
	for {
		lines, err := m.reader.ReadGroup()
		if err != nil {
			m.terminate(newTransportError("read", err))
			return
		}
		msg := protocol.ParseMessage(lines)
		switch {
		case msg.HasHeader("Event"):
			ev, err := protocol.NewEvent(msg)
			if err != nil {
				// cannot happen after classification, kept as a guard
				m.terminate(fmt.Errorf("%w: %v", ErrUnclassifiable, err))
				return
			}
			m.events.push(ev)
		case msg.HasHeader("Response"):
			m.corr.deliver(msg)
		default:
			// classification is total; losing it breaks correlation
			m.terminate(fmt.Errorf("%w: %q", ErrUnclassifiable, msg.Data))
			return
		}
	}
}

// terminate propagates session shutdown exactly once per blocked consumer:
// it clears the state flags, fails every caller blocked in SendAction, and
// releases the dispatcher. Only the router goroutine calls it.
func (m *Manager) terminate(cause error) {
	m.connected.Store(false)
	m.running.Store(false)
	if m.closing.Load() {
		m.log.Debug().Err(cause).Msg("session closed")
	} else {
		m.log.Warn().Err(cause).Msg("session terminated")
		m.reportError(cause)
	}
	n := m.corr.fail(newTransportError("await", ErrConnectionTerminated))
	if n > 0 {
		m.log.Debug().Int("waiters", n).Msg("unblocked response waiters")
	}
	m.events.close()
	m.writeMu.Lock()
	conn := m.conn
	m.writeMu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// dispatchLoop drains the event queue, invoking exact-name handlers then
// wildcard handlers in registration order. A handler returning true stops
// dispatch for that event. Events queued before termination are still
// delivered, then the loop exits.
func (m *Manager) dispatchLoop() {
	defer close(m.dispatchDone)
	m.dispatchGID.Store(gid())
	for {
		ev, ok := m.events.pop()
		if !ok {
			return
		}
		for _, h := range m.handlersFor(ev.Name) {
			if m.invoke(h, ev) {
				break
			}
		}
	}
}

// invoke contains a handler panic to its own invocation: it is logged and
// reported, and dispatch continues with the remaining handlers.
func (m *Manager) invoke(h EventHandler, ev *protocol.Event) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("manager: handler panic on event %s: %v", ev.Name, r)
			m.log.Error().Str("event", ev.Name).Interface("panic", r).Msg("event handler panicked")
			m.reportError(err)
		}
	}()
	return h(ev, m)
}

func (m *Manager) reportError(err error) {
	select {
	case m.errs <- err:
	default:
		m.log.Warn().Err(err).Msg("error channel full, dropping")
	}
}

// gid parses the current goroutine id from the stack header. Close uses it
// to avoid joining the dispatcher from one of its own handlers.
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(s, ' '); i > 0 {
		if id, err := strconv.ParseUint(s[:i], 10, 64); err == nil {
			return id
		}
	}
	return 0
}
