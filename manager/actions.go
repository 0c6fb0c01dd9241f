package manager

import (
	"fmt"
	"sort"

	"github.com/medularis/go-asterisk/protocol"
)

// The action catalog: thin builders that assemble a request and delegate
// to SendAction. None of them interpret the response beyond what their own
// contract requires (Login being the notable case).

// Login authenticates the session. A server-side rejection returns an
// AuthenticationError carrying the server's Message header; the transport
// stays connected.
func (m *Manager) Login(username, secret string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Login")
	f.Set("Username", username)
	f.Set("Secret", secret)
	resp, err := m.SendAction(f)
	if err != nil {
		return nil, err
	}
	if resp.GetHeader("Response") == "Error" {
		return resp, &AuthenticationError{Message: resp.GetHeader("Message")}
	}
	return resp, nil
}

// Logoff ends the authenticated session; the server closes the connection
// shortly after answering.
func (m *Manager) Logoff() (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Logoff")
	return m.SendAction(f)
}

func (m *Manager) Ping() (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Ping")
	return m.SendAction(f)
}

func (m *Manager) Hangup(channel string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Hangup")
	f.Set("Channel", channel)
	return m.SendAction(f)
}

// Status reports channel status; an empty channel means all channels.
func (m *Manager) Status(channel string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Status")
	f.Set("Channel", channel)
	return m.SendAction(f)
}

// Redirect moves a channel to the given extension and priority. Context
// and extraChannel are optional.
func (m *Manager) Redirect(channel, exten, priority, extraChannel, context string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Redirect")
	f.Set("Channel", channel)
	f.Set("Exten", exten)
	if priority == "" {
		priority = "1"
	}
	f.Set("Priority", priority)
	if context != "" {
		f.Set("Context", context)
	}
	if extraChannel != "" {
		f.Set("ExtraChannel", extraChannel)
	}
	return m.SendAction(f)
}

// OriginateRequest describes an Originate action. Zero-valued optional
// fields are omitted from the request.
type OriginateRequest struct {
	Channel  string
	Exten    string
	Context  string
	Priority string
	Timeout  string
	CallerID string
	Async    bool
	Account  string
	// Variables become repeated "Variable: key=value" headers, emitted in
	// sorted key order.
	Variables map[string]string
}

func (m *Manager) Originate(req OriginateRequest) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Originate")
	f.Set("Channel", req.Channel)
	f.Set("Exten", req.Exten)
	if req.Context != "" {
		f.Set("Context", req.Context)
	}
	if req.Priority != "" {
		f.Set("Priority", req.Priority)
	}
	if req.Timeout != "" {
		f.Set("Timeout", req.Timeout)
	}
	if req.CallerID != "" {
		f.Set("CallerID", req.CallerID)
	}
	if req.Async {
		f.Set("Async", "yes")
	}
	if req.Account != "" {
		f.Set("Account", req.Account)
	}
	if len(req.Variables) > 0 {
		keys := make([]string, 0, len(req.Variables))
		for k := range req.Variables {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			f.Add("Variable", fmt.Sprintf("%s=%s", k, req.Variables[k]))
		}
	}
	return m.SendAction(f)
}

func (m *Manager) MailboxStatus(mailbox string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "MailboxStatus")
	f.Set("Mailbox", mailbox)
	return m.SendAction(f)
}

func (m *Manager) MailboxCount(mailbox string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "MailboxCount")
	f.Set("Mailbox", mailbox)
	return m.SendAction(f)
}

// Command runs a CLI command; the output arrives as a multi-line body
// framed by Response: Follows and the end marker.
func (m *Manager) Command(command string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Command")
	f.Set("Command", command)
	return m.SendAction(f)
}

func (m *Manager) ExtensionState(exten, context string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "ExtensionState")
	f.Set("Exten", exten)
	f.Set("Context", context)
	return m.SendAction(f)
}

func (m *Manager) PlayDTMF(channel, digit string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "PlayDTMF")
	f.Set("Channel", channel)
	f.Set("Digit", digit)
	return m.SendAction(f)
}

func (m *Manager) AbsoluteTimeout(channel string, timeout string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "AbsoluteTimeout")
	f.Set("Channel", channel)
	f.Set("Timeout", timeout)
	return m.SendAction(f)
}

func (m *Manager) SIPPeers() (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "Sippeers")
	return m.SendAction(f)
}

func (m *Manager) SIPShowPeer(peer string) (*protocol.Message, error) {
	f := protocol.Fields{}
	f.Set("Action", "SIPshowpeer")
	f.Set("Peer", peer)
	return m.SendAction(f)
}
