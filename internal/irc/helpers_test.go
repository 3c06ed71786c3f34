package irc

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"
)

// mockTransport records writes and replays queued lines. Like a server it
// answers every JOIN it is sent, by default with a names list holding only
// the joining nick.
type mockTransport struct {
	host string
	port int
	nick string

	connects    int
	disconnects int
	writes      []string
	lines       []string

	connectErr    error
	disconnectErr error
	// failSend makes Send fail for any write starting with the key.
	failSend map[string]error

	onJoin     func(channel string) []string
	onSend     func(line string)
	beforeRead func()
}

func (m *mockTransport) Connect(host string, port int) error {
	m.connects++
	m.host = host
	m.port = port
	return m.connectErr
}

func (m *mockTransport) Send(b []byte) error {
	data := string(b)
	for prefix, err := range m.failSend {
		if strings.HasPrefix(data, prefix) {
			return err
		}
	}
	m.writes = append(m.writes, data)
	for _, line := range strings.Split(strings.TrimSuffix(data, "\r\n"), "\r\n") {
		verb, arg, _ := strings.Cut(line, " ")
		switch verb {
		case "NICK":
			m.nick = arg
		case "JOIN":
			m.queue(m.joinReply(arg)...)
		}
		if m.onSend != nil {
			m.onSend(line)
		}
	}
	return nil
}

func (m *mockTransport) joinReply(channel string) []string {
	if m.onJoin != nil {
		return m.onJoin(channel)
	}
	return namesReply(m.nick, channel, m.nick)
}

func namesReply(nick, channel string, members ...string) []string {
	return []string{
		fmt.Sprintf(":irc.test 353 %s = %s :%s", nick, channel, strings.Join(members, " ")),
		fmt.Sprintf(":irc.test 366 %s %s :End of /NAMES list.", nick, channel),
	}
}

func (m *mockTransport) ReadLine(maxLen int) ([]byte, error) {
	if f := m.beforeRead; f != nil {
		m.beforeRead = nil
		f()
	}
	if len(m.lines) == 0 {
		return nil, io.EOF
	}
	line := m.lines[0]
	m.lines = m.lines[1:]
	return []byte(line + "\r\n"), nil
}

func (m *mockTransport) Disconnect() error {
	m.disconnects++
	return m.disconnectErr
}

func (m *mockTransport) queue(lines ...string) {
	m.lines = append(m.lines, lines...)
}

// sent returns every write after the registration burst.
func (m *mockTransport) sent() []string {
	if len(m.writes) == 0 {
		return nil
	}
	return m.writes[1:]
}

// fakeServer answers TOPIC and NAMES from shared state, so several sessions
// can observe each other.
type fakeServer struct {
	topics  map[string]string
	members map[string][]string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		topics:  map[string]string{},
		members: map[string][]string{},
	}
}

func (f *fakeServer) attach(m *mockTransport, nick string) {
	m.onSend = func(line string) {
		verb, rest, _ := strings.Cut(line, " ")
		channel, arg, hasArg := strings.Cut(rest, " ")
		switch verb {
		case "TOPIC":
			if hasArg {
				f.topics[channel] = strings.TrimPrefix(arg, ":")
				return
			}
			if topic := f.topics[channel]; topic != "" {
				m.queue(fmt.Sprintf(":irc.test 332 %s %s :%s", nick, channel, topic))
			} else {
				m.queue(fmt.Sprintf(":irc.test 331 %s %s :No topic is set", nick, channel))
			}
		case "NAMES":
			m.queue(namesReply(nick, channel, f.members[channel]...)...)
		}
	}
	m.onJoin = func(channel string) []string {
		var lines []string
		if topic := f.topics[channel]; topic != "" {
			lines = append(lines, fmt.Sprintf(":irc.test 332 %s %s :%s", nick, channel, topic))
		}
		members := append(slices.Clone(f.members[channel]), nick)
		return append(lines, namesReply(nick, channel, members...)...)
	}
}

func connectMock(t *testing.T, nick string) (*Session, *mockTransport) {
	t.Helper()

	m := &mockTransport{}
	s, err := Connect(m, Params{Server: "irc.test", Port: 6667, Nickname: nick})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return s, m
}

func connectFake(t *testing.T, srv *fakeServer, nick string) (*Session, *mockTransport) {
	t.Helper()

	s, m := connectMock(t, nick)
	srv.attach(m, nick)
	return s, m
}
