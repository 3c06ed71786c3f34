package irc

import (
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Message is one decoded protocol line.
//
// Only the final ("trailing") parameter is exposed; middle parameters are kept
// privately so replies can be matched against the channel they refer to.
type Message struct {
	Prefix   string // origin of the line, empty for client-originated lines
	Command  string // verb or three-digit numeric, upper-cased
	Trailing string // final parameter, empty if the line has none
	Raw      string // the line without its CRLF terminator

	middle   []string
	hasColon bool
}

// Parse decodes a single line of the form [":" prefix SPACE] command [params].
// Lines without a prefix are tokenised from the start of the line.
func Parse(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Message{}, fmt.Errorf("%w: empty line", ErrMalformedMessage)
	}
	if line[0] == ':' && !strings.Contains(strings.TrimRight(line, " "), " ") {
		return Message{}, fmt.Errorf("%w: prefix without command in %q", ErrMalformedMessage, line)
	}

	parsed, err := ircmsg.ParseLine(line)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %q: %v", ErrMalformedMessage, line, err)
	}
	if parsed.Command == "" {
		return Message{}, fmt.Errorf("%w: missing command in %q", ErrMalformedMessage, line)
	}

	msg := Message{
		Prefix:   parsed.Source,
		Command:  strings.ToUpper(parsed.Command),
		Raw:      line,
		hasColon: hasTrailingColon(line),
	}
	if n := len(parsed.Params); n > 0 {
		msg.Trailing = parsed.Params[n-1]
		msg.middle = parsed.Params[:n-1]
	}
	return msg, nil
}

// hasTrailingColon reports whether the final parameter was introduced with
// " :", skipping any tags and the prefix.
func hasTrailingColon(line string) bool {
	body := line
	if strings.HasPrefix(body, "@") {
		_, body, _ = strings.Cut(body, " ")
	}
	body = strings.TrimLeft(body, " ")
	if strings.HasPrefix(body, ":") {
		_, body, _ = strings.Cut(body, " ")
	}
	return strings.Contains(body, " :")
}

// Nick returns the nickname part of the prefix.
func (m Message) Nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	nick, _, _ = strings.Cut(nick, "@")
	return nick
}

// IsNumeric reports whether the command is a three-digit server reply.
func (m Message) IsNumeric() bool {
	if len(m.Command) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if m.Command[i] < '0' || m.Command[i] > '9' {
			return false
		}
	}
	return true
}

// IsError reports whether the message is an error numeric (4xx or 5xx).
func (m Message) IsError() bool {
	return m.IsNumeric() && (m.Command[0] == '4' || m.Command[0] == '5')
}

// refersTo reports whether channel is one of the non-trailing parameters.
func (m Message) refersTo(channel string) bool {
	for _, p := range m.middle {
		if strings.EqualFold(p, channel) {
			return true
		}
	}
	return !m.hasColon && strings.EqualFold(m.Trailing, channel)
}
