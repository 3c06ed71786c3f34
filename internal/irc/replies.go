package irc

import (
	"fmt"
	"strings"
)

// IRC replies consumed by the session.
const (
	rplNotopic    = "331" // <channel> :No topic is set
	rplTopic      = "332" // <channel> :<topic>
	rplNamreply   = "353" // <=/*/@> <channel> :1*(@/ /+user)
	rplEndofnames = "366" // <channel> :End of NAMES list

	errNosuchchannel  = "403" // <channel> :No such channel
	errUnknowncommand = "421" // <command> :Unknown command
	errNotregistered  = "451" // :You have not registered
	errNeedmoreparams = "461" // <command> :Not enough parameters
)

// MaxSkippedLines bounds how many unrelated lines are discarded while waiting
// for the reply to a command. Registration bursts and MOTDs land here.
const MaxSkippedLines = 512

// genericErrors do not name the channel of the command that caused them.
var genericErrors = map[string]bool{
	errUnknowncommand: true,
	errNotregistered:  true,
	errNeedmoreparams: true,
}

// readReply returns the next line that answers a command about channel: one
// of the given numerics naming the channel, or an error numeric. PING is
// answered on the way, replies to earlier JOINs are consumed and every other
// line goes to the unsolicited handler.
func (s *Session) readReply(channel string, numerics ...string) (Message, error) {
	for skipped := 0; skipped < MaxSkippedLines; skipped++ {
		raw, err := s.t.ReadLine(MaxLineLen)
		if err != nil {
			return Message{}, connectionError("read", err)
		}

		msg, err := Parse(string(raw))
		if err != nil {
			s.log.Debug().Err(err).Msg("skipping unparsable line")
			continue
		}

		switch {
		case msg.Command == "PING":
			if err := s.send(pongLine(msg.Trailing)); err != nil {
				return Message{}, err
			}
			continue
		case msg.Command == "ERROR":
			return Message{}, fmt.Errorf("%w: server closed the link: %s", ErrConnection, msg.Trailing)
		case s.absorbJoinReply(msg):
			s.log.Debug().Str("line", msg.Raw).Msg("join reply")
			continue
		case answers(msg, channel, numerics):
			s.log.Debug().Str("line", msg.Raw).Msg("recv")
			return msg, nil
		}

		s.log.Debug().Str("line", msg.Raw).Msg("unsolicited")
		if s.onUnsolicited != nil {
			s.onUnsolicited(msg)
		}
	}
	return Message{}, fmt.Errorf("%w: no reply for %s after %d unrelated lines", ErrProtocol, channel, MaxSkippedLines)
}

func answers(msg Message, channel string, numerics []string) bool {
	if msg.IsError() {
		return genericErrors[msg.Command] || msg.refersTo(channel)
	}
	for _, n := range numerics {
		if msg.Command == n {
			return msg.refersTo(channel)
		}
	}
	return false
}

// expectJoin records that a JOIN for channel was sent. The server answers it
// with the channel topic and a names list ending in 366, or with an error.
func (s *Session) expectJoin(channel string) {
	s.joins[strings.ToLower(channel)]++
}

// absorbJoinReply reports whether msg belongs to the answer of a pending JOIN.
// Commands are answered in order, so while a JOIN for a channel is pending its
// topic and names lines come before those of any later command.
func (s *Session) absorbJoinReply(msg Message) bool {
	if len(s.joins) == 0 || !msg.IsNumeric() {
		return false
	}
	for channel := range s.joins {
		if !msg.refersTo(channel) {
			continue
		}
		switch {
		case msg.Command == rplTopic, msg.Command == rplNamreply:
			return true
		case msg.Command == rplEndofnames, msg.IsError():
			s.joins[channel]--
			if s.joins[channel] == 0 {
				delete(s.joins, channel)
			}
			return true
		}
		return false
	}
	return false
}
