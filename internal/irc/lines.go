package irc

import (
	"strconv"
	"strings"
)

const crlf = "\r\n"

// buildLine formats "VERB p1 p2 ...\r\n". When trailing is true the last
// parameter is introduced with a colon so it may contain spaces.
func buildLine(trailing bool, verb string, params ...string) string {
	size := len(verb) + len(crlf)
	for _, p := range params {
		size += 1 + len(p)
	}
	if trailing && len(params) > 0 {
		size++
	}

	var b strings.Builder
	b.Grow(size)
	b.WriteString(verb)
	for i, p := range params {
		b.WriteByte(' ')
		if trailing && i == len(params)-1 {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	b.WriteString(crlf)
	return b.String()
}

// handshake is the registration burst sent as a single write on connect.
func handshake(nick, lobby string) []byte {
	parts := []string{
		buildLine(false, "PASS", "*"),
		buildLine(false, "NICK", nick),
		buildLine(true, "USER", nick, "8", "*", nick),
		joinLine(lobby),
	}
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

func joinLine(channel string) string { return buildLine(false, "JOIN", channel) }

func partLine(channel string) string { return buildLine(false, "PART", channel) }

func quitLine() string { return buildLine(false, "QUIT") }

func privmsgLine(target, text string) string { return buildLine(true, "PRIVMSG", target, text) }

func topicFetchLine(channel string) string { return buildLine(false, "TOPIC", channel) }

func topicSetLine(channel, topic string) string { return buildLine(false, "TOPIC", channel, topic) }

func namesLine(channel string) string { return buildLine(false, "NAMES", channel) }

func inviteLine(channel, nick string) string { return buildLine(false, "INVITE", channel, nick) }

func pongLine(token string) string { return buildLine(true, "PONG", token) }

// roomName formats a room channel: prefix followed by the id padded to three
// digits.
func roomName(prefix string, id int) string {
	digits := strconv.Itoa(id)
	var b strings.Builder
	b.Grow(len(prefix) + 3)
	b.WriteString(prefix)
	for i := len(digits); i < 3; i++ {
		b.WriteByte('0')
	}
	b.WriteString(digits)
	return b.String()
}
