// Package transport implements the line-oriented TCP connection the IRC
// session talks through.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	ErrNotConnected     = errors.New("transport: not connected")
	ErrAlreadyConnected = errors.New("transport: already connected")
	ErrLineTooLong      = errors.New("transport: line exceeds maximum length")
)

// Options configures a Conn. Zero values disable the matching feature.
type Options struct {
	TLS       bool
	TLSConfig *tls.Config

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// SendRate limits writes per second, with SendBurst writes allowed at once.
	SendRate  float64
	SendBurst int

	Logger *zerolog.Logger
}

// Conn is a plain or TLS TCP connection read one line at a time.
type Conn struct {
	opts    Options
	conn    net.Conn
	r       *bufio.Reader
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates an unconnected Conn.
func New(opts Options) *Conn {
	c := &Conn{
		opts: opts,
		log:  zerolog.Nop(),
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if opts.SendRate > 0 {
		burst := opts.SendBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.SendRate), burst)
	}
	return c
}

// Connect dials host:port.
func (c *Conn) Connect(host string, port int) error {
	if c.conn != nil {
		return ErrAlreadyConnected
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{Timeout: c.opts.DialTimeout}

	var (
		conn net.Conn
		err  error
	)
	if c.opts.TLS {
		cfg := c.opts.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{ServerName: host}
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, cfg)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	c.conn = conn
	c.r = bufio.NewReader(conn)
	c.log.Debug().Str("addr", addr).Bool("tls", c.opts.TLS).Msg("dialed")
	return nil
}

// Send writes b as is, waiting for the rate limiter first.
func (c *Conn) Send(b []byte) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(context.Background()); err != nil {
			return fmt.Errorf("failed to wait for send slot: %w", err)
		}
	}
	if c.opts.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
			return err
		}
	}
	if _, err := c.conn.Write(b); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	return nil
}

// ReadLine returns the next line without its CR LF terminator. Lines longer
// than maxLen bytes, terminator included, are consumed and reported as
// ErrLineTooLong. A maxLen of zero disables the check.
func (c *Conn) ReadLine(maxLen int) ([]byte, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if c.opts.ReadTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
			return nil, err
		}
	}

	var (
		line    []byte
		size    int
		tooLong bool
	)
	for {
		chunk, err := c.r.ReadSlice('\n')
		size += len(chunk)
		if maxLen > 0 && size > maxLen {
			tooLong = true
			line = nil
		} else {
			line = append(line, chunk...)
		}

		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	if tooLong {
		return nil, fmt.Errorf("%w: %d bytes", ErrLineTooLong, size)
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// Disconnect closes the connection.
func (c *Conn) Disconnect() error {
	if c.conn == nil {
		return ErrNotConnected
	}
	err := c.conn.Close()
	c.conn = nil
	c.r = nil
	return err
}
