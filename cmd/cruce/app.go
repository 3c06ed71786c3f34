package main

import (
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dalnet/cruce/internal/config"
	"github.com/dalnet/cruce/internal/irc"
	"github.com/dalnet/cruce/internal/log"
	"github.com/dalnet/cruce/internal/storage"
	"github.com/dalnet/cruce/internal/transport"
)

// app carries the global flags and the state shared by every subcommand.
type app struct {
	configPath string
	nick       string
	logLevel   string

	runID   string
	cfg     *config.Config
	log     *zerolog.Logger
	journal *storage.Journal
}

func (a *app) load() error {
	configPath := a.configPath
	if !filepath.IsAbs(configPath) {
		wd, _ := os.Getwd()
		configPath = filepath.Join(wd, configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if a.nick != "" {
		cfg.Nick = a.nick
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if cfg.Nick == "" {
		return errors.New("no nickname configured, use --nick or set nick in the config file")
	}

	journal, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}

	a.runID = uuid.NewString()
	logger := log.New(cfg.LogLevel, os.Stderr).With().Str("run", a.runID).Logger()

	a.cfg = cfg
	a.log = &logger
	a.journal = journal
	return nil
}

// withSession connects, runs fn and disconnects, recording the command and
// every unsolicited server line in the journal.
func (a *app) withSession(command []string, fn func(s *irc.Session) error) error {
	if err := a.load(); err != nil {
		return err
	}
	a.journal.AddCommand(a.runID + " " + strings.Join(command, " "))

	opts := transport.Options{
		TLS:          a.cfg.TLS,
		DialTimeout:  a.cfg.DialTimeout,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		SendRate:     a.cfg.SendRate,
		SendBurst:    a.cfg.SendBurst,
		Logger:       a.log,
	}
	if a.cfg.TLS {
		opts.TLSConfig = &tls.Config{
			ServerName:         a.cfg.Server,
			InsecureSkipVerify: a.cfg.TLSSkipVerify,
		}
	}

	s, err := irc.Connect(transport.New(opts), irc.Params{
		Server:        a.cfg.Server,
		Port:          a.cfg.Port,
		Nickname:      a.cfg.Nick,
		LobbyChannel:  a.cfg.LobbyChannel,
		RoomPrefix:    a.cfg.RoomPrefix,
		NoTopicMarker: a.cfg.NoTopicMarker,
		Logger:        a.log,
		OnUnsolicited: func(m irc.Message) {
			a.journal.AddNotice(m.Raw)
		},
	})
	if err != nil {
		a.save()
		return err
	}

	runErr := fn(s)

	if err := s.Disconnect(); err != nil {
		a.log.Warn().Err(err).Msg("disconnect failed")
	}
	a.save()
	return runErr
}

func (a *app) save() {
	if err := a.journal.Save(); err != nil {
		a.log.Warn().Err(err).Msg("could not save journal")
	}
}
