package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dalnet/cruce/internal/irc"
)

func parseRoomID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 || id > irc.MaxRoom {
		return irc.NoRoom, fmt.Errorf("invalid room id %q, expected 0 to %d", arg, irc.MaxRoom)
	}
	return id, nil
}

func newFreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "free",
		Short: "Print the first room without a topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession([]string{"free"}, func(s *irc.Session) error {
				id, err := s.AvailableRoom()
				if err != nil {
					return err
				}
				if id == irc.NoRoom {
					fmt.Fprintln(cmd.OutOrStdout(), "no free room")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", id, s.Channel(id))
				return nil
			})
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <room>",
		Short: "Print the status of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			return a.withSession([]string{"status", args[0]}, func(s *irc.Session) error {
				st, err := s.RoomStatus(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", s.Channel(id), st)
				return nil
			})
		},
	}
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <room>",
		Short: "Flip a room between waiting and playing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			return a.withSession([]string{"toggle", args[0]}, func(s *irc.Session) error {
				st, err := s.ToggleRoomStatus(id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch st {
				case irc.StatusWaiting:
					fmt.Fprintf(out, "%s waiting -> playing\n", s.Channel(id))
				case irc.StatusPlaying:
					fmt.Fprintf(out, "%s playing -> waiting\n", s.Channel(id))
				default:
					fmt.Fprintf(out, "%s has no status, left unchanged\n", s.Channel(id))
				}
				return nil
			})
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		invites  []string
		wait     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room in the first free slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession([]string{"create"}, func(s *irc.Session) error {
				id, err := s.CreateRoom()
				if errors.Is(err, irc.ErrPartialRoomCreation) {
					a.log.Warn().Err(err).Int("room", id).Msg("room joined without a topic")
				} else if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", id, s.Channel(id))

				for _, nick := range invites {
					if err := s.Invite(nick); err != nil {
						if errors.Is(err, irc.ErrConnection) {
							return err
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "could not invite %s: %v\n", nick, err)
					}
				}

				if wait {
					return waitForPlayers(cmd, s, interval)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&invites, "invite", "i", nil, "Nicknames to invite from the lobby")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Stay in the room and report who joins")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Polling interval while waiting")
	return cmd
}

func newJoinCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "join <room>",
		Short: "Join a room and report who is in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			return a.withSession([]string{"join", args[0]}, func(s *irc.Session) error {
				if err := s.JoinRoom(id); err != nil {
					return err
				}
				return waitForPlayers(cmd, s, interval)
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Polling interval")
	return cmd
}

func newNamesCmd(a *app) *cobra.Command {
	var room int

	cmd := &cobra.Command{
		Use:   "names",
		Short: "List the nicknames in the lobby or in a room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := []string{"names"}
			if room != irc.NoRoom {
				if room < 0 || room > irc.MaxRoom {
					return fmt.Errorf("invalid room id %d, expected 0 to %d", room, irc.MaxRoom)
				}
				command = append(command, "--room", strconv.Itoa(room))
			}
			return a.withSession(command, func(s *irc.Session) error {
				scope := irc.Lobby
				if room != irc.NoRoom {
					if err := s.JoinRoom(room); err != nil {
						return err
					}
					scope = irc.CurrentRoom
				}
				names, err := s.Names(scope)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&room, "room", "r", irc.NoRoom, "Room id to list instead of the lobby")
	return cmd
}

func newSayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>...",
		Short: "Send a message to the lobby",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return a.withSession([]string{"say"}, func(s *irc.Session) error {
				return s.SendLobbyMessage(text)
			})
		},
	}
}

// waitForPlayers polls the current room until interrupted, printing players
// as they arrive and leave.
func waitForPlayers(cmd *cobra.Command, s *irc.Session, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	out := cmd.OutOrStdout()
	var present []string
	for {
		names, err := s.Names(irc.CurrentRoom)
		if err != nil {
			return err
		}
		joined, left := diffNames(present, names)
		for _, n := range joined {
			fmt.Fprintf(out, "+ %s\n", n)
		}
		for _, n := range left {
			fmt.Fprintf(out, "- %s\n", n)
		}
		present = names

		select {
		case <-sigChan:
			return s.LeaveRoom()
		case <-ticker.C:
		}
	}
}

// diffNames returns the names in next missing from prev, and the names in
// prev missing from next.
func diffNames(prev, next []string) (joined, left []string) {
	seen := make(map[string]bool, len(prev))
	for _, n := range prev {
		seen[n] = true
	}
	for _, n := range next {
		if !seen[n] {
			joined = append(joined, n)
		}
		delete(seen, n)
	}
	for _, n := range prev {
		if seen[n] {
			left = append(left, n)
		}
	}
	return joined, left
}
