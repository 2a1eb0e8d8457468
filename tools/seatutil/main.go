package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"warplanes-server/internal/auth"
	"warplanes-server/internal/config"
	"warplanes-server/internal/domain"
	"warplanes-server/internal/version"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printHelp(os.Stdout)
		return
	}

	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Без общего секрета токен не примет ни один сервер
	if os.Getenv("WP_SEAT_SECRET") == "" && os.Args[1] != "build" {
		fmt.Fprintln(os.Stderr, "WP_SEAT_SECRET is not set")
		os.Exit(1)
	}

	seats := auth.NewSeatIssuer(cfg.SeatSecret, cfg.SeatTTL)
	if err := run(os.Args[1:], os.Stdout, seats); err != nil {
		if errors.Is(err, errUsage) {
			printHelp(os.Stderr)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, seats *auth.SeatIssuer) error {
	switch args[0] {
	case "issue":
		if len(args) < 3 {
			return errUsage
		}
		side, err := domain.ParseSide(args[2])
		if err != nil || side == domain.SideNone {
			return fmt.Errorf("invalid side %q", args[2])
		}
		token, err := seats.Issue(args[1], side)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)

	case "inspect":
		if len(args) < 3 {
			return errUsage
		}
		seat, err := seats.Parse(args[2], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "match:   %s\nside:    %s\nexpires: %s\n",
			seat.MatchID, seat.Side, seat.ExpiresAt.Format(time.RFC3339))

	case "build":
		fmt.Fprintln(out, version.String())

	default:
		return errUsage
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Seat Utility - токены мест Warplanes
Commands:
  issue <match> <side>     - выпустить токен для стороны (player1, player2)
  inspect <match> <token>  - проверить токен и показать сторону и срок
  build                    - версия и номер сборки
Env:
  WP_SEAT_SECRET, WP_SEAT_TTL - те же, что у сервера`)
}
