package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"warplanes-server/internal/config"
	"warplanes-server/internal/tui"
	"warplanes-server/pkg/api"
	"warplanes-server/pkg/logger"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fail(err)
	}
	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "server address (WP_SERVER)")
	gameID := flag.String("game", "", "match id to join")
	create := flag.Bool("create", false, "create a new match")
	vsBot := flag.Bool("bot", false, "with -create: play against the server bot")
	side := flag.String("side", "", "requested side: player1 or player2")
	token := flag.String("token", "", "seat token to resume a seat")
	flag.Parse()

	// Экран занят интерфейсом, логи никуда не пишем
	logger.Discard()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *create {
		id, err := tui.CreateMatch(ctx, cfg.ServerURL, *vsBot)
		if err != nil {
			fail(err)
		}
		*gameID = id
	}
	if *gameID == "" {
		fail(errors.New("either -game or -create is required"))
	}

	conn, err := tui.Dial(ctx, cfg.ServerURL, *gameID, *side, *token)
	if err != nil {
		fail(err)
	}
	defer conn.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fail(err)
	}
	if err := screen.Init(); err != nil {
		fail(err)
	}

	inbox := make(chan api.ServerMessage, 16)
	go func() { _ = conn.Listen(inbox) }()

	app := tui.NewApp(screen, conn, *gameID)
	runErr := app.Run(ctx, inbox)
	screen.Fini()

	st := app.State()
	fmt.Printf("match %s, side %s, phase %s\n", *gameID, st.Side, st.Phase)
	if st.Token != "" && st.Phase != "finished" {
		fmt.Printf("resume with: -game %s -token %s\n", *gameID, st.Token)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fail(runErr)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "warplanes:", err)
	os.Exit(1)
}
