// Command replay verifies a save file by replaying its action log from the
// recorded seed, or generates a bot-played save for later checks.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/global-command/api/internal/bot"
	"github.com/freeeve/global-command/api/pkg/engine"
)

var errMismatch = errors.New("replayed state does not match the save")

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("Replay failed")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	var (
		boardPath string
		verbose   bool
		generate  string
		seed      uint64
		turns     int
		strategy  string
	)
	fs.StringVar(&boardPath, "board", "", "Board YAML (default: built-in Europe 1940)")
	fs.BoolVar(&verbose, "v", false, "Print every replayed action")
	fs.StringVar(&generate, "generate", "", "Write a bot-played save to this path instead of verifying")
	fs.Uint64Var(&seed, "seed", 1, "Dice seed for -generate")
	fs.IntVar(&turns, "turns", 1, "Game turns to play for -generate")
	fs.StringVar(&strategy, "strategy", "passive", "Bot strategy for -generate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	board, err := loadBoard(boardPath)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	if generate != "" {
		return generateSave(board, generate, seed, turns, bot.StrategyFor(strategy), out)
	}
	if fs.NArg() != 1 {
		return errors.New("usage: replay [-board file] [-v] <save.json>")
	}
	return verifySave(board, fs.Arg(0), verbose, out)
}

func loadBoard(path string) (*engine.Board, error) {
	if path == "" {
		return engine.DefaultBoard()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.LoadBoard(data)
}

func generateSave(board *engine.Board, path string, seed uint64, turns int, s bot.Strategy, out io.Writer) error {
	e, err := engine.NewEngine(seed, board)
	if err != nil {
		return err
	}
	n, err := bot.Play(e, s, turns)
	if err != nil {
		return fmt.Errorf("bot play: %w", err)
	}
	data, err := e.Save(fmt.Sprintf("%s seed %d", s.Name(), seed), time.Now()).Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s: %d actions, %s\n", path, n, e.Summary())
	return nil
}

func verifySave(board *engine.Board, path string, verbose bool, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sf, err := engine.DecodeSave(data)
	if err != nil {
		return err
	}

	var step func(engine.ReplayStep)
	if verbose {
		step = func(rs engine.ReplayStep) {
			fmt.Fprintf(out, "%5d %-14s %-28s dice %d->%d events %d\n",
				rs.Index+1, rs.Power, rs.Action.Type, rs.DiceBefore, rs.DiceAfter, len(rs.Events))
		}
	}

	start := time.Now()
	e, match, err := engine.ReplaySave(sf, board, step)
	if err != nil {
		return err
	}
	gs := e.State()
	log.Info().Str("save", sf.Metadata.Name).Int("actions", len(gs.ActionLog)).
		Dur("took", time.Since(start)).Bool("match", match).Msg("Replay finished")
	fmt.Fprintf(out, "%s\nactions: %d\ndice rolled: %d\nmatch: %t\n", engine.Summary(gs), len(gs.ActionLog), gs.RNGCounter, match)
	if !match {
		return errMismatch
	}
	return nil
}
