package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/otbchess/internal/chess"
)

func main() {
	var (
		showHelp bool
		verbose  bool
		output   string
	)
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.BoolVar(&verbose, "v", false, "Log every replayed move")
	flag.StringVar(&output, "o", "", "Write the transcript to this file; \"auto\" derives the name from the headers")
	flag.Parse()

	if showHelp || flag.NArg() > 1 {
		showHelpMessage()
		return
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var in io.Reader = os.Stdin
	source := "stdin"
	if flag.NArg() == 1 {
		source = flag.Arg(0)
		f, err := os.Open(source)
		if err != nil {
			log.Fatal().Err(err).Str("file", source).Msg("Failed to open PGN")
		}
		defer f.Close()
		in = f
	}

	g, err := chess.ImportPGN(in)
	if err != nil {
		log.Fatal().Err(err).Str("file", source).Msg("Failed to replay PGN")
	}

	for i, rec := range g.History() {
		log.Debug().Int("ply", i+1).Str("player", rec.Player.String()).Str("san", rec.Notation).Msg("Replayed")
	}
	log.Info().
		Str("file", source).
		Int("moves", len(g.History())).
		Str("result", g.Result()).
		Str("termination", g.Termination()).
		Msg("Replay complete")

	if output == "" {
		fmt.Println(g.PGN())
		return
	}
	if output == "auto" {
		output = g.Filename()
	}
	if err := os.WriteFile(output, []byte(g.PGN()+"\n"), 0o644); err != nil {
		log.Fatal().Err(err).Str("file", output).Msg("Failed to write transcript")
	}
	log.Info().Str("file", output).Msg("Transcript written")
}

func showHelpMessage() {
	fmt.Println(`pgnreplay

DESCRIPTION:
    Replays a PGN game through the otbchess rules engine and prints the
    normalized transcript. Illegal moves stop the replay with an error.

USAGE:
    pgnreplay [OPTIONS] [FILE]

    Reads standard input when FILE is omitted.

OPTIONS:
    -h, --help    Show this help message
    -v            Log every replayed move
    -o FILE       Write the transcript to FILE instead of stdout;
                  -o auto names it <White>_vs_<Black>_<Date>.pgn`)
}
