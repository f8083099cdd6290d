package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/cbegin/scoresync/internal/config"
	"github.com/cbegin/scoresync/internal/logging"
	"github.com/cbegin/scoresync/internal/notation"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a scoresync.toml config file")
		encName    = flag.String("encoding", "utf-8", "score file encoding: utf-8|shift-jis")
		logLevel   = flag.String("log-level", "", "log level: debug|info|warn|error")
	)
	flag.Parse()

	cfg, err := config.NewLoader(*configPath).Load(*configPath != "")
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range cfg.Warnings {
		log.Printf("warning: %s", w)
	}
	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(level))

	enc, err := notation.ParseEncoding(*encName)
	if err != nil {
		log.Fatal(err)
	}

	var initialPath string
	if flag.NArg() > 0 {
		p, err := filepath.Abs(flag.Arg(0))
		if err != nil {
			log.Fatalf("resolve %q: %v", flag.Arg(0), err)
		}
		initialPath = p
	}

	g := newGame(cfg, logger, enc, initialPath)
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("scoresync viewer")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
