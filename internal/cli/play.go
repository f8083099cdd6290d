package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cbegin/scoresync"
	"github.com/cbegin/scoresync/internal/tui"
)

// launchTUIFunc runs the playback TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

func launchTUI(model *tui.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// newPlayCommand creates the play command.
func newPlayCommand(e *env) *cobra.Command {
	var (
		loop  bool
		speed float64
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the score in an interactive terminal view",
		Long: `Play the score against the wall clock and show the cursor's frame,
measure and sounding elements. Playback starts immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := e.loadDocument()
			if err != nil {
				return err
			}
			pb, err := e.newPlayback(doc)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("speed") {
				speed = e.cfg.Player.Speed
			}
			if !cmd.Flags().Changed("loop") {
				loop = e.cfg.Player.Loop
			}
			pl, err := scoresync.NewPlayer(pb, scoresync.WithSpeed(speed), scoresync.WithLoop(loop))
			if err != nil {
				return err
			}

			model := tui.New(pb, pl, tui.WithFPS(e.cfg.Player.FPS))
			pl.Play()
			return launchTUIFunc(model)
		},
	}
	cmd.Flags().BoolVar(&loop, "loop", false, "loop playback (default from config)")
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed (default from config)")
	return cmd
}
