// Package cli provides the command-line interface for scoresync.
package cli

import (
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupInspect = "inspect"
	groupPlay    = "play"
	groupSetup   = "setup"
)

// NewRootCommand creates the root command for scoresync.
func NewRootCommand(version string) *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "scoresync",
		Short: "Follow a score with a playback cursor",
		Long: `scoresync turns a laid-out score into a timeline of note starts and stops,
slices it into frames and moves a cursor across the page as playback time passes.

Scores are written in a compact text notation; see "scoresync help notation".`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// config init must work without a readable config
			if cmd.Name() == "init" {
				return nil
			}
			return e.setup(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "config file (default ./scoresync.toml when present)")
	pf.StringVar(&e.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	pf.IntVarP(&e.part, "part", "p", 0, "index of the part the cursor follows")
	pf.StringVarP(&e.file, "file", "f", "", "path to a score file")
	pf.StringVarP(&e.score, "score", "s", "", "inline score source")
	pf.StringVar(&e.encoding, "encoding", "utf-8", "score file encoding when it has no BOM: utf-8|shift-jis")
	pf.StringVarP(&e.format, "format", "o", "text", "output format: text|yaml|json")

	root.AddGroup(
		&cobra.Group{ID: groupInspect, Title: "Inspection Commands:"},
		&cobra.Group{ID: groupPlay, Title: "Playback Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	for _, cmd := range []*cobra.Command{
		newTimelineCommand(e),
		newFramesCommand(e),
		newSequenceCommand(e),
		newSeekCommand(e),
		newTraceCommand(e),
	} {
		cmd.GroupID = groupInspect
		root.AddCommand(cmd)
	}

	playCmd := newPlayCommand(e)
	playCmd.GroupID = groupPlay
	root.AddCommand(playCmd)

	configCmd := newConfigCommand(e)
	configCmd.GroupID = groupSetup
	root.AddCommand(configCmd)

	root.AddCommand(newNotationHelpTopic())

	return root
}
