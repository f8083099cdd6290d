package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cbegin/scoresync/internal/export"
	"github.com/cbegin/scoresync/internal/timing"
)

// newTimelineCommand creates the timeline command.
func newTimelineCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Print the moments of the followed part",
		Long: `Print every moment of the followed part's timeline: the time and the
start, stop, jump and system-end events that happen at it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := e.outputFormat()
			if err != nil {
				return err
			}
			doc, err := e.loadDocument()
			if err != nil {
				return err
			}
			pb, err := e.newPlayback(doc)
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), format, export.NewTimelineDoc(doc, pb.Timeline(pb.Part())))
		},
	}
}

// newFramesCommand creates the frames command.
func newFramesCommand(e *env) *cobra.Command {
	var hints bool

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Print the cursor frames of the followed part",
		Long: `Print each frame: its time range, the horizontal and vertical span the
cursor sweeps, the measure and the elements sounding during it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := e.outputFormat()
			if err != nil {
				return err
			}
			doc, err := e.loadDocument()
			if err != nil {
				return err
			}
			pb, err := e.newPlayback(doc)
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), format, export.NewFramesDoc(doc, pb.Part(), pb.Frames(pb.Part()), hints))
		},
	}
	cmd.Flags().BoolVar(&hints, "hints", false, "include start/stop/retrigger/sustain hints")
	return cmd
}

// newSequenceCommand creates the sequence command.
func newSequenceCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sequence",
		Short: "Print the order measures are played in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := e.outputFormat()
			if err != nil {
				return err
			}
			doc, err := e.loadDocument()
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), format, export.NewSequenceDoc(doc))
		},
	}
}

// newSeekCommand creates the seek command.
func newSeekCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seek <time>",
		Short: "Print the cursor state at a playback time",
		Long: `Seek the cursor to a playback time and print its frame, interpolation
and rectangle. Time is milliseconds ("1500") or a duration ("1.5s").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := e.outputFormat()
			if err != nil {
				return err
			}
			t, err := parseTime(args[0])
			if err != nil {
				return err
			}
			doc, err := e.loadDocument()
			if err != nil {
				return err
			}
			pb, err := e.newPlayback(doc)
			if err != nil {
				return err
			}
			c := pb.Cursor()
			t = timing.Clamp(t, timing.Zero(), c.Duration())
			c.Seek(t)
			return export.Write(cmd.OutOrStdout(), format, export.NewStateDoc(t, c.State()))
		},
	}
}

// newTraceCommand creates the trace command.
func newTraceCommand(e *env) *cobra.Command {
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the cursor state at fixed time steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := e.outputFormat()
			if err != nil {
				return err
			}
			doc, err := e.loadDocument()
			if err != nil {
				return err
			}
			pb, err := e.newPlayback(doc)
			if err != nil {
				return err
			}
			trace, err := export.NewTraceDoc(doc, pb.Part(), pb.Cursor(), timing.FromStd(step))
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), format, trace)
		},
	}
	cmd.Flags().DurationVar(&step, "step", 100*time.Millisecond, "time between samples")
	return cmd
}
