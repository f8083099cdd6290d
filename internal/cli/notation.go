package cli

import "github.com/spf13/cobra"

const notationHelp = `Scores are plain text. Parts are separated by ';' and must have the same
number of measures. Tempo, repeats, gaps and system breaks are read from the
first part.

  t<bpm>        tempo, e.g. t96
  o<n> < >      set octave, octave down, octave up
  c d e f g a b note; + or # sharpens, - flattens; length and dots follow (c8.)
  r             rest
  l<n>          default length
  &             tie to the next note
  |             barline
  |:            repeat start
  :|<n>         repeat end, played n times (default 2)
  [n  [n!       ending played n times; '!' marks the final ending
  R<n>          rest of n bars collapsed into one measure
  w<ms>         gap of fixed length, e.g. w1500
  /             start a new system after this measure
  #title <text> document title
  // text       comment

Example:

  #title Ode
  t120 |: e4 e4 f4 g4 | g4 f4 e4 d4 :| c2 c2`

func newNotationHelpTopic() *cobra.Command {
	return &cobra.Command{
		Use:   "notation",
		Short: "Score notation reference",
		Long:  notationHelp,
	}
}
