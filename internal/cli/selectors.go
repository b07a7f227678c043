package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/kiranshivaraju/boxdscrape/internal/extract"
	"github.com/spf13/cobra"
)

func newSelectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selectors",
		Short: "List the known markup selector sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tPROFILE\tLISTING")
			for _, v := range extract.SelectorVersions() {
				s := extract.SelectorSets[v]
				name := v
				if v == extract.DefaultSelectorVersion {
					name += " (default)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, s.ProfileMarker, s.ListingContainer)
			}
			return tw.Flush()
		},
	}
}
