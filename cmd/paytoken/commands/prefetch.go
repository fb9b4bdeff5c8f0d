package commands

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func prefetchCmd(g *globals) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Fetch the signing key directory and print the cached keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.recipient(false)
			if err != nil {
				return err
			}

			fetch := r.PrefetchKeys
			if refresh {
				fetch = r.RefreshKeys
			}
			if err := fetch(cmd.Context()); err != nil {
				return err
			}

			stats := r.KeyCacheStats()
			fmt.Fprintf(g.streams.Stdout, "generation: %d\n", stats.Generation)
			fmt.Fprintf(g.streams.Stdout, "fetched:    %s\n", stats.FetchedAt.UTC().Format(time.RFC3339))
			fmt.Fprintf(g.streams.Stdout, "ttl:        %s\n", stats.TTL)

			tw := tabwriter.NewWriter(g.streams.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROTOCOL\tKEYS")
			for _, version := range slices.Sorted(maps.Keys(stats.Keys)) {
				fmt.Fprintf(tw, "%s\t%d\n", version, stats.Keys[version])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch even when the cached keys are fresh")
	return cmd
}
