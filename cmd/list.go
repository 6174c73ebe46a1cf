package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/binary-blog/internal/app"
	"github.com/JakeFAU/binary-blog/internal/clock/system"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the embedded posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := resolveEnv(cmd.Context())
			if err != nil {
				return err
			}
			site, err := app.BuildSite(e.cfg, e.sources, system.New(), e.logger.Named("build"))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tPATH\tTITLE\tASSETS")
			for _, item := range site.Items {
				assets := strings.Join(item.AssetNames(), ",")
				if assets == "" {
					assets = "-"
				}
				fmt.Fprintf(w, "%s\t/%s/\t%s\t%s\n", item.Date.Format("2006-01-02"), item.Path, item.Title, assets)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("write listing: %w", err)
			}
			return nil
		},
	}
}
