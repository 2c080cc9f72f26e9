package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jishaal/old.jishaal.com/internal/content"
	"github.com/jishaal/old.jishaal.com/internal/model"
	"github.com/jishaal/old.jishaal.com/internal/tags"
)

var tagFilter string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Lists the tags used across all posts",
	Long: `The tags command prints every distinct tag used by the content together
with the number of posts carrying it. With --tag it lists the posts filed
under that tag instead, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sm, err := loadSiteMap(cmd)
		if err != nil {
			return err
		}
		if tagFilter != "" {
			return printTagRoutes(cmd.OutOrStdout(), sm, tagFilter)
		}
		return printTagCounts(cmd.OutOrStdout(), sm)
	},
}

func loadSiteMap(cmd *cobra.Command) (*model.SiteMap, error) {
	loader := content.NewLoader(content.Options{
		Dir:           appConfig.ContentDir,
		BlogPath:      appConfig.BlogPath,
		IncludeDrafts: appConfig.IncludeDrafts,
	}, log.Logger)
	sm, _, err := loader.Load(cmd.Context())
	return sm, err
}

func printTagCounts(w io.Writer, sm *model.SiteMap) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range tags.Counts(sm) {
		fmt.Fprintf(tw, "%s\t%d\n", c.Tag, c.Count)
	}
	return tw.Flush()
}

func printTagRoutes(w io.Writer, sm *model.SiteMap, tag string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range tags.RoutesWithTag(sm, tag) {
		date := ""
		if !r.Date().IsZero() {
			date = r.Date().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", date, r.Path, r.Title())
	}
	return tw.Flush()
}

func init() {
	tagsCmd.Flags().StringVar(&tagFilter, "tag", "", "list the posts carrying this tag")
	rootCmd.AddCommand(tagsCmd)
}
