package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jishaal/old.jishaal.com/internal/content"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Prints the site map as YAML",
	Long: `The sitemap command loads the content and prints the resulting site map,
every route with its title, tags and date, as a YAML snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sm, err := loadSiteMap(cmd)
		if err != nil {
			return err
		}
		return content.WriteSnapshot(cmd.OutOrStdout(), sm)
	},
}

func init() {
	rootCmd.AddCommand(sitemapCmd)
}
