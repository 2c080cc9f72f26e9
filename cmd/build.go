package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jishaal/old.jishaal.com/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from content, layouts, and static assets",
	Long: `The build command processes Markdown files from the content directory,
renders every post, the paginated index, one page per tag and the tags
overview, copies static assets, and writes the site to the configured
output directory (default './public/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := site.NewBuilder(appConfig, log.Logger).Build(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
