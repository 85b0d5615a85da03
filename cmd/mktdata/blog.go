package main

import (
	"github.com/spf13/cobra"

	"mktdata/internal/blog"
)

func newBlogCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "blog",
		Short: "Mine the blog for posts mentioning exchange products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := InitializeScraper(c.cfg, c.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = c.cfg.BlogDir()
			}
			if err := blog.SaveAll(out, posts); err != nil {
				return err
			}
			c.logger.Info("blog saved", "dir", out, "posts", len(posts))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output directory, DATA_DIR/blog when empty")
	return cmd
}
