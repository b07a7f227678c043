package cli

import (
	"errors"
	"fmt"

	"github.com/kiranshivaraju/boxdscrape/internal/store"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
	"github.com/spf13/cobra"
)

type ratingsResult struct {
	Username string              `json:"username" yaml:"username"`
	Ratings  []models.UserRating `json:"ratings" yaml:"ratings"`
}

func newRatingsCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ratings <username>",
		Short: "Print a user's archived ratings in ranking-engine form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			if a.cfg.Database.URL == "" {
				return fmt.Errorf("ratings needs DATABASE_URL")
			}

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, a.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			username := args[0]
			ratings, err := store.NewPostgresStore(pool).ListRatings(ctx, username)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no archived ratings for %s", username)
			}
			if err != nil {
				return fmt.Errorf("list ratings: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), output, ratingsResult{Username: username, Ratings: ratings})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format: json or yaml")
	return cmd
}
