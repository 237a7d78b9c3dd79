package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ryanm101/gameshelf/internal/db"
)

func newGamesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Query the game catalog",
	}

	var page int
	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if page < 1 {
				page = 1
			}
			games, _, err := a.repositories(cmd.Context())
			if err != nil {
				return err
			}
			res, err := games.SearchGames(cmd.Context(), search, page)
			if err != nil {
				return err
			}
			if a.out.json {
				a.out.PrintResult(res)
				return nil
			}

			rows := make([][]string, 0, len(res.Results))
			for _, g := range res.Results {
				rows = append(rows, []string{
					strconv.FormatInt(g.ID, 10),
					g.Name,
					fmt.Sprintf("%.2f", g.Rating),
					g.Released,
					db.JoinGenres(g.GenreNames()),
				})
			}
			a.out.PrintTable([]string{"ID", "NAME", "RATING", "RELEASED", "GENRES"}, rows)
			a.out.PrintInfo("\npage %d, %d games in total\n", page, res.Count)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().StringVar(&search, "search", "", "search query")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one game with its rating distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid game id %q", args[0])
			}
			games, _, err := a.repositories(cmd.Context())
			if err != nil {
				return err
			}
			g, err := games.GameDetails(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.out.json {
				a.out.PrintResult(g)
				return nil
			}

			a.out.PrintInfo("%s\n", g.Name)
			a.out.PrintInfo("  Released:  %s\n", g.Released)
			a.out.PrintInfo("  Genres:    %s\n", db.JoinGenres(g.GenreNames()))
			a.out.PrintInfo("  Developer: %s\n", g.Developer())
			a.out.PrintInfo("  Rating:    %.2f\n\n", g.Rating)

			rows := make([][]string, 0, len(g.Ratings))
			for _, r := range g.Ratings {
				rows = append(rows, []string{r.Title, strconv.Itoa(r.Count), fmt.Sprintf("%.1f%%", r.Percent)})
			}
			a.out.PrintTable([]string{"RATING", "VOTES", "PERCENT"}, rows)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
