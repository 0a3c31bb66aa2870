package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"quizzz-client/internal/domain"
)

func newTournamentCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Manage tournaments",
	}
	cmd.AddCommand(
		tournamentListCmd(opts),
		tournamentSaveCmd(opts, false),
		tournamentSaveCmd(opts, true),
		tournamentDeleteCmd(opts),
		tournamentStandingsCmd(opts),
	)
	return cmd
}

func tournamentListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list COMMUNITY",
		Short: "List a community's tournaments",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community")
			if err != nil {
				return err
			}
			tournaments, err := rt.tournaments().List(ctx, ids[0])
			if err != nil {
				return err
			}
			return rt.render(tournaments, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tACTIVE")
				for _, t := range tournaments {
					fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Name, yesNo(t.IsActive))
				}
			})
		}),
	}
}

// tournamentSaveCmd builds "create COMMUNITY" or "update COMMUNITY TOURNAMENT".
func tournamentSaveCmd(opts *globalOptions, update bool) *cobra.Command {
	var in domain.TournamentInput
	use, short, names := "create COMMUNITY", "Create a tournament", []string{"community"}
	if update {
		use, short, names = "update COMMUNITY TOURNAMENT", "Rename or (de)activate a tournament", []string{"community", "tournament"}
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(len(names)),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, names...)
			if err != nil {
				return err
			}
			service := rt.tournaments()
			var t domain.Tournament
			if update {
				t, err = service.Update(ctx, ids[0], ids[1], in)
			} else {
				t, err = service.Create(ctx, ids[0], in)
			}
			if err != nil {
				reportFailure(rt, service.FormState())
				return err
			}
			return rt.render(t, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "tournament %d\t%s\tactive=%s\n", t.ID, t.Name, yesNo(t.IsActive))
			})
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "tournament name")
	cmd.Flags().BoolVar(&in.IsActive, "active", true, "whether the tournament is active")
	return cmd
}

func tournamentDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete COMMUNITY TOURNAMENT",
		Short: "Delete a tournament",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "tournament")
			if err != nil {
				return err
			}
			return rt.tournaments().Delete(ctx, ids[0], ids[1])
		}),
	}
}

func tournamentStandingsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "standings COMMUNITY TOURNAMENT",
		Short: "Show tournament standings",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "tournament")
			if err != nil {
				return err
			}
			standings, err := rt.tournaments().Standings(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			return rt.render(standings, func(w *tabwriter.Writer) {
				renderStandings(w, standings)
			})
		}),
	}
}

func renderStandings(w *tabwriter.Writer, standings []domain.Standing) {
	fmt.Fprintln(w, "#\tUSER\tPOINTS\tPLAYED\tAUTHORED")
	for i, s := range standings {
		fmt.Fprintf(w, "%d\t%s\t%g\t%d\t%d\n", i+1, s.User, s.Points, s.RoundsPlayed, s.RoundsAuthored)
	}
}
