package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"quizzz-client/internal/app"
	"quizzz-client/internal/config"
)

func newBoardCmd(opts *globalOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "board COMMUNITY TOURNAMENT",
		Short: "Show rounds with their status, time left and standings",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "tournament")
			if err != nil {
				return err
			}
			board := rt.board()
			if !watch {
				snap, err := board.Snapshot(ctx, ids[0], ids[1])
				if err != nil {
					return err
				}
				return renderBoard(rt, snap)
			}

			updates, cancel := board.Subscribe(ids[0], ids[1])
			defer cancel()
			every := config.TTLDuration(rt.cfg.Board.Refresh, 30*time.Second)
			go board.Watch(ctx, ids[0], ids[1], every, nil)
			for {
				select {
				case <-ctx.Done():
					return nil
				case snap := <-updates:
					if err := renderBoard(rt, snap); err != nil {
						return err
					}
				}
			}
		}),
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep refreshing until interrupted")
	return cmd
}

func renderBoard(rt *runtime, board app.Board) error {
	return rt.render(board, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "tournament %d\tupdated %s\n\n", board.TournamentID, board.UpdatedAt.Local().Format("15:04:05"))
		fmt.Fprintln(w, "ROUND\tQUIZ\tSTATUS\tACTION\tTIME LEFT")
		for _, r := range board.Rounds {
			left := ""
			if r.TimeLeft != nil {
				left = r.TimeLeft.String()
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Round.ID, r.Round.Quiz.Name, r.Status, r.Action, left)
		}
		fmt.Fprintln(w)
		renderStandings(w, board.Standings)
	})
}
