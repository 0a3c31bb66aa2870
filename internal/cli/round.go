package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/lifecycle"
)

func newRoundCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Schedule tournament rounds",
	}
	cmd.AddCommand(
		roundListCmd(opts),
		roundShowCmd(opts),
		roundCreateCmd(opts),
		roundUpdateCmd(opts),
		roundDeleteCmd(opts),
		roundPoolCmd(opts),
	)
	return cmd
}

func roundListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list COMMUNITY TOURNAMENT",
		Short: "List a tournament's rounds",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "tournament")
			if err != nil {
				return err
			}
			rounds, err := rt.roundScheduler().Rounds(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			return rt.render(rounds, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tQUIZ\tSTART\tFINISH")
				for _, r := range rounds {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Quiz.Name, r.StartTime.Local().Format(time.RFC3339), r.FinishTime.Local().Format(time.RFC3339))
				}
			})
		}),
	}
}

func roundShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show COMMUNITY ROUND",
		Short: "Show a round with its status and what you may do",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "round")
			if err != nil {
				return err
			}
			round, err := rt.roundScheduler().Round(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			if err := lifecycle.ValidateWindow(round.StartTime, round.FinishTime); err != nil {
				return err
			}
			now := time.Now()
			status := lifecycle.Classify(round, now)
			return rt.render(round, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "round\t%d\n", round.ID)
				fmt.Fprintf(w, "quiz\t%s\n", round.Quiz.Name)
				fmt.Fprintf(w, "window\t%s .. %s\n", round.StartTime.Local().Format(time.RFC3339), round.FinishTime.Local().Format(time.RFC3339))
				fmt.Fprintf(w, "status\t%s\n", status)
				fmt.Fprintf(w, "action\t%s\n", lifecycle.PermittedAction(round, now))
				if status == lifecycle.StatusCurrent {
					fmt.Fprintf(w, "time left\t%s\n", lifecycle.TimeLeft(round.FinishTime, now))
				}
			})
		}),
	}
}

type roundFlags struct {
	start  string
	finish string
	quiz   int64
}

func (f *roundFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "start time (RFC 3339)")
	cmd.Flags().StringVar(&f.finish, "finish", "", "finish time (RFC 3339)")
	cmd.Flags().Int64Var(&f.quiz, "quiz", 0, "id of a finalized quiz from the pool")
}

func (f *roundFlags) input() (domain.RoundInput, error) {
	var in domain.RoundInput
	var err error
	if f.start != "" {
		if in.StartTime, err = time.Parse(time.RFC3339, f.start); err != nil {
			return in, fmt.Errorf("start: %w", err)
		}
	}
	if f.finish != "" {
		if in.FinishTime, err = time.Parse(time.RFC3339, f.finish); err != nil {
			return in, fmt.Errorf("finish: %w", err)
		}
	}
	in.Quiz = f.quiz
	return in, nil
}

func roundCreateCmd(opts *globalOptions) *cobra.Command {
	var flags roundFlags
	cmd := &cobra.Command{
		Use:   "create COMMUNITY TOURNAMENT",
		Short: "Schedule a quiz as a new round",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "tournament")
			if err != nil {
				return err
			}
			in, err := flags.input()
			if err != nil {
				return err
			}
			scheduler := rt.roundScheduler()
			round, err := scheduler.Create(ctx, ids[0], ids[1], in)
			if err != nil {
				reportFailure(rt, scheduler.FormState())
				return err
			}
			return rt.render(round, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "created round %d\n", round.ID)
			})
		}),
	}
	flags.bind(cmd)
	return cmd
}

func roundUpdateCmd(opts *globalOptions) *cobra.Command {
	var flags roundFlags
	cmd := &cobra.Command{
		Use:   "update COMMUNITY ROUND",
		Short: "Change a round that has not finished",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "round")
			if err != nil {
				return err
			}
			in, err := flags.input()
			if err != nil {
				return err
			}
			scheduler := rt.roundScheduler()
			round, err := scheduler.Update(ctx, ids[0], ids[1], in)
			if err != nil {
				reportFailure(rt, scheduler.FormState())
				return err
			}
			return rt.render(round, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "updated round %d\n", round.ID)
			})
		}),
	}
	flags.bind(cmd)
	return cmd
}

func roundDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete COMMUNITY ROUND",
		Short: "Delete a round",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "round")
			if err != nil {
				return err
			}
			return rt.roundScheduler().Delete(ctx, ids[0], ids[1])
		}),
	}
}

func roundPoolCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pool COMMUNITY",
		Short: "List finalized quizzes that can be scheduled",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community")
			if err != nil {
				return err
			}
			pool, err := rt.roundScheduler().Pool(ctx, ids[0])
			if err != nil {
				return err
			}
			return rt.render(pool, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tAUTHOR")
				for _, q := range pool {
					author := ""
					if q.User != nil {
						author = q.User.Username
					}
					fmt.Fprintf(w, "%d\t%s\t%s\n", q.ID, q.Name, author)
				}
			})
		}),
	}
}
