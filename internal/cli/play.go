package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"quizzz-client/internal/app"
	"quizzz-client/internal/domain"
)

func newPlayCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play rounds and review results",
	}
	cmd.AddCommand(
		playStartCmd(opts),
		playShowCmd(opts),
		playAnswerCmd(opts),
		playSubmitCmd(opts),
		playReviewCmd(opts),
	)
	return cmd
}

func playStartCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start COMMUNITY ROUND",
		Short: "Start playing a current round",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "round")
			if err != nil {
				return err
			}
			session, err := rt.plays().Start(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			return renderPlay(rt, session)
		}),
	}
}

func playShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ROUND",
		Short: "Show the started play with your answers so far",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "round")
			if err != nil {
				return err
			}
			session, err := rt.plays().Open(ctx, ids[0])
			if err != nil {
				return err
			}
			return renderPlay(rt, session)
		}),
	}
}

func playAnswerCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "answer ROUND QUESTION OPTION",
		Short: "Choose an option for a question",
		Args:  cobra.ExactArgs(3),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "round", "question", "option")
			if err != nil {
				return err
			}
			plays := rt.plays()
			session, err := plays.Open(ctx, ids[0])
			if err != nil {
				return err
			}
			return plays.Choose(ctx, session, domain.QuestionID(ids[1]), domain.OptionID(ids[2]))
		}),
	}
}

func playSubmitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit ROUND",
		Short: "Submit your answers",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "round")
			if err != nil {
				return err
			}
			plays := rt.plays()
			session, err := plays.Open(ctx, ids[0])
			if err != nil {
				return err
			}
			play, err := plays.Submit(ctx, session)
			if err != nil {
				reportFailure(rt, plays.SubmitState())
				return err
			}
			return rt.render(play, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "submitted\t%d of %d answered\n", len(play.Answers), len(session.Quiz.Questions))
				fmt.Fprintf(w, "time\t%s\n", play.ClientElapsed().Round(time.Second))
			})
		}),
	}
}

func playReviewCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "review COMMUNITY ROUND",
		Short: "Review a submitted play",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "round")
			if err != nil {
				return err
			}
			review, err := rt.plays().Review(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			return rt.render(review, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "result\t%d / %d\n", review.Result, review.Questions)
				fmt.Fprintf(w, "time\t%s\n", review.Elapsed.Round(time.Second))
				for i, item := range review.Items {
					mark := "wrong"
					switch {
					case item.Chosen == nil:
						mark = "skipped"
					case item.IsCorrect:
						mark = "correct"
					}
					fmt.Fprintf(w, "Q%d\t%s\t%s\n", i+1, item.Text, mark)
					if item.Explanation != "" {
						fmt.Fprintf(w, "\t%s\n", item.Explanation)
					}
				}
			})
		}),
	}
}

func renderPlay(rt *runtime, session *app.PlaySession) error {
	return rt.render(session, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "%s\n", session.Quiz.Name)
		if session.Quiz.Introduction != "" {
			fmt.Fprintf(w, "%s\n", session.Quiz.Introduction)
		}
		for i, q := range session.Quiz.Questions {
			fmt.Fprintf(w, "\nQ%d [%d]\t%s\n", i+1, q.ID, q.Text)
			chosen, answered := session.Answers[q.ID]
			for _, o := range q.Options {
				mark := " "
				if answered && chosen == o.ID {
					mark = "*"
				}
				fmt.Fprintf(w, "  (%s) [%d]\t%s\n", mark, o.ID, o.Text)
			}
		}
	})
}
