package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"quizzz-client/internal/app"
	"quizzz-client/internal/domain"
)

func newQuizCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Author quizzes",
	}
	cmd.AddCommand(
		quizListCmd(opts),
		quizCreateCmd(opts),
		quizPullCmd(opts),
		quizShowCmd(opts),
		quizEditCmd(opts, "set-name", "QUIZ NAME", "Set the quiz name", 0, func(e *app.QuizEditor, d *app.Draft, _ []int64, text string) error {
			return e.SetName(d, text)
		}),
		quizEditCmd(opts, "set-description", "QUIZ TEXT", "Set the quiz description", 0, func(e *app.QuizEditor, d *app.Draft, _ []int64, text string) error {
			return e.SetDescription(d, text)
		}),
		quizEditCmd(opts, "set-intro", "QUIZ TEXT", "Set the introduction shown before playing", 0, func(e *app.QuizEditor, d *app.Draft, _ []int64, text string) error {
			return e.SetIntroduction(d, text)
		}),
		quizEditCmd(opts, "set-question", "QUIZ QUESTION TEXT", "Set a question's text", 1, func(e *app.QuizEditor, d *app.Draft, ids []int64, text string) error {
			return e.SetQuestionText(d, domain.QuestionID(ids[0]), text)
		}),
		quizEditCmd(opts, "set-explanation", "QUIZ QUESTION TEXT", "Set a question's explanation", 1, func(e *app.QuizEditor, d *app.Draft, ids []int64, text string) error {
			return e.SetQuestionExplanation(d, domain.QuestionID(ids[0]), text)
		}),
		quizEditCmd(opts, "set-option", "QUIZ OPTION TEXT", "Set an option's text", 1, func(e *app.QuizEditor, d *app.Draft, ids []int64, text string) error {
			return e.SetOptionText(d, domain.OptionID(ids[0]), text)
		}),
		quizSetCorrectCmd(opts),
		quizAutofillCmd(opts),
		quizValidateCmd(opts),
		quizPushCmd(opts),
		quizDeleteCmd(opts),
		quizDiscardCmd(opts),
	)
	return cmd
}

func quizListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list COMMUNITY",
		Short: "List your quizzes in a community",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community")
			if err != nil {
				return err
			}
			quizzes, err := rt.quizEditor().List(ctx, ids[0])
			if err != nil {
				return err
			}
			return rt.render(quizzes, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tFINALIZED\tUPDATED")
				for _, q := range quizzes {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", q.ID, q.Name, yesNo(q.IsFinalized), q.TimeUpdated.Format("2006-01-02 15:04"))
				}
			})
		}),
	}
}

func quizCreateCmd(opts *globalOptions) *cobra.Command {
	var in domain.QuizCreate
	cmd := &cobra.Command{
		Use:   "create COMMUNITY",
		Short: "Create an empty quiz",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community")
			if err != nil {
				return err
			}
			quiz, err := rt.quizEditor().Create(ctx, ids[0], in)
			if err != nil {
				return err
			}
			return rt.render(quiz, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "created quiz %d\t%s\n", quiz.ID, quiz.Name)
			})
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "quiz name")
	cmd.Flags().StringVar(&in.Description, "description", "", "quiz description")
	return cmd
}

func quizPullCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull COMMUNITY QUIZ",
		Short: "Fetch a quiz and start editing it locally",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "quiz")
			if err != nil {
				return err
			}
			d, err := rt.quizEditor().Pull(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			return renderDraft(rt, d)
		}),
	}
}

func quizShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show QUIZ",
		Short: "Show the local draft of a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "quiz")
			if err != nil {
				return err
			}
			d, err := rt.quizEditor().Open(ctx, ids[0])
			if err != nil {
				return err
			}
			return renderDraft(rt, d)
		}),
	}
}

type draftEdit func(e *app.QuizEditor, d *app.Draft, ids []int64, text string) error

// quizEditCmd builds a command taking QUIZ, numIDs further ids and a text.
func quizEditCmd(opts *globalOptions, name, argsUsage, short string, numIDs int, edit draftEdit) *cobra.Command {
	return &cobra.Command{
		Use:   name + " " + argsUsage,
		Short: short,
		Args:  cobra.ExactArgs(numIDs + 2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			quizID, err := parseID(args[0], "quiz")
			if err != nil {
				return err
			}
			ids := make([]int64, 0, numIDs)
			for _, arg := range args[1 : numIDs+1] {
				id, err := parseID(arg, "id")
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			editor := rt.quizEditor()
			d, err := editor.Open(ctx, quizID)
			if err != nil {
				return err
			}
			if err := edit(editor, d, ids, args[numIDs+1]); err != nil {
				return err
			}
			return editor.Persist(ctx, d)
		}),
	}
}

func quizSetCorrectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-correct QUIZ OPTION",
		Short: "Mark the only correct option of its question",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "quiz", "option")
			if err != nil {
				return err
			}
			editor := rt.quizEditor()
			d, err := editor.Open(ctx, ids[0])
			if err != nil {
				return err
			}
			if err := editor.SetCorrectOption(d, domain.OptionID(ids[1])); err != nil {
				return err
			}
			return editor.Persist(ctx, d)
		}),
	}
}

func quizAutofillCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "autofill QUIZ",
		Short: "Fill the draft with random Open Trivia DB questions",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "quiz")
			if err != nil {
				return err
			}
			editor := rt.quizEditor()
			d, err := editor.Open(ctx, ids[0])
			if err != nil {
				return err
			}
			if err := editor.Autofill(ctx, d, rt.trivia()); err != nil {
				return err
			}
			if err := editor.Persist(ctx, d); err != nil {
				return err
			}
			return renderDraft(rt, d)
		}),
	}
}

func quizValidateCmd(opts *globalOptions) *cobra.Command {
	var finalize bool
	cmd := &cobra.Command{
		Use:   "validate QUIZ",
		Short: "Check the draft against the backend's rules without sending it",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "quiz")
			if err != nil {
				return err
			}
			editor := rt.quizEditor()
			d, err := editor.Open(ctx, ids[0])
			if err != nil {
				return err
			}
			fe := editor.Validate(d, finalize)
			if fe == nil {
				fmt.Fprintln(rt.out, "ok")
				return nil
			}
			if err := rt.render(fe, func(w *tabwriter.Writer) {
				flat := fe.Flatten()
				for _, path := range sortedPaths(flat) {
					for _, msg := range flat[path] {
						fmt.Fprintf(w, "%s\t%s\n", path, msg)
					}
				}
			}); err != nil {
				return err
			}
			return fmt.Errorf("quiz %d: draft is not valid", d.QuizID)
		}),
	}
	cmd.Flags().BoolVar(&finalize, "finalize", false, "apply the stricter rules for finalizing")
	return cmd
}

func quizPushCmd(opts *globalOptions) *cobra.Command {
	var finalize bool
	cmd := &cobra.Command{
		Use:   "push QUIZ",
		Short: "Save the draft to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "quiz")
			if err != nil {
				return err
			}
			editor := rt.quizEditor()
			d, err := editor.Open(ctx, ids[0])
			if err != nil {
				return err
			}
			if err := editor.Save(ctx, d, finalize); err != nil {
				reportFailure(rt, d.SaveState())
				return err
			}
			return renderDraft(rt, d)
		}),
	}
	cmd.Flags().BoolVar(&finalize, "finalize", false, "submit the quiz to the pool (it becomes read-only)")
	return cmd
}

func quizDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete COMMUNITY QUIZ",
		Short: "Delete a quiz",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community", "quiz")
			if err != nil {
				return err
			}
			return rt.quizEditor().Delete(ctx, ids[0], ids[1])
		}),
	}
}

func quizDiscardCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "discard QUIZ",
		Short: "Drop local edits of a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "quiz")
			if err != nil {
				return err
			}
			return rt.quizEditor().Discard(ctx, ids[0])
		}),
	}
}

type draftView struct {
	CommunityID  int64             `json:"community_id"`
	QuizID       int64             `json:"quiz_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Introduction string            `json:"introduction"`
	IsFinalized  bool              `json:"is_finalized"`
	Questions    []domain.Question `json:"questions"`
}

func renderDraft(rt *runtime, d *app.Draft) error {
	view := draftView{
		CommunityID:  d.CommunityID,
		QuizID:       d.QuizID,
		Name:         d.Name,
		Description:  d.Description,
		Introduction: d.Introduction,
		IsFinalized:  d.IsFinalized,
		Questions:    d.Store.ToWireFormat(),
	}
	return rt.render(view, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "quiz %d\t%s\n", view.QuizID, view.Name)
		fmt.Fprintf(w, "finalized\t%s\n", yesNo(view.IsFinalized))
		for i, q := range view.Questions {
			fmt.Fprintf(w, "\nQ%d [%d]\t%s\n", i+1, q.ID, q.Text)
			for _, o := range q.Options {
				mark := " "
				if o.IsCorrect {
					mark = "x"
				}
				fmt.Fprintf(w, "  (%s) [%d]\t%s\n", mark, o.ID, o.Text)
			}
		}
	})
}
