package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newChatCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read and post community chat messages",
	}
	cmd.AddCommand(chatListCmd(opts), chatPostCmd(opts))
	return cmd
}

func chatListCmd(opts *globalOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list COMMUNITY",
		Short: "Show a page of messages",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community")
			if err != nil {
				return err
			}
			chat, err := rt.client.ChatMessages(ctx, ids[0], page)
			if err != nil {
				return err
			}
			return rt.render(chat, func(w *tabwriter.Writer) {
				for _, m := range chat.Results {
					fmt.Fprintf(w, "%s\t%s\t%s\n", m.TimeCreated.Local().Format("2006-01-02 15:04"), m.User.Username, m.Text)
				}
				fmt.Fprintf(w, "page %d\t%d messages\n", page, chat.Count)
			})
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func chatPostCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "post COMMUNITY TEXT",
		Short: "Post a message",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community")
			if err != nil {
				return err
			}
			msg, err := rt.client.PostChatMessage(ctx, ids[0], args[1])
			if err != nil {
				return err
			}
			return rt.render(msg, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "posted message %d\n", msg.ID)
			})
		}),
	}
}
