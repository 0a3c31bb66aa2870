package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"quizzz-client/internal/domain"
)

func newCommunityCmd(opts *globalOptions) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "community",
		Short: "List, create, join and leave communities",
	}
	cmd.PersistentFlags().Int64Var(&userID, "user", 0, "current user id (overrides api.user_id)")
	cmd.AddCommand(
		communityListCmd(opts, &userID),
		communityCreateCmd(opts),
		communityJoinCmd(opts),
		communityLeaveCmd(opts, &userID),
	)
	return cmd
}

func communityListCmd(opts *globalOptions, userID *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the communities you belong to",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, _ []string) error {
			memberships, err := rt.communities(*userID).List(ctx)
			if err != nil {
				return err
			}
			return rt.render(memberships, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tADMIN\tAPPROVED")
				for _, m := range memberships {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.Community.ID, m.Community.Name, yesNo(m.IsAdmin), yesNo(m.IsApproved))
				}
			})
		}),
	}
}

func communityCreateCmd(opts *globalOptions) *cobra.Command {
	var in domain.CommunityCreate
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a community and become its admin",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			in.Name = args[0]
			service := rt.communities(0)
			m, err := service.Create(ctx, in)
			if err != nil {
				reportFailure(rt, service.FormState())
				return err
			}
			return renderMembership(rt, m)
		}),
	}
	cmd.Flags().StringVar(&in.Password, "password", "", "password members need to join")
	cmd.Flags().BoolVar(&in.ApprovalRequired, "approval", false, "require admin approval of new members")
	cmd.Flags().IntVar(&in.MaxMembers, "max-members", 0, "member limit (backend default when 0)")
	return cmd
}

func communityJoinCmd(opts *globalOptions) *cobra.Command {
	var in domain.JoinCommunity
	cmd := &cobra.Command{
		Use:   "join NAME",
		Short: "Join a community by name",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			in.Name = args[0]
			service := rt.communities(0)
			m, err := service.Join(ctx, in)
			if err != nil {
				reportFailure(rt, service.FormState())
				return err
			}
			return renderMembership(rt, m)
		}),
	}
	cmd.Flags().StringVar(&in.Password, "password", "", "community password")
	return cmd
}

func communityLeaveCmd(opts *globalOptions, userID *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "leave COMMUNITY",
		Short: "Leave a community",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, args []string) error {
			ids, err := parseIDs(args, "community")
			if err != nil {
				return err
			}
			return rt.communities(*userID).Leave(ctx, ids[0])
		}),
	}
}

func renderMembership(rt *runtime, m domain.Membership) error {
	return rt.render(m, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "community %d\t%s\tadmin=%s\tapproved=%s\n", m.Community.ID, m.Community.Name, yesNo(m.IsAdmin), yesNo(m.IsApproved))
	})
}
