package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-while/go-pugsite/internal/database"
	"github.com/go-while/go-pugsite/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

func newListSubscribersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-subscribers",
		Short: "List newsletter subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDB(cmd, func(ctx context.Context, db *database.Database) error {
				subs, err := db.ListSubscribers(ctx)
				if err != nil {
					return err
				}
				if subs == nil {
					subs = []*models.NewsletterSubscriber{}
				}
				total, err := db.CountSubscribers(ctx, "")
				if err != nil {
					return err
				}
				return opts.render(cmd.OutOrStdout(), subs, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "ID\tEmail\tSubscribed")
					for _, s := range subs {
						fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Email, s.CreatedAt.Format(timeLayout))
					}
					fmt.Fprintf(w, "%d subscribers\n", total)
				})
			})
		},
	}
}

func newListMessagesCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list-messages",
		Short: "List contact messages, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDB(cmd, func(ctx context.Context, db *database.Database) error {
				msgs, err := db.ListMessages(ctx, limit)
				if err != nil {
					return err
				}
				if msgs == nil {
					msgs = []*models.ContactMessage{}
				}
				return opts.render(cmd.OutOrStdout(), msgs, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "ID\tReceived\tFrom\tSubject")
					for _, m := range msgs {
						fmt.Fprintf(w, "%d\t%s\t%s <%s>\t%s\n", m.ID, m.CreatedAt.Format(timeLayout), m.Name, m.Email, m.Subject)
					}
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of messages (0 = all)")
	return cmd
}
