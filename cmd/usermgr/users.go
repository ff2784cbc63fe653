package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-while/go-pugsite/internal/database"
	"github.com/go-while/go-pugsite/internal/models"
)

const minPasswordLength = 6

func newCreateUserCommand(opts *rootOptions) *cobra.Command {
	var name, email, username string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user (password is prompted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordReader("Enter password: ")
			if err != nil {
				return err
			}
			confirm, err := passwordReader("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}
			if len(password) < minPasswordLength {
				return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
			}

			return opts.withDB(cmd, func(ctx context.Context, db *database.Database) error {
				user, err := db.InsertUser(ctx, name, email, username, password)
				if err != nil {
					if errors.Is(err, database.ErrAlreadyExists) {
						return fmt.Errorf("email %q or username %q already registered", email, username)
					}
					return fmt.Errorf("failed to create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User '%s' created (ID: %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	for _, f := range []string{"name", "email", "username"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newListUsersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDB(cmd, func(ctx context.Context, db *database.Database) error {
				users, err := db.ListUsers(ctx)
				if err != nil {
					return err
				}
				if users == nil {
					users = []*models.User{}
				}
				return opts.render(cmd.OutOrStdout(), users, func(w *tabwriter.Writer) {
					if len(users) == 0 {
						fmt.Fprintln(w, "No users found")
						return
					}
					fmt.Fprintln(w, "ID\tUsername\tEmail\tName")
					for _, u := range users {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Name)
					}
				})
			})
		},
	}
}
