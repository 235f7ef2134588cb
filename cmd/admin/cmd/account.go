package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/service"
)

func AccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and manage accounts",
	}

	accountCmd.AddCommand(&cobra.Command{
		Use:   "show <email|username>",
		Short: "Print an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := findAccount(cmd.Context(), a.AccountService, args[0])
			if err != nil {
				return err
			}
			printAccount(cmd.OutOrStdout(), account)
			return nil
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "deactivate <email|username>",
		Short: "Soft-delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccount(cmd, args[0], func(ctx context.Context, s *service.AccountService, account *model.Account) error {
				return s.Deactivate(ctx, account.ID)
			})
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "reactivate <email|username>",
		Short: "Restore a deactivated account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccount(cmd, args[0], func(ctx context.Context, s *service.AccountService, account *model.Account) error {
				return s.Reactivate(ctx, account.ID)
			})
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "role <email|username> <user|moderator|admin>",
		Short: "Set the role of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccount(cmd, args[0], func(ctx context.Context, s *service.AccountService, account *model.Account) error {
				return s.SetRole(ctx, account.ID, model.Role(args[1]))
			})
		},
	})

	return accountCmd
}

func withAccount(cmd *cobra.Command, ident string, fn func(context.Context, *service.AccountService, *model.Account) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := findAccount(cmd.Context(), a.AccountService, ident)
	if err != nil {
		return err
	}

	err = fn(cmd.Context(), a.AccountService, account)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cmd.Name(), account.Username)
	return nil
}

// findAccount treats arguments containing "@" as emails and anything else as a username.
func findAccount(ctx context.Context, s *service.AccountService, ident string) (*model.Account, error) {
	var (
		account *model.Account
		err     error
	)
	if strings.Contains(ident, "@") {
		account, err = s.ByEmail(ctx, ident)
	} else {
		account, err = s.ByUsername(ctx, ident)
	}
	if errors.Is(err, service.ErrAccountNotFound) {
		return nil, fmt.Errorf("no account matches %q", ident)
	}
	return account, err
}

func printAccount(w io.Writer, a *model.Account) {
	fmt.Fprintf(w, "id:          %s\n", a.ID)
	fmt.Fprintf(w, "username:    %s\n", a.Username)
	fmt.Fprintf(w, "email:       %s\n", a.Email)
	fmt.Fprintf(w, "role:        %s\n", a.Role)
	fmt.Fprintf(w, "active:      %t\n", a.IsActive)
	fmt.Fprintf(w, "created:     %s\n", a.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "updated:     %s\n", a.UpdatedAt.Format(time.RFC3339))
}
