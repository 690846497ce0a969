package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/spf13/cobra"
)

// userStore is the part of the user repository admin bootstrap needs
type userStore interface {
	FindByEmail(ctx context.Context, email string) (*identity.User, error)
	Create(ctx context.Context, user *identity.User) error
	Update(ctx context.Context, user *identity.User) error
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	var name, email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator, or promote an existing account",
		Long: `Create an administrator account with a password.

If an account with the email already exists it is promoted to admin and,
when --password is given, its password is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			db, repos, err := e.openRepos(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			user, created, err := ensureAdmin(cmd.Context(), repos.Users, name, email, password)
			if err != nil {
				return err
			}
			if created {
				success(cmd, "created admin %s (%s)", user.Email, user.ID)
			} else {
				success(cmd, "promoted %s (%s) to admin", user.Email, user.ID)
			}
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "Store Admin", "Display name")
	create.Flags().StringVar(&email, "email", "", "Email address (required)")
	create.Flags().StringVar(&password, "password", "", "Password, at least 8 characters")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}

// ensureAdmin creates the account or promotes the existing one. It reports
// whether a new account was created.
func ensureAdmin(ctx context.Context, users userStore, name, email, password string) (*identity.User, bool, error) {
	email = identity.NormalizeEmail(email)

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if password != "" {
			if err := existing.SetPassword(password); err != nil {
				return nil, false, err
			}
		}
		if err := existing.SetRole(identity.RoleAdmin); err != nil {
			return nil, false, err
		}
		if existing.Status == identity.UserStatusBlocked {
			if err := existing.Unblock(); err != nil {
				return nil, false, err
			}
		}
		if err := users.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to update %s: %w", email, err)
		}
		return existing, false, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, false, err
	}

	if password == "" {
		return nil, false, errors.New("--password is required for a new account")
	}
	user, err := identity.NewUser(name, email, password)
	if err != nil {
		return nil, false, err
	}
	if err := user.SetRole(identity.RoleAdmin); err != nil {
		return nil, false, err
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create %s: %w", email, err)
	}
	return user, true, nil
}
