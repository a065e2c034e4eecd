package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/store"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userListCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	var first, last string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create user",
		Long: "Creates a user entry for the provided username and password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			logger := slog.Default()

			name := strings.TrimSpace(args[0])
			if name == "" {
				return errors.New("username must not be empty")
			}
			passwd, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimSpace(string(passwd))
			switch {
			case password == "":
				return errors.New("password must not be empty")
			case len(password) > auth.MaxPasswordBytes:
				return fmt.Errorf("password must be at most %d bytes", auth.MaxPasswordBytes)
			}

			stores, err := openStores(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := stores.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			hash, err := auth.NewBcryptHasher(cfg.BcryptCost).Hash(password)
			if err != nil {
				return err
			}
			user, err := stores.Users.CreateUser(cmd.Context(), models.User{
				Username:     name,
				PasswordHash: hash,
				FirstName:    strings.TrimSpace(first),
				LastName:     strings.TrimSpace(last),
			})
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("username %q already taken", name)
			}
			if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user", slog.String("name", user.Username))
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	return cmd
}

func userListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			stores, err := openStores(cmd.Context(), cfg, slog.Default())
			if err != nil {
				return err
			}
			defer func() {
				if err := stores.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			users, err := stores.Users.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, u := range users {
				if _, err = fmt.Fprintf(out, "%s\t%s\n", u.Username, u.FullName()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
