package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newsletter-dev/newsletter/backend/internal/storage/pg"
	"github.com/newsletter-dev/newsletter/shared/crypto"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/logger"
)

func newMigrateCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.loadConfig(); err != nil {
				return err
			}
			return withStorage(cmd.Context(), rt, func(s *pg.Storage) error {
				if err := s.Migrate(cmd.Context()); err != nil {
					return err
				}
				logger.Log.Info("schema applied")
				return nil
			})
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print an Argon2id PHC hash of the password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := crypto.HashPassword(password, crypto.DefaultParams())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newCreateUserCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create a publisher; the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := crypto.HashPassword(password, crypto.DefaultParams())
			if err != nil {
				return err
			}
			if err := rt.loadConfig(); err != nil {
				return err
			}
			return withStorage(cmd.Context(), rt, func(s *pg.Storage) error {
				id, err := s.SaveUser(cmd.Context(), args[0], domain.NewSecret(hash))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func withStorage(ctx context.Context, rt *runtimeState, fn func(*pg.Storage) error) error {
	s, err := pg.New(ctx, rt.cfg.Private.Pg)
	if err != nil {
		return err
	}
	defer s.Cleanup()
	return fn(s)
}

// readPassword takes the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	return password, nil
}
