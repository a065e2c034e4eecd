package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/server"
)

func serveCommand() *cobra.Command {
	var (
		port     string
		inMemory bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the blog JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if inMemory {
				cfg.InMemory = true
			}
			if err = cfg.Validate(); err != nil {
				return err
			}

			logger := slog.Default()
			stores, err := openStores(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := stores.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			hasher := auth.NewBcryptHasher(cfg.BcryptCost)
			verifier, err := auth.NewVerifier(stores.Users, hasher)
			if err != nil {
				return err
			}

			handler := server.NewRouter(server.Deps{
				Posts:          stores.Posts,
				Users:          stores.Users,
				Hasher:         hasher,
				Verifier:       verifier,
				Logger:         logger,
				AllowedOrigins: cfg.AllowedOrigins,
			})

			srv, err := server.Start(cmd.Context(), cfg.Addr(), handler, cfg.ShutdownTimeout, logger)
			if err != nil {
				return err
			}
			return srv.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port, overrides PORT")
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep all data in process memory instead of the databases")
	return cmd
}
