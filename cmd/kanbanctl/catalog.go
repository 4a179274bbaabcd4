package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// openCatalog connects to the configured database and returns the catalog
// service the HTTP API uses for the same data. When REDIS_URL is set, writes
// invalidate the server's cached boards.
func openCatalog() (*service.CatalogService, error) {
	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		bc := cache.NewBoardCache(redis.NewClient(opts), cfg.BoardCacheTTL)
		if err := cache.RegisterInvalidation(db, bc); err != nil {
			return nil, fmt.Errorf("register cache invalidation: %w", err)
		}
	}
	return service.NewCatalogService(
		repository.NewColumnRepository(db),
		repository.NewLabelRepository(db),
		repository.NewTeamRepository(db),
		repository.NewUserRepository(db),
	), nil
}

func columnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Manage board columns",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List columns left to right",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			columns, err := catalog.ListColumns(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range columns {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\n", c.ID, c.Priority, c.Title)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <title> <priority>",
		Short: "Add a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("priority must be an integer: %w", err)
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			column, err := catalog.CreateColumn(cmd.Context(), args[0], priority)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created column %d %q\n", column.ID, column.Title)
			return nil
		},
	})
	return cmd
}

func teamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage teams",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create an empty team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			team, err := catalog.CreateTeam(cmd.Context(), args[0], 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created team %d %q\n", team.ID, team.Name)
			return nil
		},
	})
	return cmd
}

func labelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Manage labels and their owners",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			labels, err := catalog.ListLabels(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range labels {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", l.ID, l.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(ownershipCmd("assign", "Make a user an owner of a label", (*service.CatalogService).AssignLabel))
	cmd.AddCommand(ownershipCmd("unassign", "Remove a user from a label's owners", (*service.CatalogService).UnassignLabel))
	return cmd
}

func ownershipCmd(use, short string, apply func(*service.CatalogService, context.Context, string, uint) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username> <label-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			labelID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("label id must be a positive integer: %w", err)
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			if err := apply(catalog, cmd.Context(), args[0], uint(labelID)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sed label %d for %s\n", use, labelID, args[0])
			return nil
		},
	}
}
