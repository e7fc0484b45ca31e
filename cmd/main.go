package main

import (
	"context"
	"fmt"
	"os"

	"github.com/obadakatsha-ayatgroup/domecare-app/cmd/bootstrap"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "domecare",
		Short: "DOME Care healthcare booking API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".env", "path to the .env configuration file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))
	rootCmd.AddCommand(adminCmd(&configPath))
	rootCmd.AddCommand(medicinesCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func runServer(configPath string) error {
	app, err := bootstrap.New(configPath)
	if err != nil {
		logrus.Errorf("Failed to initialize application: %v", err)
		return err
	}

	app.Run()
	return nil
}

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(*configPath, func(m *database.Migrator) error {
				return m.Up()
			})
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(*configPath, func(m *database.Migrator) error {
				return m.Down(steps)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(*configPath, func(m *database.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", v, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

func withMigrator(configPath string, fn func(m *database.Migrator) error) error {
	app, err := bootstrap.Load(configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	m, err := database.NewMigrator(app.DB)
	if err != nil {
		return err
	}
	return fn(m)
}

func adminCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	var req dto.CreateAdminRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Validator.Validate(&req); err != nil {
				for field, msg := range app.Validator.FormatValidationErrors(err) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
				}
				return fmt.Errorf("invalid administrator details")
			}

			user, err := app.AuthUsecase.CreateAdmin(context.Background(), &req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (%s)\n", req.Email, user.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	createCmd.Flags().StringVar(&req.Email, "email", "", "login email")
	createCmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	createCmd.MarkFlagRequired("email")
	createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}

func medicinesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "medicines",
		Short: "Manage the medicine catalog",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert medicines from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			app, err := bootstrap.New(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.AdminUsecase.ImportMedicines(context.Background(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d medicines\n", n)
			return nil
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "path to a JSON array of medicines")
	importCmd.MarkFlagRequired("file")

	cmd.AddCommand(importCmd)
	return cmd
}
