package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flightdeck-ai/flightdeck/internal/config"
	"github.com/flightdeck-ai/flightdeck/internal/database"
	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/repository"
	"github.com/flightdeck-ai/flightdeck/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create, list and deactivate user accounts",
	}

	cmd.AddCommand(UserCreateCmd())
	cmd.AddCommand(UserListCmd())
	cmd.AddCommand(UserSetActiveCmd())

	return cmd
}

func UserCreateCmd() *cobra.Command {
	var (
		name     string
		password string
		role     string
		license  string
	)

	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a new user account",
		Long:  "Create a new user account with the specified email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runUserCreate(args[0], name, password, role, license, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Full name of the user")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", "pilot", "Role (pilot or admin)")
	cmd.Flags().StringVar(&license, "license", "", "Pilot license number")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runUserCreate(email, name, password, role, license, outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	authSvc := service.NewAuthService(userRepo, "")

	user, err := authSvc.Register(ctx, service.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.UserRole(role),
		License:  license,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("User created: %s <%s> role=%s (%s)\n", user.Name, user.Email, user.Role, user.ID)
	}

	return nil
}

func UserListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all user accounts",
		Long:  "List all user accounts in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runUserList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runUserList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	users, err := userRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, 0, len(users))
		for _, u := range users {
			data = append(data, map[string]interface{}{
				"id":          u.ID,
				"name":        u.Name,
				"email":       u.Email,
				"role":        u.Role,
				"active":      u.Active,
				"query_count": u.QueryCount,
				"created_at":  u.CreatedAt,
			})
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		for _, u := range users {
			status := "active"
			if !u.Active {
				status = "inactive"
			}
			fmt.Printf("%s  %-30s %-10s %-8s %s\n", u.ID, u.Email, u.Role, status, u.Name)
		}
	}

	return nil
}

func UserSetActiveCmd() *cobra.Command {
	var deactivate bool

	cmd := &cobra.Command{
		Use:   "set-active <user-id>",
		Short: "Activate or deactivate a user account",
		Long:  "Activate a user account, or deactivate it with --deactivate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserSetActive(args[0], !deactivate)
		},
	}

	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "Deactivate the account instead of activating it")

	return cmd
}

func runUserSetActive(id string, active bool) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	if err := userRepo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	if active {
		fmt.Printf("User %s activated\n", id)
	} else {
		fmt.Printf("User %s deactivated\n", id)
	}
	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return pool, nil
}
