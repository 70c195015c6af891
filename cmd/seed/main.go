package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"grievanceportal/internal/catalog"
	"grievanceportal/internal/config"
	"grievanceportal/internal/logging"
	"grievanceportal/internal/model"
	"grievanceportal/internal/repository"
	"grievanceportal/internal/service"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	staffName     string
	staffEmail    string
	staffPassword string
	staffType     string
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Provision data for a grievance portal deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// staffCmd creates a dashboard account
var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Create a staff account for the dashboard",
	Long: `Create a staff account in MongoDB so the dashboard can log in.

The unique email index is created first. An existing account with the
same email is left untouched.`,
	RunE: runStaff,
}

// catalogCmd validates a catalog file before it is deployed
var catalogCmd = &cobra.Command{
	Use:   "check-catalog [path]",
	Short: "Validate a question catalog YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheckCatalog,
}

func init() {
	staffCmd.Flags().StringVar(&staffName, "name", "Department Staff", "display name")
	staffCmd.Flags().StringVar(&staffEmail, "email", "", "login email (required)")
	staffCmd.Flags().StringVar(&staffPassword, "password", "", "login password (required)")
	staffCmd.Flags().StringVar(&staffType, "type", "staff", "user type")
	_ = staffCmd.MarkFlagRequired("email")
	_ = staffCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(staffCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runStaff(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	users := repository.NewUserRepo(client.Database(cfg.MongoDatabase))
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	auth := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, logger.Named("auth"))
	resp, err := auth.Signup(ctx, &model.SignupRequest{
		Name:     staffName,
		Email:    staffEmail,
		Password: staffPassword,
		UserType: staffType,
	})
	if errors.Is(err, service.ErrDuplicateEmail) {
		logger.Info("staff account already exists", zap.String("email", staffEmail))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("staff account created",
		zap.String("userId", resp.User.ID),
		zap.String("userType", resp.User.UserType))
	return nil
}

func runCheckCatalog(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, d := range cat.Departments() {
		fmt.Fprintf(out, "%-16s %2d questions\n", d.ID, d.Len())
	}
	fmt.Fprintf(out, "languages: %v\n", cat.Languages())
	return nil
}
