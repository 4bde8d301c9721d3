package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/config"
	"github.com/redmonkez12/go-blog/internal/database"
	"github.com/redmonkez12/go-blog/internal/user"
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account without the email confirmation step",
		Args:  cobra.NoArgs,
		RunE:  runUserCreate,
	}

	// Flags for non-interactive mode (CI/scripting)
	createCmd.Flags().String("username", "", "Username (2-20 characters)")
	createCmd.Flags().String("email", "", "Email address")
	createCmd.Flags().String("password", "", "Password")

	userCmd.AddCommand(createCmd)
	return userCmd
}

// newAccount is the input of user create
type newAccount struct {
	Username string `validate:"required,min=2,max=20"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

var accountValidator = validator.New(validator.WithRequiredStructEnabled())

func (a *newAccount) validate() error {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.TrimSpace(a.Email)

	err := accountValidator.Struct(a)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, ", "))
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	acct := &newAccount{}
	acct.Username, _ = cmd.Flags().GetString("username")
	acct.Email, _ = cmd.Flags().GetString("email")
	acct.Password, _ = cmd.Flags().GetString("password")

	// Prompt for anything not given as a flag
	if acct.Username == "" || acct.Email == "" || acct.Password == "" {
		if err := promptAccount(acct); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	}

	if err := acct.validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck

	sqlDB, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	db := database.NewBunDB(sqlDB)
	defer db.Close()

	hash, err := auth.HashPassword(acct.Password)
	if err != nil {
		return err
	}

	created, err := user.NewRepository(db).Create(cmd.Context(), acct.Username, acct.Email, hash)
	switch {
	case errors.Is(err, user.ErrDuplicateUsername):
		return fmt.Errorf("username %q is taken", acct.Username)
	case errors.Is(err, user.ErrDuplicateEmail):
		return fmt.Errorf("email %q is taken", acct.Email)
	case err != nil:
		return err
	}

	logger.Info("account created from cli", "user_id", created.ID)

	printSuccess("Account created")
	printDetail("ID", created.ID.String())
	printDetail("Username", created.Username)
	printDetail("Email", created.Email)
	return nil
}

// promptAccount asks for the fields of acct that are still empty
func promptAccount(acct *newAccount) error {
	required := func(name string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", name)
			}
			return nil
		}
	}

	var fields []huh.Field
	if acct.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Description("2 to 20 characters, shown on posts").
			Value(&acct.Username).
			Validate(required("username")))
	}
	if acct.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&acct.Email).
			Validate(required("email")))
	}
	if acct.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&acct.Password).
			Validate(required("password")))
	}

	printTitle("New account")
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCatppuccin()).Run()
}
