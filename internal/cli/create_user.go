package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/users"
)

// CreateUserCommand creates a local account without going through the API,
// e.g. to bootstrap the first user before AUTH_MODE=local is switched on.
type CreateUserCommand struct {
	Username      string
	Email         string
	Password      string
	DatabasePath  string
	GenerateToken bool

	cfg *config.Config
	out io.Writer
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username, 3-50 letters, digits, '_' or '-' (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("BOOKSHELF_PASSWORD"), "Password, at least 12 characters (or BOOKSHELF_PASSWORD)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")
	fs.BoolVar(&cmd.GenerateToken, "token", false, "Also issue an API token and print it")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a local user account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -email alice@example.com -password 'correct horse battery'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  BOOKSHELF_PASSWORD=... %s create-user -username alice -email alice@example.com -token\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username, email and password are required")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	dbCfg := cmd.cfg.Database
	if cmd.DatabasePath != "" {
		dbCfg.Path = cmd.DatabasePath
	}

	db, err := database.NewDatabase(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), cmd.cfg.Auth)

	user, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Fprintf(cmd.out, "Created user %q (id %d)\n", user.Username, user.ID)

	if cmd.GenerateToken {
		token, err := service.GenerateToken(user.ID)
		if err != nil {
			return fmt.Errorf("user created but token generation failed: %w", err)
		}
		fmt.Fprintf(cmd.out, "API token (shown once): %s\n", token)
	}
	return nil
}
