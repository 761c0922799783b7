package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/user"
	"github.com/lobitocorner/lobito/storage/database"
	sqlxrepos "github.com/lobitocorner/lobito/storage/database/sqlx"
)

// mockable
var (
	readPasswordFunc = term.ReadPassword
	openDBFunc       = database.Open
	nowFunc          = func() time.Time { return time.Now().UTC() }
)

var errEmptyPassword = errors.New("password cannot be empty")

// commands annotated with noDB never touch the database
const noDB = "nodb"

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	db      *sqlx.DB
	usrRepo user.Repository
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         core.Meta.Name + " administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := cmd.Annotations[noDB]; ok {
				return nil
			}
			return cli.connect()
		},
	}
	root.AddCommand(
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		cli.listUsersCmd(),
		cli.migrateCmd(),
		cli.checkEmailCmd(),
	)
	return root
}

func (cli *commandLine) connect() error {
	if cli.db != nil {
		return nil
	}
	db, err := openDBFunc(cli.conf)
	if err != nil {
		return errors.Wrap(err, "connecting to database")
	}
	cli.db = db
	cli.usrRepo = sqlxrepos.NewUserRepository(db)
	return nil
}

func (cli *commandLine) close() {
	if cli.db == nil {
		return
	}
	if err := cli.db.Close(); err != nil {
		cli.logger.Error(fmt.Sprintf("closing database: %v", err), err)
	}
	cli.db = nil
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}
