package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lobitocorner/lobito/core/user"
	"github.com/lobitocorner/lobito/core/utils"
)

func (cli *commandLine) listUsersCmd() *cobra.Command {
	var (
		filter         user.QueryFilter
		roles          []string
		active, inactv bool
	)
	cmd := &cobra.Command{
		Use:   "listusers",
		Short: "List users, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, rn := range roles {
				role, ok := cliRoles[strings.ToLower(strings.TrimSpace(rn))]
				if !ok {
					return errors.Errorf("unknown role %q; use one of: %s", rn, cliRoleNames())
				}
				filter.Roles = append(filter.Roles, role)
			}
			switch {
			case active && inactv:
				return errors.New("--active and --inactive are mutually exclusive")
			case active || inactv:
				filter.IsActive = &active
			}
			return cli.listUsers(cmd.Context(), cmd.OutOrStdout(), filter)
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "match name, username or email")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "only users with any of these roles: "+cliRoleNames())
	cmd.Flags().BoolVar(&active, "active", false, "only active users")
	cmd.Flags().BoolVar(&inactv, "inactive", false, "only deactivated users")
	return cmd
}

func (cli *commandLine) listUsers(ctx context.Context, out io.Writer, filter user.QueryFilter) error {
	filter.Clean()
	users, err := cli.usrRepo.QueryUsers(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tEMAIL\tROLE\tACTIVE\tJOINED")
	for _, usr := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
			usr.Username, usr.Name, usr.Email, usr.RoleLabel(), usr.IsActive, utils.FormatDate(usr.CreatedAt))
	}
	if err = w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d user(s)\n", len(users))
	return nil
}
