package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/user"
	"github.com/lobitocorner/lobito/core/utils"
)

// cliRoles maps --role values to stored roles.
var cliRoles = map[string]string{
	"admin":   user.RoleAdmin,
	"owner":   user.RoleAdminOwner,
	"teacher": user.RoleTeacher,
	"student": user.RoleStudent,
}

func cliRoleNames() string {
	names := make([]string, 0, len(cliRoles))
	for name := range cliRoles {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var (
		name, uname, email string
		roles              []string
	)
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the one owning the username or email",
		Long:  "Create an active user, or reactivate and update the one owning the username or email.\nThe password is prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := promptPassword(cmd, "Enter password:")
			if err != nil {
				return err
			}
			usr, created, err := cli.addUser(cmd.Context(), name, uname, email, pwd, roles)
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s %s (%s)\n", usr.Username, verb, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "the user's full name")
	cmd.Flags().StringVar(&uname, "username", "", "the user's username")
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "roles to grant, any of: "+cliRoleNames())
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, roleNames []string) (user.User, bool, error) {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if !utils.IsValidEmail(email) {
		return user.User{}, false, errors.Errorf("invalid email %q", email)
	}
	roles := make([]string, 0, len(roleNames))
	for _, rn := range roleNames {
		role, ok := cliRoles[strings.ToLower(strings.TrimSpace(rn))]
		if !ok {
			return user.User{}, false, errors.Errorf("unknown role %q; use one of: %s", rn, cliRoleNames())
		}
		roles = append(roles, role)
	}

	now := nowFunc()
	created := false
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if errors.Cause(err) == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: email})
	}
	switch {
	case errors.Cause(err) == user.ErrNotFound:
		created = true
		usr = user.User{ID: uuid.NewString(), Username: uname, Email: email, CreatedAt: now}
	case err != nil:
		return user.User{}, false, errors.Wrap(err, "finding user")
	}

	if name = core.CleanString(name); name != "" {
		usr.Name = name
	} else if usr.Name == "" {
		usr.Name = uname
	}
	if len(roles) > 0 {
		usr.Roles = roles
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return user.User{}, false, errors.Wrap(err, "setting password")
	}

	if created {
		usr, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		usr, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	if err != nil {
		return user.User{}, false, errors.Wrap(err, fmt.Sprintf("saving user %s", uname))
	}
	return usr, created, nil
}
