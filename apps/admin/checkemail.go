package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lobitocorner/lobito/core"
)

var errEmailNotConfigured = errors.New("email service not configured")

func (cli *commandLine) checkEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "checkemail",
		Short:       "Report whether the email API key is usable",
		Long:        "Report whether the email API key is usable. The provider is not contacted.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noDB: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := core.CheckEmailConfig(cli.conf.Email.APIKey)
			fmt.Fprintln(cmd.OutOrStdout(), status.Message)
			if !status.Configured {
				return errEmailNotConfigured
			}
			return nil
		},
	}
}
