package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/backoffice/internal/auth"
)

// NewUsersCmd creates the users command group.
func NewUsersCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage back-office users",
	}

	var input auth.RegisterInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user with the given credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := d.openRegistrar(cmd.Context())
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").With("operation", "open user store").Wrap(err)
			}
			defer cleanup()

			user, err := svc.Register(cmd.Context(), input)
			if err != nil {
				return oops.Code("USER_CREATE_FAILED").With("email", input.Email).Wrap(err)
			}
			cmd.Printf("created user %s <%s>\n", user.ID, user.Email)
			return nil
		},
	}
	create.Flags().StringVar(&input.Name, "name", "", "display name")
	create.Flags().StringVar(&input.Email, "email", "", "login email")
	create.Flags().StringVar(&input.Password, "password", "", "initial password")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)
	return cmd
}
