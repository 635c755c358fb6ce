package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlimi/app"
)

type adminCreateOptions struct {
	Email    string
	Name     string
	Password string
}

func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newAdminCreateCommand(opts))
	return cmd
}

func newAdminCreateCommand(opts *RootOptions) *cobra.Command {
	in := &adminCreateOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an approved admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.Open(opts.cfg)
			if err != nil {
				return err
			}
			a, err := app.New(opts.cfg, db, opts.log)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Auth.CreateAdmin(cmd.Context(), in.Name, in.Email, in.Password)
			if err != nil {
				return err
			}
			opts.log.Info("admin created", zap.String("id", p.ID), zap.String("email", p.Email))
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
