/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var promoteStaff, promoteSuperuser bool

var userPromoteCmd = &cobra.Command{
	Use:   "promote USERNAME",
	Short: "Set the staff and superuser flags of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		user, err := c.users.Promote(cmd.Context(), args[0], promoteStaff, promoteSuperuser)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: staff=%t superuser=%t\n", user.Username, user.IsStaff, user.IsSuperuser)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userPromoteCmd)

	userPromoteCmd.Flags().BoolVar(&promoteStaff, "staff", false, "grant staff access")
	userPromoteCmd.Flags().BoolVar(&promoteSuperuser, "superuser", false, "grant superuser access")
}
