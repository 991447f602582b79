/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bookclub/catalog/types"
)

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Manage authors",
}

var authorFirstName, authorLastName, authorBirthDate string

var authorCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an author",
	Long: `Create an author. Usage:

	catalog author create --first-name Nazim --last-name Hikmet --birth-date 1902-01-15
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		birthDate, err := types.ParseDate(authorBirthDate)
		if err != nil {
			return err
		}

		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		author, err := c.authors.Create(cmd.Context(), types.Author{
			FirstName: authorFirstName,
			LastName:  authorLastName,
			BirthDate: birthDate,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created author %d: %s\n", author.ID, author)
		return nil
	},
}

var authorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List authors",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		authors, err := c.authors.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tBIRTH DATE")
		for _, author := range authors {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", author.ID, author, author.BirthDate)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(authorCmd)
	authorCmd.AddCommand(authorCreateCmd)
	authorCmd.AddCommand(authorListCmd)

	authorCreateCmd.Flags().StringVar(&authorFirstName, "first-name", "", "first name")
	authorCreateCmd.Flags().StringVar(&authorLastName, "last-name", "", "last name")
	authorCreateCmd.Flags().StringVar(&authorBirthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
	_ = authorCreateCmd.MarkFlagRequired("first-name")
	_ = authorCreateCmd.MarkFlagRequired("last-name")
	_ = authorCreateCmd.MarkFlagRequired("birth-date")
}
