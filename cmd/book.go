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

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage books",
}

var (
	bookName        string
	bookReleaseDate string
	bookSummary     string
	bookAuthorIDs   []int
	bookSearch      string
)

var bookCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a book",
	Long: `Create a book credited to existing authors, in the given order. Usage:

	catalog book create --name "Human Landscapes" --release-date 1966-01-01 --author 1 --author 2
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		releaseDate, err := types.ParseDate(bookReleaseDate)
		if err != nil {
			return err
		}

		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		book, err := c.books.Create(cmd.Context(), types.Book{
			Name:        bookName,
			ReleaseDate: releaseDate,
			Summary:     bookSummary,
		}, bookAuthorIDs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created book %d: %s by %s\n", book.ID, book.Name, book.AuthorLine())
		return nil
	},
}

var bookUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update the name, release date or summary of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		book, err := c.books.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			book.Name = bookName
		}
		if flags.Changed("summary") {
			book.Summary = bookSummary
		}
		if flags.Changed("release-date") {
			if book.ReleaseDate, err = types.ParseDate(bookReleaseDate); err != nil {
				return err
			}
		}

		book, err = c.books.Update(cmd.Context(), book)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated book %d at %s\n", book.ID, book.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var bookDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a book and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.books.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted book %d\n", id)
		return nil
	},
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books, optionally filtered by name or author",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		books, err := c.books.List(cmd.Context(), bookSearch)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tAUTHORS\tRELEASED\tUPDATED")
		for _, book := range books {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				book.ID, book.Name, book.AuthorLine(), book.ReleaseDate, book.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(bookCmd)
	bookCmd.AddCommand(bookCreateCmd, bookUpdateCmd, bookDeleteCmd, bookListCmd)

	for _, c := range []*cobra.Command{bookCreateCmd, bookUpdateCmd} {
		c.Flags().StringVar(&bookName, "name", "", "book name")
		c.Flags().StringVar(&bookReleaseDate, "release-date", "", "release date (YYYY-MM-DD)")
		c.Flags().StringVar(&bookSummary, "summary", "", "summary")
	}
	bookCreateCmd.Flags().IntSliceVar(&bookAuthorIDs, "author", nil, "author id, repeat for several authors")
	_ = bookCreateCmd.MarkFlagRequired("name")
	_ = bookCreateCmd.MarkFlagRequired("release-date")

	bookListCmd.Flags().StringVar(&bookSearch, "search", "", "match book name or author name")
}
