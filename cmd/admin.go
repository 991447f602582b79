/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bookclub/catalog/config"
	"github.com/bookclub/catalog/internal/db"
	"github.com/bookclub/catalog/internal/logging"
	"github.com/bookclub/catalog/internal/services"
	"github.com/bookclub/catalog/internal/store"
)

// catalog bundles the services used by the admin commands.
type catalog struct {
	db      *sql.DB
	authors *services.AuthorService
	books   *services.BookService
	users   *services.UserService
}

func openCatalog(cmd *cobra.Command) (*catalog, error) {
	cfg := config.LoadConfig()
	logging.Init(cfg)

	conn, err := db.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	books := store.NewBookRepository(conn)
	comments := store.NewCommentRepository(conn)
	return &catalog{
		db:      conn,
		authors: services.NewAuthorService(store.NewAuthorRepository(conn)),
		books:   services.NewBookService(books, comments),
		users:   services.NewUserService(store.NewUserRepository(conn)),
	}, nil
}

func (c *catalog) Close() {
	_ = c.db.Close()
}

func parseIDArg(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
