// cmd/nebula/backup.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/backup"
	"github.com/Annany2002/nebula-docstore/internal/docstore"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

var (
	exportEmail  string
	exportFormat string
	exportOut    string

	importEmail  string
	importFormat string
	importIn     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's databases to a JSON or YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := backup.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = "nebula-export." + format
		}

		ctx := cmd.Context()
		repo, closeStore, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		user, err := repo.GetUserByEmail(ctx, exportEmail)
		if err != nil {
			return err
		}
		data, err := backup.Export(ctx, repo, user.ID)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := backup.Encode(f, data, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		green := color.New(color.FgGreen, color.Bold)
		green.Printf("✅ Exported %d database(s) for %s to %s\n", len(data), user.Email, out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import databases from a JSON or YAML file into a user's account",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := backup.ParseFormat(inputFormat(importFormat, importIn))
		if err != nil {
			return err
		}

		f, err := os.Open(importIn)
		if err != nil {
			return err
		}
		defer f.Close()

		data, err := backup.Decode(f, format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		repo, closeStore, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		user, err := repo.GetUserByEmail(ctx, importEmail)
		if err != nil {
			return err
		}
		summary, err := backup.Import(ctx, repo, user.ID, data)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen, color.Bold)
		green.Printf("✅ Imported into %s\n", user.Email)
		fmt.Printf("   databases: %d, tables: %d, columns: %d, rows: %d\n",
			summary.Databases, summary.Tables, summary.Columns, summary.Rows)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "email of the account to export")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", backup.FormatJSON, "output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default nebula-export.<format>)")
	_ = exportCmd.MarkFlagRequired("email")

	importCmd.Flags().StringVar(&importEmail, "email", "", "email of the account to import into")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "input format: json or yaml (default from file extension)")
	importCmd.Flags().StringVarP(&importIn, "in", "i", "", "file to import")
	_ = importCmd.MarkFlagRequired("email")
	_ = importCmd.MarkFlagRequired("in")
}

// inputFormat falls back to the file extension when no format flag is given.
func inputFormat(flag, path string) string {
	if flag != "" {
		return flag
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// openRepository opens the configured store for offline tools. The server
// should not be running against the same store at the same time.
func openRepository(ctx context.Context) (*storage.Repository, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	store, err := docstore.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store at %s: %w", cfg.StorePath(), err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			customLog.Printf("Error closing document store: %v", err)
		}
	}
	return storage.NewRepository(store), closeStore, nil
}
