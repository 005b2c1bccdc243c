package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swapgraph/swapgraph/pkg/store"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the SQLite-backed catalog",
	}

	cmd.PersistentFlags().String("db", "swapgraph.db", "SQLite database file")

	cmd.AddCommand(
		newDBImportCmd(),
		newDBSetStockCmd(),
		newDBExportCmd(),
	)

	return cmd
}

func newDBImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a catalog JSON file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			products, _ := cmd.Flags().GetString("products")

			catalog, err := store.LoadCatalogFile(products)
			if err != nil {
				return err
			}

			cs, err := store.NewSQLiteCatalogStore(dbPath)
			if err != nil {
				return err
			}
			defer cs.Close()

			if err := cs.ImportSnapshot(context.Background(), catalog); err != nil {
				return err
			}

			count, err := cs.CountProducts(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("imported %d products, %d total\n", catalog.Len(), count)
			return nil
		},
	}

	cmd.Flags().String("products", "products.json", "Catalog JSON file")

	return cmd
}

func newDBSetStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-stock <product-id> <stock>",
		Short: "Update the stock level of one product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")

			var stock int
			if _, err := fmt.Sscanf(args[1], "%d", &stock); err != nil {
				return fmt.Errorf("invalid stock value %q: %w", args[1], err)
			}

			cs, err := store.NewSQLiteCatalogStore(dbPath)
			if err != nil {
				return err
			}
			defer cs.Close()

			if err := cs.SetStock(context.Background(), args[0], stock); err != nil {
				return err
			}
			fmt.Printf("%s stock=%d\n", args[0], stock)
			return nil
		},
	}
}

func newDBExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the database catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")

			cs, err := store.NewSQLiteCatalogStore(dbPath)
			if err != nil {
				return err
			}
			defer cs.Close()

			snap, err := cs.Snapshot(context.Background())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap.Records())
		},
	}
}
