package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swapgraph/swapgraph/pkg/store"
	"github.com/swapgraph/swapgraph/pkg/swapgraph"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "swapgraph",
		Short: "Swapgraph - knowledge-graph substitute recommender",
		Long: `swapgraph recommends in-stock substitute products from a catalog.

It builds a knowledge graph over products, categories, brands and
attributes, scores candidates with an explainable rule set, and ranks
them by score, price and name.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newRecommendCmd(),
		newBuildGraphCmd(),
		newDBCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("swapgraph version %s\n", version)
			}
		},
	}
}

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <query>",
		Short: "Recommend in-stock substitutes for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, _ := cmd.Flags().GetString("products")
			graph, _ := cmd.Flags().GetString("graph")
			weights, _ := cmd.Flags().GetString("weights")
			maxResults, _ := cmd.Flags().GetInt("max-results")
			maxPrice, _ := cmd.Flags().GetFloat64("max-price")
			require, _ := cmd.Flags().GetStringSlice("require")
			onlyInStock, _ := cmd.Flags().GetBool("in-stock")
			jsonOut, _ := cmd.Flags().GetBool("json")

			sg, err := swapgraph.New(swapgraph.Config{
				ProductsPath: products,
				GraphPath:    graph,
				WeightsPath:  weights,
			})
			if err != nil {
				return err
			}
			if err := sg.LoadSnapshot(context.Background()); err != nil {
				return err
			}

			opts := swapgraph.Options{
				MaxResults:   maxResults,
				RequiredTags: require,
				OnlyInStock:  onlyInStock,
			}
			if cmd.Flags().Changed("max-price") {
				opts.MaxPrice = &maxPrice
			}

			results, err := sg.Recommend(context.Background(), args[0], opts)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printRecommendations(results)
			return nil
		},
	}

	cmd.Flags().String("products", "products.json", "Catalog JSON file")
	cmd.Flags().String("graph", "", "Graph JSON file (derived from catalog when empty)")
	cmd.Flags().String("weights", "", "Rule weights YAML file")
	cmd.Flags().Int("max-results", 0, "Maximum number of recommendations (default 3)")
	cmd.Flags().Float64("max-price", 0, "Reject candidates priced above this")
	cmd.Flags().StringSlice("require", nil, "Attribute tags every recommendation must carry")
	cmd.Flags().Bool("in-stock", true, "Short-circuit when the queried product is in stock")

	return cmd
}

func newBuildGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-graph",
		Short: "Derive a graph from a catalog and write it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, _ := cmd.Flags().GetString("products")
			out, _ := cmd.Flags().GetString("out")

			catalog, err := store.LoadCatalogFile(products)
			if err != nil {
				return err
			}
			g := store.BuildFromCatalog(catalog)

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create graph file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := store.WriteGraph(w, g); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "graph: %d nodes, %d edges\n", g.NodeCount(), g.EdgeCount())
			return nil
		},
	}

	cmd.Flags().String("products", "products.json", "Catalog JSON file")
	cmd.Flags().String("out", "", "Output file (stdout when empty)")

	return cmd
}

func printRecommendations(results []swapgraph.Recommendation) {
	for i, r := range results {
		if r.Error != "" {
			fmt.Printf("no product matches %q\n", r.Query)
			continue
		}
		if r.Score == nil {
			fmt.Printf("%s (%s): %s\n", r.ProductName, r.ProductID, strings.Join(r.Explanation, "; "))
			continue
		}
		price := "n/a"
		if r.Price != nil {
			price = fmt.Sprintf("%.2f", *r.Price)
		}
		fmt.Printf("%d. %s (%s) score=%d price=%s stock=%d\n", i+1, r.ProductName, r.ProductID, *r.Score, price, r.Stock)
		for _, line := range r.Explanation {
			fmt.Printf("   - %s\n", line)
		}
		if len(r.Path) > 0 {
			fmt.Printf("   via %s\n", strings.Join(r.Path, " -> "))
		}
	}
}
