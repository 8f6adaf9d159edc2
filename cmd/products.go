package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"catalog-admin/internal/catalog"
	"catalog-admin/internal/catalogclient"
	"catalog-admin/internal/domain"
	"catalog-admin/internal/view"

	"github.com/spf13/cobra"
)

var (
	productsSearch   string
	productsCategory string
	productsPage     int
	productsJSON     bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Print one page of the catalog",
	Long: `Products fetches the catalog from CATALOG_API_BASE_URL and prints one
page of it, filtered the same way the console filters.

Example:
  catalog-admin products
  catalog-admin products --search mouse
  catalog-admin products --category Accessories --page 2
  catalog-admin products --json`,
	RunE: runProducts,
}

func init() {
	productsCmd.Flags().StringVar(&productsSearch, "search", "", "case-insensitive text matched against name and description")
	productsCmd.Flags().StringVar(&productsCategory, "category", "", "exact category to show")
	productsCmd.Flags().IntVar(&productsPage, "page", 1, "page to print")
	productsCmd.Flags().BoolVar(&productsJSON, "json", false, "print the page as JSON")
}

func runProducts(cmd *cobra.Command, args []string) error {
	client, err := catalogclient.New(cfg.CatalogAPI.BaseURL, catalogclient.WithTimeout(cfg.CatalogAPI.Timeout))
	if err != nil {
		return err
	}
	products, err := client.ListProducts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	page, err := catalogPage(products, cfg.Dashboard.PageSize, catalog.Criteria{
		SearchText: productsSearch,
		Category:   productsCategory,
	}, productsPage)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if productsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page.Rows)
	}
	return printProductTable(out, page)
}

// catalogPage runs products through the console's filter, pagination and
// render steps and returns the requested page.
func catalogPage(products []domain.Product, pageSize int, crit catalog.Criteria, page int) (view.Page, error) {
	s := catalog.NewStore(pageSize)
	s.ReplaceAll(products)
	s.SetCriteria(crit)
	if page != 1 {
		if err := s.ChangePage(page); err != nil {
			return view.Page{}, fmt.Errorf("page %d: %w", page, err)
		}
	}
	return view.Render(view.State{
		Products:   s.All(),
		Window:     s.Window(),
		Criteria:   s.Criteria(),
		Categories: s.Categories(),
	}), nil
}

func printProductTable(w io.Writer, page view.Page) error {
	fmt.Fprintf(w, "Total Products: %d  Categories: %d  Avg Stock: %s\n\n",
		page.Summary.TotalProducts, page.Summary.Categories, page.Summary.AvgStock)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tDESCRIPTION")
	for _, r := range page.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Name, r.Category, r.Price, r.Stock, truncate(r.Description, 40))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s", page.RangeLabel)
	if page.Pagination != nil {
		fmt.Fprintf(w, " (page %d of %d)", currentPage(page.Pagination), lastPage(page.Pagination))
	}
	fmt.Fprintln(w)
	return nil
}

func currentPage(p *view.Pagination) int {
	for _, it := range p.Items {
		if it.Current {
			return it.Number
		}
	}
	return 1
}

func lastPage(p *view.Pagination) int {
	return p.Items[len(p.Items)-1].Number
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
