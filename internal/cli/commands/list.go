package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pakproperty/pakproperty/internal/cli/client"
	"github.com/pakproperty/pakproperty/internal/cli/userconfig"
)

// propertyLister is the slice of the API client the list command needs,
// kept narrow so tests can substitute it
type propertyLister interface {
	ListProperties(filters client.ListFilters) (*client.PropertyPage, error)
}

type listOptions struct {
	client  propertyLister
	output  io.Writer
	filters client.ListFilters
}

// ListOption customizes runList, mainly for tests
type ListOption func(*listOptions)

func WithListClient(c propertyLister) ListOption {
	return func(o *listOptions) { o.client = c }
}

func WithListOutput(w io.Writer) ListOption {
	return func(o *listOptions) { o.output = w }
}

func WithListFilters(f client.ListFilters) ListOption {
	return func(o *listOptions) { o.filters = f }
}

// NewListCmd creates the listing browse command
func NewListCmd() *cobra.Command {
	var filters client.ListFilters

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Browse available rental listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Browsing is public, no session needed
			cfg, err := userconfig.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runList(
				WithListClient(client.New(cfg.APIURL)),
				WithListFilters(filters),
			)
		},
	}

	cmd.Flags().StringVar(&filters.City, "city", "", "Filter by city")
	cmd.Flags().StringVar(&filters.Type, "type", "", "Filter by property type (house, apartment, room, commercial, plot)")
	cmd.Flags().Int64Var(&filters.MinRent, "min-rent", 0, "Minimum monthly rent")
	cmd.Flags().Int64Var(&filters.MaxRent, "max-rent", 0, "Maximum monthly rent")
	cmd.Flags().IntVar(&filters.Bedrooms, "bedrooms", 0, "Minimum number of bedrooms")
	cmd.Flags().IntVar(&filters.Page, "page", 1, "Result page")

	return cmd
}

func runList(opts ...ListOption) error {
	options := &listOptions{
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(options)
	}

	page, err := options.client.ListProperties(options.filters)
	if err != nil {
		return fmt.Errorf("failed to list properties: %s", client.ErrorMessage(err, "request failed"))
	}

	if len(page.Data) == 0 {
		fmt.Fprintln(options.output, "No listings found.")
		return nil
	}

	fmt.Fprintf(options.output, "Listings (%d total, page %d):\n\n", page.Total, page.Page)

	w := tabwriter.NewWriter(options.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCITY\tTYPE\tRENT\tBEDS\tVIEWS")
	for _, p := range page.Data {
		title := p.Title
		if p.IsFeatured {
			title = "* " + title
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d %s\t%d\t%d\n",
			p.ID, title, p.City, p.Type, p.RentAmount, p.RentCurrency, p.Bedrooms, p.Views)
	}
	w.Flush()

	return nil
}
