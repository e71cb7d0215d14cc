package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/shopdesk/internal/export"
	"github.com/lehigh-university-libraries/shopdesk/internal/images"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
	"github.com/lehigh-university-libraries/shopdesk/internal/money"
	"github.com/lehigh-university-libraries/shopdesk/internal/productform"
)

func newProductsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Manage catalog products",
		Long: `Admin product management. All subcommands need a saved token from
"shopdesk login".`,
	}

	cmd.AddCommand(newProductsListCmd(opts))
	cmd.AddCommand(newProductsGetCmd(opts))
	cmd.AddCommand(newProductsCreateCmd(opts))
	cmd.AddCommand(newProductsUpdateCmd(opts))
	cmd.AddCommand(newProductsEditCmd(opts))
	cmd.AddCommand(newProductsDeleteCmd(opts))
	cmd.AddCommand(newProductsExportCmd(opts))
	cmd.AddCommand(newProductsImagesCmd(opts))

	return cmd
}

func newProductsListCmd(opts *rootOptions) *cobra.Command {
	var (
		page int
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List admin products",
		Example: `  shopdesk products list --page 2
  shopdesk products list --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, token, err := opts.adminClient()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if all {
				products, err := client.AllAdminProducts(cmd.Context(), token)
				if err != nil {
					return err
				}
				printHeading(out, fmt.Sprintf("Products (%d)", len(products)))
				printProducts(out, products)
				return nil
			}

			result, err := client.ListAdminProducts(cmd.Context(), token, page)
			if err != nil {
				return err
			}
			p := result.Pagination
			printHeading(out, fmt.Sprintf("Products, page %d of %d", p.CurrentPage, p.TotalPages))
			printProducts(out, result.Products)
			if p.HasNext {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("more: shopdesk products list --page %d", p.CurrentPage+1)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	cmd.MarkFlagsMutuallyExclusive("page", "all")

	return cmd
}

func printProducts(w io.Writer, products []models.Product) {
	t := newTable("ID", "TITLE", "CATEGORY", "ORIGIN", "PRICE", "UNIT", "ENABLED", "IMAGES")
	for _, p := range products {
		t.addRow(
			p.ID,
			p.Title,
			p.Category,
			money.Format(p.OriginPrice),
			money.Format(p.Price),
			p.Unit,
			strconv.FormatBool(p.Enabled()),
			strconv.Itoa(len(images.ProductURLs(p))),
		)
	}
	t.render(w)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func newProductsGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product as YAML",
		Long: `Prints the product in the same YAML layout "products create" and
"products update" read, so the output can be edited and sent back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, token, err := opts.adminClient()
			if err != nil {
				return err
			}
			product, err := client.FindAdminProduct(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), product)
		},
	}
}

func newProductsCreateCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a product from a YAML file",
		Example: `  shopdesk products create -f lamp.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadProductForm(file, productform.ModeCreate)
			if err != nil {
				return err
			}
			return submitForm(cmd, opts, form)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Product YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newProductsUpdateCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product with the contents of a YAML file",
		Example: `  shopdesk products get p1 > lamp.yaml
  shopdesk products update p1 -f lamp.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadProductForm(file, productform.ModeEdit)
			if err != nil {
				return err
			}
			form.ID = args[0]
			return submitForm(cmd, opts, form)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Product YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newProductsEditCmd(opts *rootOptions) *cobra.Command {
	var (
		edits  formEdits
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields and gallery images of a product",
		Long: `Loads a product, applies the requested changes and saves it.

Changes are applied in this order: --set, --remove-last-image,
--set-image, --append-image. The gallery holds at most 5 images. Setting
the last slot opens a new blank slot after it; clearing a slot drops a
trailing blank slot. Blank slots are never sent to the catalog.`,
		Example: `  # Replace the second gallery image and raise the price
  shopdesk products edit p1 --set-image 1=https://img.example/b.png --set price=1200

  # Add an image and preview the result without saving
  shopdesk products edit p1 --append-image https://img.example/c.png --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, token, err := opts.adminClient()
			if err != nil {
				return err
			}
			product, err := client.FindAdminProduct(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}

			form := productform.FromProduct(productform.ModeEdit, *product)
			if err := edits.apply(form); err != nil {
				return err
			}

			if dryRun {
				payload, err := form.Payload()
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), payload)
			}
			return submitForm(cmd, opts, form)
		},
	}

	cmd.Flags().StringArrayVar(&edits.fields, "set", nil, "Set a field, as field=value (repeatable)")
	cmd.Flags().StringArrayVar(&edits.setImages, "set-image", nil, "Set a gallery slot, as index=url; an empty url clears it (repeatable)")
	cmd.Flags().StringArrayVar(&edits.appendURLs, "append-image", nil, "Add a gallery image (repeatable)")
	cmd.Flags().CountVar(&edits.removeLast, "remove-last-image", "Remove the last gallery slot (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the resulting product instead of saving it")

	return cmd
}

func newProductsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := productform.New(productform.ModeDelete)
			form.ID = args[0]
			return submitForm(cmd, opts, form)
		},
	}
}

// submitForm sends a form to the catalog API according to its mode
func submitForm(cmd *cobra.Command, opts *rootOptions, form *productform.Form) error {
	if err := form.Check(); err != nil {
		return err
	}
	product, err := form.Payload()
	if err != nil {
		return err
	}

	client, token, err := opts.adminClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	switch form.Mode {
	case productform.ModeCreate:
		err = client.CreateProduct(ctx, token, product)
	case productform.ModeEdit:
		err = client.UpdateProduct(ctx, token, form.ID, product)
	case productform.ModeDelete:
		err = client.DeleteProduct(ctx, token, form.ID)
	}
	if err != nil {
		return err
	}

	slog.Debug("Product submitted", "action", form.Mode.Verb(), "id", form.ID, "images", len(product.ImagesURL))
	name := product.Title
	if name == "" {
		name = form.ID
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %sd %s\n", okStyle.Render("✓"), form.Mode.Verb(), name)
	return nil
}

func newProductsExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the whole catalog to a file",
		Long: `Writes every admin product to parquet, yaml, json or csv. Without
--format the format follows the output file extension.`,
		Example: `  shopdesk products export --output catalog.parquet
  shopdesk products export --format csv --output catalog.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				f   export.Format
				err error
			)
			if format != "" {
				f, err = export.ParseFormat(format)
			} else {
				f, err = export.FormatFromPath(output)
			}
			if err != nil {
				return err
			}

			client, token, err := opts.adminClient()
			if err != nil {
				return err
			}
			products, err := client.AllAdminProducts(cmd.Context(), token)
			if err != nil {
				return err
			}

			if err := export.WriteFile(output, f, products); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s exported %d products to %s\n", okStyle.Render("✓"), len(products), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: parquet, yaml, json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func newProductsImagesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images <id>",
		Short: "Check that a product's image URLs load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, token, err := opts.adminClient()
			if err != nil {
				return err
			}
			product, err := client.FindAdminProduct(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}

			urls := images.ProductURLs(*product)
			out := cmd.OutOrStdout()
			printHeading(out, fmt.Sprintf("%s: %d images", product.Title, len(urls)))
			if len(urls) == 0 {
				return nil
			}

			results := images.NewProber().ProbeAll(cmd.Context(), urls)
			t := newTable("", "URL", "STATUS", "FORMAT", "SIZE", "NOTE")
			failed := 0
			for _, r := range results {
				mark := okStyle.Render("✓")
				size := fmt.Sprintf("%dx%d", r.Width, r.Height)
				if !r.OK() {
					mark = failStyle.Render("✗")
					size = ""
					failed++
				}
				t.addRow(mark, r.URL, strconv.Itoa(r.StatusCode), r.Format, size, r.Error)
			}
			t.render(out)

			if failed > 0 {
				return fmt.Errorf("%d of %d images failed to load", failed, len(results))
			}
			return nil
		},
	}
	return cmd
}
