package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shopdesk/internal/catalog"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
	"github.com/lehigh-university-libraries/shopdesk/internal/money"
)

func newCartCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "View and change the storefront cart",
		Long:  `Storefront cart operations. Every change prints the refreshed cart.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, opts, func(c *catalog.Client) error { return nil })
		},
	})

	var addQty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addQty < 1 {
				return fmt.Errorf("qty must be at least 1, got %d", addQty)
			}
			return withCart(cmd, opts, func(c *catalog.Client) error {
				return c.AddToCart(cmd.Context(), args[0], addQty)
			})
		},
	}
	add.Flags().IntVarP(&addQty, "qty", "q", 1, "Quantity")
	cmd.AddCommand(add)

	var updateQty int
	update := &cobra.Command{
		Use:   "update <cart-id> <product-id>",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if updateQty < 1 {
				return fmt.Errorf("qty must be at least 1, got %d", updateQty)
			}
			return withCart(cmd, opts, func(c *catalog.Client) error {
				return c.UpdateCartItem(cmd.Context(), args[0], args[1], updateQty)
			})
		},
	}
	update.Flags().IntVarP(&updateQty, "qty", "q", 1, "New quantity")
	_ = update.MarkFlagRequired("qty")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <cart-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, opts, func(c *catalog.Client) error {
				return c.RemoveCartItem(cmd.Context(), args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, opts, func(c *catalog.Client) error {
				return c.ClearCart(cmd.Context())
			})
		},
	})

	return cmd
}

// withCart runs change and then prints the refreshed cart
func withCart(cmd *cobra.Command, opts *rootOptions, change func(*catalog.Client) error) error {
	client, err := opts.client()
	if err != nil {
		return err
	}
	if err := change(client); err != nil {
		return err
	}
	cart, err := client.GetCart(cmd.Context())
	if err != nil {
		return err
	}
	printCart(cmd.OutOrStdout(), cart)
	return nil
}

func printCart(w io.Writer, cart *models.Cart) {
	printHeading(w, fmt.Sprintf("Cart (%d items)", len(cart.Carts)))
	if len(cart.Carts) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("empty"))
		return
	}

	t := newTable("CART ID", "PRODUCT", "QTY", "UNIT PRICE", "TOTAL")
	for _, item := range cart.Carts {
		t.addRow(
			item.ID,
			item.Product.Title,
			strconv.Itoa(item.Qty),
			money.Format(item.Product.Price),
			money.Format(item.FinalTotal),
		)
	}
	t.render(w)
	fmt.Fprintf(w, "Total: %s\n", money.Format(cart.FinalTotal))
}
