package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shopdesk/internal/models"
	"github.com/lehigh-university-libraries/shopdesk/internal/money"
	"github.com/lehigh-university-libraries/shopdesk/internal/validation"
)

func newCheckoutCmd(opts *rootOptions) *cobra.Command {
	var form validation.CheckoutForm

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		Example: `  shopdesk checkout --email amy@example.com --name Amy --tel 0912345678 \
    --address "1 Main St" --message "leave at the door"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Validate(form); err != nil {
				return err
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			result, err := client.SubmitOrder(cmd.Context(), models.Order{
				User: models.Recipient{
					Email:   form.Email,
					Name:    form.Name,
					Tel:     form.Tel,
					Address: form.Address,
				},
				Message: form.Message,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printHeading(out, "Order placed")
			fmt.Fprintf(out, "Order:  %s\n", result.OrderID)
			fmt.Fprintf(out, "Total:  %s\n", money.Format(result.Total))
			if result.CreateAt > 0 {
				fmt.Fprintf(out, "Placed: %s\n", time.Unix(result.CreateAt, 0).Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Recipient email")
	cmd.Flags().StringVar(&form.Name, "name", "", "Recipient name")
	cmd.Flags().StringVar(&form.Tel, "tel", "", "Recipient phone number, digits only")
	cmd.Flags().StringVar(&form.Address, "address", "", "Shipping address")
	cmd.Flags().StringVar(&form.Message, "message", "", "Note for the shop")

	return cmd
}
