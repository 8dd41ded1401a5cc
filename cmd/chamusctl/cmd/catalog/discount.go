package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// DiscountCmd is the parent command for discount operations
var DiscountCmd = &cobra.Command{
	Use:     "discounts",
	Aliases: []string{"discount"},
	Short:   "Manage museum discounts",
	Long: `Inspect, create, update and delete museum discounts. List a museum's
discounts with 'chamusctl museums get <id>'.`,
}

var (
	discountForm struct {
		museum      int64
		value       string
		description string
	}
	discountDeleteYes bool
)

var discountGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a discount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cmdutil.ParseID(args[0])
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		d, err := a.Client().GetDiscount(ctx, id)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to get discount", err, nil)
		}
		return cmdutil.Printer(cmd).Print(d, [][]string{
			{"ID", "MUSEUM", "DISCOUNT", "DESCRIPTION"},
			{strconv.FormatInt(d.ID, 10), strconv.FormatInt(d.MuseumID, 10), FormatPercent(d.Value), d.Description},
		})
	},
}

var discountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Attach a discount to a museum",
	Long: `Creates a discount. --value takes a fraction (0.15) or a percentage (15%).

Example:
  chamusctl discounts create --museum 3 --value 50% --description "Estudiantes con credencial"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := discountInput(cmd, sdk.DiscountInput{})
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		d, err := a.Client().CreateDiscount(ctx, in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to create discount", err, nil)
		}
		pterm.Success.Printf("Discount of %s created for museum %d\n", FormatPercent(in.Value), in.MuseumID)
		return printResult(cmd, d)
	},
}

var discountUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a discount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cmdutil.ParseID(args[0])
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		current, err := a.Client().GetDiscount(ctx, id)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to load discount", err, nil)
		}
		in, err := discountInput(cmd, sdk.DiscountInput{
			MuseumID:    current.MuseumID,
			Value:       current.Value,
			Description: current.Description,
		})
		if err != nil {
			return err
		}

		d, err := a.Client().UpdateDiscount(ctx, id, in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to update discount", err, nil)
		}
		pterm.Success.Printf("Discount %d updated\n", id)
		return printResult(cmd, d)
	},
}

var discountDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a discount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cmdutil.ParseID(args[0])
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ok, err := cmdutil.Confirm(cmd, fmt.Sprintf("Delete discount %d?", id), discountDeleteYes)
		if err != nil || !ok {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		if err := a.Client().DeleteDiscount(ctx, id); err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to delete discount", err, nil)
		}
		pterm.Success.Printf("Discount %d deleted\n", id)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{discountCreateCmd, discountUpdateCmd} {
		f := c.Flags()
		f.Int64Var(&discountForm.museum, "museum", 0, "Museum ID")
		f.StringVar(&discountForm.value, "value", "", "Discount as a fraction (0.15) or percentage (15%)")
		f.StringVar(&discountForm.description, "description", "", "Who the discount applies to")
	}
	discountDeleteCmd.Flags().BoolVarP(&discountDeleteYes, "yes", "y", false, "Skip the confirmation prompt")

	DiscountCmd.AddCommand(discountGetCmd)
	DiscountCmd.AddCommand(discountCreateCmd)
	DiscountCmd.AddCommand(discountUpdateCmd)
	DiscountCmd.AddCommand(discountDeleteCmd)
}

func discountInput(cmd *cobra.Command, base sdk.DiscountInput) (sdk.DiscountInput, error) {
	flags := cmd.Flags()
	if flags.Changed("museum") {
		base.MuseumID = discountForm.museum
	}
	if flags.Changed("value") {
		v, err := ParseDiscount(discountForm.value)
		if err != nil {
			return base, err
		}
		base.Value = v
	}
	if flags.Changed("description") {
		base.Description = discountForm.description
	}
	return base, nil
}

// ParseDiscount accepts "0.15" or "15%" and returns the fraction.
func ParseDiscount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid discount %q: expected a fraction like 0.15 or a percentage like 15%%", s)
	}
	if percent {
		v /= 100
	}
	return v, nil
}

// FormatPercent renders a fraction as a percentage.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/100, 'f', -1, 64) + "%"
}

func printResult[T any](cmd *cobra.Command, v *T) error {
	printer := cmdutil.Printer(cmd)
	if !printer.Structured() || v == nil {
		return nil
	}
	return printer.Print(v, nil)
}
