package museum

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/catalog"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// MuseumCmd is the parent command for museum operations
var MuseumCmd = &cobra.Command{
	Use:     "museums",
	Aliases: []string{"museum"},
	Short:   "Manage museums",
	Long:    `List, inspect, create, update and delete museums of the catalog.`,
}

var (
	museumForm struct {
		name        string
		description string
		opening     string
		closing     string
		latitude    string
		longitude   string
		price       string
		url         string
		status      string
		categories  []string
		image       string
	}
	deleteYes bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all museums",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		museums, err := a.Client().ListMuseums(ctx)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to list museums", err, nil)
		}

		rows := [][]string{{"ID", "NAME", "HOURS", "PRICE", "ROOMS", "STATUS"}}
		for _, m := range museums {
			rows = append(rows, []string{
				strconv.FormatInt(m.ID, 10),
				m.Name,
				hours(m),
				formatPrice(m.TicketPrice),
				strconv.Itoa(m.RoomCount),
				dash(m.Status),
			})
		}
		return cmdutil.Printer(cmd).Print(museums, rows)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a museum with its rooms, categories and discounts",
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

		m, err := a.Client().GetMuseum(ctx, id)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to get museum", err, nil)
		}

		printer := cmdutil.Printer(cmd)
		if printer.Structured() {
			return printer.Print(m, nil)
		}

		pterm.DefaultSection.Println(m.Name)
		categories := make([]string, 0, len(m.Categories))
		for _, c := range m.Categories {
			categories = append(categories, c.Name)
		}
		details := [][]string{
			{"FIELD", "VALUE"},
			{"ID", strconv.FormatInt(m.ID, 10)},
			{"Description", dash(m.Description)},
			{"Hours", hours(*m)},
			{"Location", fmt.Sprintf("%.6f, %.6f", m.Latitude, m.Longitude)},
			{"Ticket price", formatPrice(m.TicketPrice)},
			{"Website", dash(m.URL)},
			{"Status", dash(m.Status)},
			{"Categories", dash(strings.Join(categories, ", "))},
			{"Image", dash(m.Image)},
		}
		if err := printer.Print(m, details); err != nil {
			return err
		}

		if len(m.Rooms) > 0 {
			pterm.DefaultSection.WithLevel(2).Println("Rooms")
			rows := [][]string{{"ID", "NAME", "DESCRIPTION"}}
			for _, r := range m.Rooms {
				rows = append(rows, []string{strconv.FormatInt(r.ID, 10), r.Name, dash(r.Description)})
			}
			if err := printer.Print(nil, rows); err != nil {
				return err
			}
		}
		if len(m.Discounts) > 0 {
			pterm.DefaultSection.WithLevel(2).Println("Discounts")
			rows := [][]string{{"ID", "DISCOUNT", "DESCRIPTION"}}
			for _, d := range m.Discounts {
				rows = append(rows, []string{strconv.FormatInt(d.ID, 10), catalog.FormatPercent(d.Value), dash(d.Description)})
			}
			if err := printer.Print(nil, rows); err != nil {
				return err
			}
		}
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a museum",
	Long: `Creates a museum. An image (JPG, PNG or WebP) and at least one category are
required.

Example:
  chamusctl museums create --name "Museo Soumaya" --opening 10:30 --closing 18:30 \
    --latitude 19.4406 --longitude -99.2047 --price 0 --category 1 --image soumaya.jpg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := museumInput(cmd, sdk.MuseumInput{})
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		m, err := a.Client().CreateMuseum(ctx, in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to create museum", err, sdk.MuseumFieldMap)
		}
		pterm.Success.Printf("Museum %q created\n", in.Name)
		return printCreated(cmd, m)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a museum",
	Long: `Updates a museum. Only the flags given change; every other field keeps its
current value. --category replaces the whole category list.`,
	Args: cobra.ExactArgs(1),
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

		current, err := a.Client().GetMuseum(ctx, id)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to load museum", err, nil)
		}
		in, err := museumInput(cmd, currentInput(current))
		if err != nil {
			return err
		}

		m, err := a.Client().UpdateMuseum(ctx, id, in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to update museum", err, sdk.MuseumFieldMap)
		}
		pterm.Success.Printf("Museum %d updated\n", id)
		return printCreated(cmd, m)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a museum",
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
		ok, err := cmdutil.Confirm(cmd, fmt.Sprintf("Delete museum %d and its rooms?", id), deleteYes)
		if err != nil || !ok {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		if err := a.Client().DeleteMuseum(ctx, id); err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to delete museum", err, nil)
		}
		pterm.Success.Printf("Museum %d deleted\n", id)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		f := c.Flags()
		f.StringVar(&museumForm.name, "name", "", "Museum name")
		f.StringVar(&museumForm.description, "description", "", "Description")
		f.StringVar(&museumForm.opening, "opening", "", "Opening time (HH:MM)")
		f.StringVar(&museumForm.closing, "closing", "", "Closing time (HH:MM)")
		f.StringVar(&museumForm.latitude, "latitude", "", "Latitude")
		f.StringVar(&museumForm.longitude, "longitude", "", "Longitude")
		f.StringVar(&museumForm.price, "price", "", "Ticket price")
		f.StringVar(&museumForm.url, "url", "", "Website URL")
		f.StringVar(&museumForm.status, "status", "", "Status")
		f.StringSliceVar(&museumForm.categories, "category", nil, "Category ID (repeatable)")
		f.StringVar(&museumForm.image, "image", "", "Path to a JPG, PNG or WebP image")
	}
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	MuseumCmd.AddCommand(listCmd)
	MuseumCmd.AddCommand(getCmd)
	MuseumCmd.AddCommand(createCmd)
	MuseumCmd.AddCommand(updateCmd)
	MuseumCmd.AddCommand(deleteCmd)
}

// museumInput overlays the flags set on cmd onto base.
func museumInput(cmd *cobra.Command, base sdk.MuseumInput) (sdk.MuseumInput, error) {
	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("name", &base.Name, museumForm.name)
	set("description", &base.Description, museumForm.description)
	set("opening", &base.OpeningTime, museumForm.opening)
	set("closing", &base.ClosingTime, museumForm.closing)
	set("latitude", &base.Latitude, museumForm.latitude)
	set("longitude", &base.Longitude, museumForm.longitude)
	set("price", &base.TicketPrice, museumForm.price)
	set("url", &base.URL, museumForm.url)
	set("status", &base.Status, museumForm.status)

	if flags.Changed("category") {
		ids, err := cmdutil.ParseIDs(museumForm.categories)
		if err != nil {
			return base, err
		}
		base.CategoryIDs = ids
	}
	if flags.Changed("image") {
		img, err := cmdutil.LoadImage(museumForm.image)
		if err != nil {
			return base, err
		}
		base.Image = img
	}
	return base, nil
}

func currentInput(m *sdk.Museum) sdk.MuseumInput {
	in := sdk.MuseumInput{
		Name:        m.Name,
		Description: m.Description,
		OpeningTime: m.OpeningTime,
		ClosingTime: m.ClosingTime,
		Latitude:    strconv.FormatFloat(m.Latitude, 'f', -1, 64),
		Longitude:   strconv.FormatFloat(m.Longitude, 'f', -1, 64),
		TicketPrice: strconv.FormatFloat(m.TicketPrice, 'f', -1, 64),
		URL:         m.URL,
		Status:      m.Status,
	}
	for _, c := range m.Categories {
		in.CategoryIDs = append(in.CategoryIDs, c.ID)
	}
	return in
}

// printCreated shows the server's record in structured output modes. The
// API may answer with an empty body, in which case nothing is printed.
func printCreated[T any](cmd *cobra.Command, v *T) error {
	printer := cmdutil.Printer(cmd)
	if !printer.Structured() || v == nil {
		return nil
	}
	return printer.Print(v, nil)
}

func hours(m sdk.Museum) string {
	if m.OpeningTime == "" && m.ClosingTime == "" {
		return "-"
	}
	return dash(m.OpeningTime) + " - " + dash(m.ClosingTime)
}

func formatPrice(p float64) string {
	if p == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", p)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
