package user

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// QuoteCmd lists visitor quotes ("cotizaciones").
var QuoteCmd = &cobra.Command{
	Use:     "quotes",
	Aliases: []string{"quote", "cotizaciones"},
	Short:   "Inspect visitor quotes",
}

var quoteMuseum string

var quoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visitor quotes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		quotes, err := a.Client().ListQuotes(ctx)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to list quotes", err, nil)
		}
		quotes = sdk.FilterQuotes(quotes, quoteMuseum)

		printer := cmdutil.Printer(cmd)
		if printer.Structured() {
			records := make([]map[string]any, 0, len(quotes))
			for _, q := range quotes {
				records = append(records, q.Fields)
			}
			return printer.Print(records, nil)
		}

		rows := [][]string{{"ID", "UNIQUE ID", "MUSEUM", "CONTACT", "CREATED"}}
		for _, q := range quotes {
			rows = append(rows, []string{
				strconv.FormatInt(q.ID, 10),
				q.UniqueID,
				q.MuseumName,
				field(q, "email", "correo", "name", "nombre"),
				field(q, "created_at", "fecha", "creado"),
			})
		}
		return printer.Print(quotes, rows)
	},
}

func init() {
	quoteListCmd.Flags().StringVar(&quoteMuseum, "museum", "", "Only quotes whose museum name contains this text")
	QuoteCmd.AddCommand(quoteListCmd)
}

func field(q sdk.Quote, keys ...string) string {
	for _, k := range keys {
		if v, ok := q.Fields[k]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return "-"
}
