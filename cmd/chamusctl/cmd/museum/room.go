package museum

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// RoomCmd is the parent command for room operations
var RoomCmd = &cobra.Command{
	Use:     "rooms",
	Aliases: []string{"room"},
	Short:   "Manage museum rooms",
	Long:    `Inspect, create, update and delete the rooms of a museum. List a museum's rooms with 'chamusctl museums get <id>'.`,
}

var (
	roomForm struct {
		museum      int64
		name        string
		description string
		image       string
	}
	roomDeleteYes bool
)

var roomGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a room",
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

		r, err := a.Client().GetRoom(ctx, id)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to get room", err, nil)
		}
		return cmdutil.Printer(cmd).Print(r, [][]string{
			{"FIELD", "VALUE"},
			{"ID", strconv.FormatInt(r.ID, 10)},
			{"Museum", strconv.FormatInt(r.MuseumID, 10)},
			{"Name", r.Name},
			{"Description", dash(r.Description)},
			{"Image", dash(r.Image)},
		})
	},
}

var roomCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a room in a museum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := roomInput(cmd, sdk.RoomInput{})
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		r, err := a.Client().CreateRoom(ctx, in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to create room", err, nil)
		}
		pterm.Success.Printf("Room %q created in museum %d\n", in.Name, in.MuseumID)
		return printCreated(cmd, r)
	},
}

var roomUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a room",
	Long:  `Updates a room. Only the flags given change; the image is kept unless --image is set.`,
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

		current, err := a.Client().GetRoom(ctx, id)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to load room", err, nil)
		}
		in, err := roomInput(cmd, sdk.RoomInput{
			MuseumID:    current.MuseumID,
			Name:        current.Name,
			Description: current.Description,
		})
		if err != nil {
			return err
		}

		r, err := a.Client().UpdateRoom(ctx, id, in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to update room", err, nil)
		}
		pterm.Success.Printf("Room %d updated\n", id)
		return printCreated(cmd, r)
	},
}

var roomDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a room",
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
		ok, err := cmdutil.Confirm(cmd, fmt.Sprintf("Delete room %d?", id), roomDeleteYes)
		if err != nil || !ok {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		if err := a.Client().DeleteRoom(ctx, id); err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to delete room", err, nil)
		}
		pterm.Success.Printf("Room %d deleted\n", id)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{roomCreateCmd, roomUpdateCmd} {
		f := c.Flags()
		f.Int64Var(&roomForm.museum, "museum", 0, "Museum ID")
		f.StringVar(&roomForm.name, "name", "", "Room name")
		f.StringVar(&roomForm.description, "description", "", "Description")
		f.StringVar(&roomForm.image, "image", "", "Path to a JPG, PNG or WebP image")
	}
	roomDeleteCmd.Flags().BoolVarP(&roomDeleteYes, "yes", "y", false, "Skip the confirmation prompt")

	RoomCmd.AddCommand(roomGetCmd)
	RoomCmd.AddCommand(roomCreateCmd)
	RoomCmd.AddCommand(roomUpdateCmd)
	RoomCmd.AddCommand(roomDeleteCmd)
}

func roomInput(cmd *cobra.Command, base sdk.RoomInput) (sdk.RoomInput, error) {
	flags := cmd.Flags()
	if flags.Changed("museum") {
		base.MuseumID = roomForm.museum
	}
	if flags.Changed("name") {
		base.Name = roomForm.name
	}
	if flags.Changed("description") {
		base.Description = roomForm.description
	}
	if flags.Changed("image") {
		img, err := cmdutil.LoadImage(roomForm.image)
		if err != nil {
			return base, err
		}
		base.Image = img
	}
	return base, nil
}
