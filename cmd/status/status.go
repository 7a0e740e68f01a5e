// Package status implements the command that changes a frame's
// production status.
package status

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slateboard/slateboard-go/internal/app"
	"github.com/slateboard/slateboard-go/internal/conf"
	"github.com/slateboard/slateboard-go/internal/model"
)

// Command creates the status command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status <frame-id> <done|here|next|omit|none>",
		Short: "Set a frame's production status",
		Long: "Set a frame's production status. The server is updated first; " +
			"local state only changes when the server accepts. \"none\" clears the status.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frameID := args[0]
			status := model.ParseStatus(args[1])
			if !status.IsSet() && args[1] != "none" && args[1] != "" {
				return fmt.Errorf("unknown status %q", args[1])
			}

			a, err := app.New(settings)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.OpenProject(ctx); err != nil {
				return err
			}
			if err := a.Session.RefreshFrames(ctx); err != nil {
				return err
			}
			if err := a.Session.SetFrameStatus(ctx, frameID, status); err != nil {
				return err
			}

			if status.IsSet() {
				fmt.Printf("frame %s is now %s\n", frameID, status)
			} else {
				fmt.Printf("frame %s status cleared\n", frameID)
			}
			return nil
		},
	}
}
