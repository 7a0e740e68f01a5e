// Package fetch implements the command that loads a project and prints
// its frame sequences.
package fetch

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/slateboard/slateboard-go/internal/app"
	"github.com/slateboard/slateboard-go/internal/conf"
	"github.com/slateboard/slateboard-go/internal/model"
	"github.com/slateboard/slateboard-go/internal/sorting"
)

// Command creates the fetch command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		pullAll   bool
		shootMode bool
		creatives []string
		tags      []string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and display the project's frames",
		Long:  "Fetch the project's creatives and frames, then print the story or shoot sequence.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(settings)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.OpenProject(ctx); err != nil {
				return err
			}
			if err := a.Session.RefreshCreatives(ctx, pullAll); err != nil {
				return err
			}
			if err := a.Session.RefreshFrames(ctx); err != nil {
				return err
			}

			filter := buildFilter(creatives, tags)
			if shootMode {
				printShootSequence(a.Session.ShootSequence(filter))
			} else {
				printStoryGroups(a.Session.StoryGroups(filter))
			}

			progress := a.Session.Progress(filter)
			fmt.Printf("\n%d/%d frames done\n", progress.Done, progress.Total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pullAll, "all", viper.GetBool("fetch.all"), "Include archived creatives")
	cmd.Flags().BoolVar(&shootMode, "shoot", false, "Print the shoot-order sequence instead of story order")
	cmd.Flags().StringSliceVar(&creatives, "creative", nil, "Only show frames of these creative ids")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Only show frames carrying one of these tags")

	return cmd
}

func buildFilter(creatives, tags []string) sorting.Filter {
	filter := sorting.Filter{}
	if len(creatives) > 0 {
		filter.CreativeIDs = make(map[string]struct{}, len(creatives))
		for _, id := range creatives {
			filter.CreativeIDs[id] = struct{}{}
		}
	}
	if len(tags) > 0 {
		filter.TagKeys = make(map[string]struct{}, len(tags))
		for _, tag := range tags {
			filter.TagKeys[strings.ToLower(tag)] = struct{}{}
		}
	}
	return filter
}

func printStoryGroups(groups []sorting.CreativeGroup) {
	for _, group := range groups {
		fmt.Printf("%s (%d/%d)\n", group.Creative.Title, group.Creative.CompletedFrames, group.Creative.TotalFrames)
		for _, frame := range group.Frames {
			fmt.Printf("  %s\n", frameLine(&frame))
		}
	}
}

func printShootSequence(frames []model.Frame) {
	for i := range frames {
		fmt.Println(frameLine(&frames[i]))
	}
}

func frameLine(frame *model.Frame) string {
	status := " "
	if frame.Status.IsSet() {
		status = string(frame.Status)[:1]
	}
	line := fmt.Sprintf("[%s] %s", status, frame.ID)
	if description := frame.PlainDescription(); description != "" {
		line += "  " + description
	}
	if frame.ScheduledStart != "" {
		line += "  @" + frame.ScheduledStart
	}
	return line
}
