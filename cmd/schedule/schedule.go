// Package schedule implements the command that prints the project's
// active shooting schedule.
package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slateboard/slateboard-go/internal/app"
	"github.com/slateboard/slateboard-go/internal/conf"
	sched "github.com/slateboard/slateboard-go/internal/schedule"
)

// Command creates the schedule command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the project's active shooting schedule",
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

			active, err := a.Session.ActiveSchedule(ctx)
			if err != nil {
				return err
			}
			if active == nil || active.Empty() {
				fmt.Println("no schedule")
				return nil
			}

			printSchedule(active)
			return nil
		},
	}
}

func printSchedule(s *sched.Schedule) {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	fmt.Println(name)

	if len(s.Items) > 0 {
		for i := range s.Items {
			printItem(&s.Items[i])
		}
		return
	}
	printGroups(s.Groups, "  ")
}

func printItem(item *sched.ScheduleItem) {
	title := item.Title
	if title == "" {
		title = item.ID
	}
	if item.Date != "" {
		title += " (" + item.Date + ")"
	}
	fmt.Printf("  %s\n", title)
	printGroups(item.Groups, "    ")
}

func printGroups(groups []sched.ScheduleGroup, indent string) {
	for _, group := range groups {
		if group.Title != "" {
			fmt.Printf("%s%s\n", indent, group.Title)
		}
		for _, block := range group.Blocks {
			switch block.Type {
			case sched.BlockTitle:
				fmt.Printf("%s-- %s\n", indent, block.Title)
			case sched.BlockShot:
				line := indent + "shot"
				if block.CalculatedStart != "" {
					line += " @" + block.CalculatedStart
				}
				if block.Duration > 0 {
					line += fmt.Sprintf(" (%dm)", block.Duration)
				}
				if len(block.Storyboards) > 0 {
					line += " frames: "
					for i, id := range block.Storyboards {
						if i > 0 {
							line += ", "
						}
						line += id
					}
				}
				fmt.Println(line)
			}
		}
	}
}
