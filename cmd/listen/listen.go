// Package listen implements the command that follows the realtime
// collaborator event stream.
package listen

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/slateboard/slateboard-go/internal/app"
	"github.com/slateboard/slateboard-go/internal/conf"
	"github.com/slateboard/slateboard-go/internal/events"
	"github.com/slateboard/slateboard-go/internal/stream"
)

// Command creates the listen command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Follow the realtime event stream",
		Long: "Connect to the event stream broker and apply collaborator updates " +
			"to the local cache until interrupted.",
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
			if err := a.Session.RefreshFrames(ctx); err != nil {
				return err
			}

			if err := a.Bus.RegisterConsumer(&printer{}); err != nil {
				return err
			}

			subscriber, err := stream.NewSubscriber(stream.Config{
				Broker:      settings.Stream.Broker,
				ClientID:    settings.Stream.ClientID,
				Username:    settings.Stream.Username,
				Password:    settings.Stream.Password,
				TopicPrefix: settings.Stream.TopicPrefix,
				ProjectID:   settings.Server.ProjectID,
			}, a.Session)
			if err != nil {
				return err
			}
			if err := subscriber.Connect(ctx); err != nil {
				return err
			}
			defer subscriber.Disconnect()

			fmt.Println("listening, ctrl-c to stop")
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Stream.Broker, "broker", viper.GetString("stream.broker"), "MQTT broker URL")
	cmd.Flags().StringVar(&settings.Stream.TopicPrefix, "topicprefix", viper.GetString("stream.topicprefix"), "Topic prefix for project notifications")

	return cmd
}

// printer echoes bus events to stdout while listening.
type printer struct{}

func (p *printer) Name() string { return "listen-printer" }

func (p *printer) ProcessEvent(event events.Event) error {
	switch e := event.(type) {
	case events.FrameStatusEvent:
		fmt.Printf("[%s] frame %s -> %s\n", e.Source, e.FrameID, e.Status)
	case events.ScheduleChangedEvent:
		fmt.Printf("[%s] schedule changed: %s\n", e.Source, e.ScheduleID)
	case events.FramesReloadedEvent:
		fmt.Printf("[%s] frames reloaded (%d)\n", e.Source, e.Count)
	}
	return nil
}
