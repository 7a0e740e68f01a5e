// Package stream consumes the realtime collaborator event stream over
// MQTT. Pushed frame status changes flow into the session through the
// same apply path as locally issued updates, tagged remote-origin, so
// view consumers can react to collaborator changes without fighting the
// user's own actions.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/slateboard/slateboard-go/internal/events"
	"github.com/slateboard/slateboard-go/internal/logging"
	"github.com/slateboard/slateboard-go/internal/model"
)

// Handler receives parsed remote notifications. Implemented by the
// session.
type Handler interface {
	ApplyRemoteStatus(projectID, frameID string, status model.FrameStatus)
	ScheduleChanged(scheduleID string, origin events.Origin)
}

// Config holds subscriber settings.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	ProjectID   string

	ConnectTimeout time.Duration
}

// Subscriber maintains the broker connection and routes notifications to
// the handler.
type Subscriber struct {
	config  Config
	handler Handler
	log     *slog.Logger

	mu     sync.Mutex
	client mqtt.Client
}

// NewSubscriber creates a subscriber for one project's notification
// topics.
func NewSubscriber(config Config, handler Handler) (*Subscriber, error) {
	if config.Broker == "" {
		return nil, fmt.Errorf("stream broker is not configured")
	}
	if config.ProjectID == "" {
		return nil, fmt.Errorf("stream project id is empty")
	}
	if config.ClientID == "" {
		config.ClientID = "slateboard-" + config.ProjectID
	}
	if config.TopicPrefix == "" {
		config.TopicPrefix = "slateboard"
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}

	return &Subscriber{
		config:  config,
		handler: handler,
		log:     logging.ForService("stream"),
	}, nil
}

// Connect establishes the broker connection and subscribes to the
// project's topics. Reconnects and resubscription are handled by the
// underlying client.
func (s *Subscriber) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := url.Parse(s.config.Broker)
	if err != nil {
		return fmt.Errorf("invalid broker URL: %w", err)
	}
	host := u.Hostname()
	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return fmt.Errorf("failed to resolve broker hostname %s: %w", host, err)
		}
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.config.Broker)
	opts.SetClientID(s.config.ClientID)
	opts.SetUsername(s.config.Username)
	opts.SetPassword(s.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(s.onConnectionLost)

	s.client = mqtt.NewClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(s.config.ConnectTimeout) {
		return fmt.Errorf("broker connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("broker connection error: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (s *Subscriber) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil && s.client.IsConnected()
}

// Disconnect closes the broker connection.
func (s *Subscriber) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// topic builds the full topic for one notification name.
func (s *Subscriber) topic(name string) string {
	return s.config.TopicPrefix + "/" + s.config.ProjectID + "/" + name
}

// onConnect runs on every (re)connect, so subscriptions survive broker
// restarts.
func (s *Subscriber) onConnect(client mqtt.Client) {
	s.log.Info("connected to event stream", "broker", s.config.Broker, "project", s.config.ProjectID)

	for _, name := range []string{topicFrameStatus, topicScheduleChanged} {
		topic := s.topic(name)
		token := client.Subscribe(topic, 1, s.onMessage)
		if !token.WaitTimeout(10 * time.Second) {
			s.log.Error("subscription timeout", "topic", topic)
			continue
		}
		if err := token.Error(); err != nil {
			s.log.Error("subscription failed", "topic", topic, "error", err)
		}
	}
}

func (s *Subscriber) onConnectionLost(client mqtt.Client, err error) {
	s.log.Warn("event stream connection lost", "broker", s.config.Broker, "error", err)
}

func (s *Subscriber) onMessage(client mqtt.Client, msg mqtt.Message) {
	s.route(msg.Topic(), msg.Payload())
}

// route dispatches one notification by the topic's last segment.
func (s *Subscriber) route(topic string, payload []byte) {
	name := topic
	if i := strings.LastIndexByte(topic, '/'); i >= 0 {
		name = topic[i+1:]
	}

	switch name {
	case topicFrameStatus:
		notification, err := parseStatusNotification(payload)
		if err != nil {
			s.log.Warn("dropping malformed status notification", "topic", topic, "error", err)
			return
		}
		projectID := notification.ProjectID
		if projectID == "" {
			projectID = s.config.ProjectID
		}
		s.handler.ApplyRemoteStatus(projectID, notification.FrameID, notification.Status)

	case topicScheduleChanged:
		scheduleID, err := parseScheduleNotification(payload)
		if err != nil {
			s.log.Warn("dropping malformed schedule notification", "topic", topic, "error", err)
			return
		}
		s.handler.ScheduleChanged(scheduleID, events.OriginRemote)

	default:
		s.log.Debug("ignoring notification on unknown topic", "topic", topic)
	}
}
