// Package onvifevents drives ONVIF pull-point event flows against a single
// Axis device: listing the events the device declares, and collecting the
// events it actually sent over a short window.
package onvifevents

import (
	"context"
	"errors"
	"time"

	"go.viam.com/rdk/logging"

	"github.com/camtools/onvifevents/device"
	"github.com/camtools/onvifevents/soap"
)

// DefaultPullWindow is how long a session waits between creating a
// subscription and pulling its messages.
const DefaultPullWindow = 10 * time.Second

type sessionState int

const (
	stateIdle sessionState = iota
	statePropertiesFetched
	stateSubscriptionCreated
	stateWaiting
	stateMessagesPulled
	stateDone
)

// Session owns one run of an event flow. States only advance; the first
// failure ends the run with no artifact for that step. A Session is not safe
// for concurrent use and cannot be reused after a flow completes or fails.
type Session struct {
	dev        *device.Device
	sink       *Sink
	logger     logging.Logger
	pullWindow time.Duration

	// sleep is swapped out in tests to avoid real waiting.
	sleep func(time.Duration)

	state          sessionState
	subscriptionID string
}

// NewSession prepares a session against dev, writing artifacts through sink.
// pullWindow <= 0 selects DefaultPullWindow.
func NewSession(dev *device.Device, sink *Sink, pullWindow time.Duration, logger logging.Logger) *Session {
	if pullWindow <= 0 {
		pullWindow = DefaultPullWindow
	}
	return &Session{
		dev:        dev,
		sink:       sink,
		logger:     logger,
		pullWindow: pullWindow,
		sleep:      time.Sleep,
		state:      stateIdle,
	}
}

// ListDeclaredEvents fetches the event properties the device declares and
// writes the response to the declared-events file.
func (s *Session) ListDeclaredEvents(ctx context.Context) error {
	if s.state != stateIdle {
		return errors.New("session already used")
	}
	s.logger.Info("calling ONVIF GetEventProperties")

	resp, err := s.dev.Send(ctx, soap.GetEventProperties())
	if err != nil {
		return err
	}
	s.state = statePropertiesFetched

	if err := s.sink.WriteDeclared(resp.Body); err != nil {
		return err
	}
	s.state = stateDone
	return nil
}

// ListSentEvents creates a pull-point subscription, waits for the pull window
// so the device can buffer events, pulls whatever fired, and writes the
// response to the sent-events file.
func (s *Session) ListSentEvents(ctx context.Context) error {
	if s.state != stateIdle {
		return errors.New("session already used")
	}
	s.logger.Info("calling ONVIF CreatePullPointSubscription")

	resp, err := s.dev.Send(ctx, soap.CreatePullPointSubscription())
	if err != nil {
		return err
	}
	id, err := soap.ExtractSubscriptionID([]byte(resp.Body))
	if err != nil {
		return err
	}
	s.subscriptionID = id
	s.state = stateSubscriptionCreated
	s.logger.Infof("subscription id: %s", id)

	s.state = stateWaiting
	s.logger.Infof("waiting %v for events to fire", s.pullWindow)
	s.sleep(s.pullWindow)
	s.logger.Info("waiting finished")

	env, err := soap.PullMessages(s.subscriptionID)
	if err != nil {
		return err
	}
	s.logger.Info("calling ONVIF PullMessages")
	resp, err = s.dev.Send(ctx, env)
	if err != nil {
		return err
	}
	s.state = stateMessagesPulled

	if err := s.sink.WriteSent(resp.Body); err != nil {
		return err
	}
	s.state = stateDone
	return nil
}
