// Jukebox Core
// Copyright (c) 2026 Jukebox Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Jukebox Core.
//
// Jukebox Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Jukebox Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Jukebox Core.  If not, see <http://www.gnu.org/licenses/>.

// Package triggersource supplies the "optionally others" extra fan-in
// producer: an MQTT-backed source that turns every non-empty message
// on a configured topic (retained or not) into a playback trigger,
// without ever touching the onboard reader.
package triggersource

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rustjuke/jukebox-core/pkg/fanin"
)

// MQTTConfig configures the broker connection and trigger topic.
type MQTTConfig struct {
	BrokerURL string
	Topic     string
}

// MQTTSource publishes a fanin.TriggerInput for every message
// received on the configured topic.
type MQTTSource struct {
	client mqtt.Client
	events chan fanin.TriggerInput
}

// NewMQTTSource connects to cfg.BrokerURL and subscribes to cfg.Topic.
// The returned channel is closed when Close is called.
func NewMQTTSource(cfg MQTTConfig) (*MQTTSource, <-chan fanin.TriggerInput, error) {
	events := make(chan fanin.TriggerInput, 8)
	src := &MQTTSource{events: events}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(fmt.Sprintf("jukebox-core-%s", uuid.NewString())).
		SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(src.onMessage)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("triggersource: connect to %s: %w", cfg.BrokerURL, token.Error())
	}
	if token := client.Subscribe(cfg.Topic, 1, src.onMessage); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, nil, fmt.Errorf("triggersource: subscribe to %s: %w", cfg.Topic, token.Error())
	}

	src.client = client
	return src, events, nil
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	if len(payload) == 0 {
		log.Warn().Str("topic", msg.Topic()).Msg("triggersource: ignoring empty retained message")
		return
	}
	select {
	case s.events <- fanin.TriggerInput{UID: append([]byte(nil), payload...)}:
	default:
		log.Warn().Str("topic", msg.Topic()).Msg("triggersource: event dropped, receiver not keeping up")
	}
}

// Close disconnects from the broker and closes the event channel.
func (s *MQTTSource) Close() {
	s.client.Disconnect(250)
	close(s.events)
}
