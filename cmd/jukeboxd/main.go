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

// Command jukeboxd is the daemon entrypoint: it wires every subsystem
// in this module into one running appliance.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/warthog618/go-gpiocdev"

	"github.com/rustjuke/jukebox-core/pkg/blinker"
	"github.com/rustjuke/jukebox-core/pkg/buttons"
	"github.com/rustjuke/jukebox-core/pkg/config"
	"github.com/rustjuke/jukebox-core/pkg/effects"
	"github.com/rustjuke/jukebox-core/pkg/effects/audiosink"
	"github.com/rustjuke/jukebox-core/pkg/fanin"
	"github.com/rustjuke/jukebox-core/pkg/fanin/triggersource"
	"github.com/rustjuke/jukebox-core/pkg/helpers/command"
	"github.com/rustjuke/jukebox-core/pkg/helpers/syncutil"
	"github.com/rustjuke/jukebox-core/pkg/picc"
	"github.com/rustjuke/jukebox-core/pkg/player"
	"github.com/rustjuke/jukebox-core/pkg/supervisor"
	"github.com/rustjuke/jukebox-core/pkg/tagmapper"
	"github.com/rustjuke/jukebox-core/pkg/transformer"
)

func main() {
	configPath := flag.String("config", "/etc/jukeboxd/jukeboxd.toml", "path to the TOML process config")
	gpioChip := flag.String("gpio-chip", "gpiochip0", "GPIO character device chip name")
	ledOffset := flag.Int("led-offset", 17, "GPIO line offset driving the status LED")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Bool("deadlock_detection", syncutil.DeadlockEnabled).Msg("jukeboxd: starting")

	if err := run(*configPath, *gpioChip, *ledOffset); err != nil {
		log.Fatal().Err(err).Msg("jukeboxd: fatal startup error")
	}
}

func run(configPath, gpioChip string, ledOffset int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	snap := cfg.Snapshot()

	mapper, err := tagmapper.New(snap.TagMapperConfigurationFile)
	if err != nil {
		return err
	}

	sink, err := audiosink.New(snap.AudioBaseDirectory)
	if err != nil {
		return err
	}

	chip, err := gpiocdev.NewChip(gpioChip)
	if err != nil {
		return err
	}
	ledLine, err := chip.RequestLine(ledOffset, gpiocdev.AsOutput(0))
	if err != nil {
		return err
	}
	led := &gpioLED{line: ledLine}

	executor := &command.RealExecutor{}
	interp := effects.NewProdInterpreter(sink, led, executor)
	blink := blinker.New(led)

	jukeboxPlayer := player.New(interp, mapper, player.Config{TriggerOnlyMode: snap.TriggerOnlyMode}, nil)

	transport := &unimplementedTransport{}
	piccLoop, tagEvents := picc.New(transport, 8)

	buttonLines := []buttons.Line{
		{Chip: gpioChip, Offset: 5, Button: buttons.ButtonShutdown},
		{Chip: gpioChip, Offset: 6, Button: buttons.ButtonVolumeUp},
		{Chip: gpioChip, Offset: 13, Button: buttons.ButtonVolumeDown},
		{Chip: gpioChip, Offset: 19, Button: buttons.ButtonPauseContinue},
	}
	buttonSource, buttonEvents, err := buttons.New(buttonLines, 8)
	if err != nil {
		return err
	}

	var triggerEvents <-chan fanin.TriggerInput
	var mqttSource *triggersource.MQTTSource
	if snap.MQTTBrokerURL != "" {
		mqttSource, triggerEvents, err = triggersource.NewMQTTSource(triggersource.MQTTConfig{
			BrokerURL: snap.MQTTBrokerURL,
			Topic:     snap.MQTTTopic,
		})
		if err != nil {
			log.Warn().Err(err).Msg("jukeboxd: mqtt trigger source unavailable, continuing without it")
			triggerEvents = make(chan fanin.TriggerInput)
		}
	} else {
		triggerEvents = make(chan fanin.TriggerInput)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go piccLoop.Run(ctx)
	go buttonSource.Run(ctx)
	go interp.RunPolling(ctx)
	if mqttSource != nil {
		go func() {
			<-ctx.Done()
			mqttSource.Close()
		}()
	}

	if snap.PostInitCommand != "" {
		if err := executor.Run(ctx, "/bin/sh", "-c", snap.PostInitCommand); err != nil {
			log.Warn().Err(err).Msg("jukeboxd: post-init command failed")
		}
	}
	if snap.DeviceName != "" {
		sup := supervisor.New(supervisor.Config{
			Command:        "zaparoo-bridge",
			RespawnBackoff: 2 * time.Second,
		}, executor)
		go sup.Run(ctx)
	}

	merged := fanin.MergeInputs(buttonEvents, tagEvents, triggerEvents)
	dispatch(ctx, merged, jukeboxPlayer, blink, executor, snap)

	return nil
}

// dispatch is the command loop: it owns the locked flag and routes
// Shutdown/VolumeUp/VolumeDown/Lock/Unlock one layer above the pure
// player state machine, per spec.
func dispatch(
	ctx context.Context,
	inputs <-chan fanin.Input,
	p *player.Player,
	blink *blinker.Blinker,
	executor command.Executor,
	snap config.Values,
) {
	tr := transformer.New()
	locked := false

	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-inputs:
			if !ok {
				return
			}
			for _, cmd := range tr.Transform(in) {
				handleCommand(ctx, cmd, p, blink, executor, snap, &locked)
			}
		}
	}
}

func handleCommand(
	ctx context.Context,
	cmd transformer.Command,
	p *player.Player,
	blink *blinker.Blinker,
	executor command.Executor,
	snap config.Values,
	locked *bool,
) {
	switch cmd.Kind {
	case transformer.CommandShutdown:
		if err := executor.Run(ctx, "/bin/sh", "-c", snap.ShutdownCommand); err != nil {
			log.Error().Err(err).Msg("jukeboxd: shutdown command failed")
			return
		}
		log.Info().Msg("jukeboxd: shutdown command succeeded, exiting")
		os.Exit(0)

	case transformer.CommandVolumeUp:
		if *locked {
			return
		}
		if err := executor.Run(ctx, "/bin/sh", "-c", snap.VolumeUpCommand); err != nil {
			log.Warn().Err(err).Msg("jukeboxd: volume up command failed")
		}

	case transformer.CommandVolumeDown:
		if *locked {
			return
		}
		if err := executor.Run(ctx, "/bin/sh", "-c", snap.VolumeDownCommand); err != nil {
			log.Warn().Err(err).Msg("jukeboxd: volume down command failed")
		}

	case transformer.CommandPauseContinue:
		if err := p.HandlePauseContinue(); err != nil {
			log.Warn().Err(err).Msg("jukeboxd: pause/continue failed")
		}

	case transformer.CommandLockPlayer:
		*locked = !*locked
		if *locked {
			blink.Run(blinker.Repeat(3, blinker.Many(blinker.On(100*time.Millisecond), blinker.Off(100*time.Millisecond))))
		} else {
			blink.Stop()
		}

	case transformer.CommandPlayback:
		var req player.PlaybackRequest
		if cmd.Playback == transformer.PlaybackStart {
			req = player.PlaybackRequest{Start: cmd.Tag}
		} else {
			req = player.PlaybackRequest{Stop: true}
		}
		if *locked {
			return
		}
		if err := p.HandlePlayback(req); err != nil {
			log.Warn().Err(err).Msg("jukeboxd: playback command failed")
		}
	}
}

// gpioLED drives the status LED via a single GPIO output line.
type gpioLED struct {
	line *gpiocdev.Line
}

func (l *gpioLED) On() error  { return l.line.SetValue(1) }
func (l *gpioLED) Off() error { return l.line.SetValue(0) }

// unimplementedTransport always reports no tag present. The real
// MFRC522 SPI driver is an external collaborator outside this core's
// scope; a production build wires in a concrete Transport instead.
type unimplementedTransport struct{}

func (unimplementedTransport) DetectTag(_ context.Context) (*picc.Tag, error) {
	return nil, picc.ErrNoTag
}
