// Jukebox Core
// Copyright (c) 2025 Jukebox Core Contributors.
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

// Package command abstracts exec.Command so GenericCommand effects and
// the supervisor's child process can be driven against a fake in tests
// instead of spawning real processes.
package command

import (
	"context"
	"os/exec"
)

// Executor runs the two shapes of subprocess this daemon needs: a
// short-lived shell command (GenericCommand effects, volume/shutdown
// commands) and a long-lived supervised child (the optional streaming
// bridge), which is launched in its own process group so a lost device
// id or a shutdown can tear down everything it forked, not just itself.
type Executor interface {
	// Run executes a command and waits for it to complete. Returns an
	// error if the command fails to start or exits with non-zero status.
	Run(ctx context.Context, name string, args ...string) error

	// RunDetached runs name in its own process group and waits for it
	// to complete. On ctx cancellation, the whole process group is
	// signalled rather than just the direct child, so a supervised
	// bridge process that has forked helpers of its own is fully torn
	// down instead of being orphaned.
	RunDetached(ctx context.Context, name string, args ...string) error
}

// RealExecutor uses actual exec.Command to execute system commands.
// This is the production implementation used in normal operation.
type RealExecutor struct{}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
