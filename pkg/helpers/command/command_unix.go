//go:build !windows

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

package command

import (
	"context"
	"os/exec"
	"syscall"
)

// RunDetached starts name in a new process group (Setpgid) and waits
// for it to exit. If ctx is cancelled first, the entire process group
// is sent SIGTERM via the negative pgid, not just the direct child:
// the supervised streaming bridge this backs may itself fork helper
// processes, and exec.CommandContext's default cancellation only ever
// reaches the one process it started.
func (*RealExecutor) RunDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return err //nolint:wrapcheck // wrapping exec errors loses important context
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case err := <-waitErr:
		return err //nolint:wrapcheck // wrapping exec errors loses important context
	case <-ctx.Done():
		killGroup(cmd.Process.Pid)
		<-waitErr
		return ctx.Err()
	}
}

// killGroup signals the whole process group rooted at pid. It falls
// back to signalling just pid if the group lookup fails, which can
// happen if the child already exited and reaped its group.
func killGroup(pid int) {
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		_ = syscall.Kill(pid, syscall.SIGTERM)
		return
	}
	_ = syscall.Kill(-pgid, syscall.SIGTERM)
}
