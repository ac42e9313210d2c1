//go:build linux
// +build linux

/*
rasched — 5G NR MAC random access scheduler in Go
Copyright (C) 2026  The rasched authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package executor

import (
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// setAffinity binds the calling OS thread to one CPU core. The caller must
// already hold runtime.LockOSThread. Failure is logged and ignored; the
// slot loop runs unpinned.
func setAffinity(core int, logger zerolog.Logger) {
	var cpuSet unix.CPUSet
	cpuSet.Zero()
	cpuSet.Set(core)

	tid := unix.Gettid()
	if err := unix.SchedSetaffinity(tid, &cpuSet); err != nil {
		logger.Warn().Err(err).Int("core", core).Int("tid", tid).
			Msg("failed to set CPU affinity")
		return
	}
	logger.Info().Int("core", core).Int("tid", tid).Msg("scheduling thread pinned")
}
