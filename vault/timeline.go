/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package vault

import "github.com/launix-de/memvault/internal/timeindex"

// TimelineEntry is one (timestamp, frame_id) pair within a window.
type TimelineEntry = timeindex.Entry

// Timeline returns every indexed frame with startUTC <= anchor_ts <= endUTC,
// ascending by (timestamp, frame_id), per spec.md §4.6.
func (v *Vault) Timeline(startUTC, endUTC int64) []TimelineEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.time.Window(startUTC, endUTC)
}
