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

package catalog

import "github.com/launix-de/memvault/internal/model"

// Promote moves every record currently parked in the WAL into the
// authoritative segment catalog and clears the WAL, per spec.md §4.8: the
// WAL only exists to survive a crash between "segment bytes appended" and
// "TOC committed"; once the TOC write succeeds the WAL's job is done.
func Promote(cat *model.SegmentCatalog, w *WAL) {
	for _, ref := range w.Records {
		switch ref.Catalog {
		case "lex":
			cat.LexSegments = append(cat.LexSegments, ref.Desc)
		case "vec":
			cat.VecSegments = append(cat.VecSegments, ref.Desc)
		case "time":
			cat.TimeSegments = append(cat.TimeSegments, ref.Desc)
		}
		if ref.Desc.SegmentID >= cat.NextSegmentID {
			cat.NextSegmentID = ref.Desc.SegmentID + 1
		}
	}
	w.Truncate()
}

// NextSegmentID reserves and returns the next segment id, advancing the
// catalog's monotonic counter.
func NextSegmentID(cat *model.SegmentCatalog) uint64 {
	id := cat.NextSegmentID
	cat.NextSegmentID++
	return id
}
