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

package ticket

import (
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// Admit checks whether writing addedBytes more payload would exceed the
// capacity granted by ref (if one is present), surfacing a denial as
// vaulterr.KindResource so callers can distinguish it from a format or
// integrity failure. Once a ticket with an expiry has expired, every write
// is denied.
//
// A ticket with no capacity stated (GrantedBytes == 0) or no ticket at all
// imposes no limit: aethervault-class vaults are capacity-unbounded by
// default, the ticket only tightens that when one is bound.
func Admit(ref model.TicketRef, currentFileBytes, addedBytes uint64, nowUnix int64) error {
	if !ref.Present || ref.GrantedBytes == 0 {
		return nil
	}
	if ref.ExpiresInSecs > 0 && ref.IssuedAtUnix > 0 {
		expiry := ref.IssuedAtUnix + int64(ref.ExpiresInSecs)
		if nowUnix >= expiry {
			return vaulterr.Newf(vaulterr.KindResource, "ticket.Admit", "capacity ticket %s expired at %d", ref.TicketID, expiry)
		}
	}
	if currentFileBytes+addedBytes > ref.GrantedBytes {
		return vaulterr.Newf(vaulterr.KindResource, "ticket.Admit", "write of %d bytes would exceed granted capacity %d (currently %d)", addedBytes, ref.GrantedBytes, currentFileBytes)
	}
	return nil
}

// RemainingCapacity returns how many bytes may still be written under ref,
// or (0, false) if ref imposes no limit.
func RemainingCapacity(ref model.TicketRef, currentFileBytes uint64) (uint64, bool) {
	if !ref.Present || ref.GrantedBytes == 0 {
		return 0, false
	}
	if currentFileBytes >= ref.GrantedBytes {
		return 0, true
	}
	return ref.GrantedBytes - currentFileBytes, true
}
