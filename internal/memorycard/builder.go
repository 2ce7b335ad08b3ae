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

package memorycard

import (
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// Option configures a card built by New.
type Option func(*model.MemoryCard)

func WithPolarity(p Polarity) Option {
	return func(c *model.MemoryCard) { c.Polarity = int8(p) }
}

func WithEventDate(unix int64) Option {
	return func(c *model.MemoryCard) { c.EventDate = unix }
}

func WithDocumentDate(unix int64) Option {
	return func(c *model.MemoryCard) { c.DocumentDate = unix }
}

func WithVersionKey(key string) Option {
	return func(c *model.MemoryCard) { c.VersionKey = key }
}

func WithRelation(r VersionRelation) Option {
	return func(c *model.MemoryCard) { c.VersionRelation = uint8(r) }
}

func WithSourceURI(uri string) Option {
	return func(c *model.MemoryCard) { c.SourceURI = uri }
}

func WithConfidence(conf float32) Option {
	return func(c *model.MemoryCard) {
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		c.Confidence = conf
	}
}

func WithSummary(summary string) Option {
	return func(c *model.MemoryCard) { c.Summary = summary }
}

// New builds a MemoryCard for the required fields plus any Options, tagging
// it with the engine that produced it and the unix time it was created.
// kind/entity/slot/value/engine/engineVersion must all be non-empty.
func New(id, sourceFrameID uint64, kind Kind, entity, slot, value, engine, engineVersion string, createdAtUnix int64, opts ...Option) (model.MemoryCard, error) {
	if entity == "" || slot == "" || value == "" || engine == "" || engineVersion == "" {
		return model.MemoryCard{}, vaulterr.Newf(vaulterr.KindSchema, "memorycard.New", "entity, slot, value, engine and engine_version are required")
	}
	c := model.MemoryCard{
		ID:            id,
		FrameID:       sourceFrameID,
		Kind:          uint8(kind),
		Entity:        entity,
		Slot:          slot,
		Value:         value,
		Polarity:      int8(PolarityUnset),
		Engine:        engine,
		EngineVer:     engineVersion,
		CreatedAtUnix: createdAtUnix,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}
