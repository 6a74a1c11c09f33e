package kumi

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger with helpers that dump index state.
type Logger struct {
	*zerolog.Logger
}

func loadGroupIntoArrayLogger(g Group, slot Slot, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Str("tags", g.Tags.String())
	dictLogger = dictLogger.Uint64("group_id", uint64(g.ID))
	dictLogger = dictLogger.Int("position", slot.Position)
	return arrayLogger.Dict(dictLogger)
}

// LogMapping logs the chains of m, one array of groups per storage.
func (l *Logger) LogMapping(m *Mapping, level zerolog.Level) {
	zeroLoggerEvent := l.WithLevel(level)
	if zeroLoggerEvent == nil {
		return
	}
	zeroLoggerEvent.Int("total_groups", m.Groups())
	zeroLoggerEvent.Int("total_storages", m.Len())
	zeroLoggerEvent.Int("inclusions", m.Edges())
	storagesLogger := zerolog.Arr()
	for i, chain := range m.Chains() {
		chainLogger := zerolog.Arr()
		for pos, g := range chain {
			chainLogger = loadGroupIntoArrayLogger(g, Slot{Storage: i, Position: pos}, chainLogger)
		}
		storagesLogger = storagesLogger.Dict(zerolog.Dict().Int("storage", i).Array("chain", chainLogger))
	}
	zeroLoggerEvent.Array("storages", storagesLogger).Msg("group mapping")
}

// LogEntity logs where e sits in every storage of x and how many groups of each
// chain it satisfies.
func (l *Logger) LogEntity(x *Index, level zerolog.Level, e Entity) error {
	if !x.Contains(e) {
		return eris.Wrapf(ErrEntityNotRegistered, "entity %d (version %d)", e.ID, e.Version)
	}
	zeroLoggerEvent := l.WithLevel(level)
	if zeroLoggerEvent == nil {
		return nil
	}
	arrayLogger := zerolog.Arr()
	for i := range x.storages {
		pos, lvl := x.placement(i, e)
		dictLogger := zerolog.Dict().Int("storage", i).Int("position", pos).Int("level", lvl)
		arrayLogger = arrayLogger.Dict(dictLogger)
	}
	zeroLoggerEvent.Uint32("entity_id", e.ID).
		Uint32("entity_version", e.Version).
		Array("placements", arrayLogger).
		Msg("entity placement")
	return nil
}
