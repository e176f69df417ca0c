package negamax

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// InvalidHash marks an empty slot. Reaching it would take a bar with 0xFFFF
// rows and 0xFFFF columns, which board.NewBar does not allow.
const InvalidHash = uint64(0xffffffff)

// MaxProbeAttempts is how many occupied slots Insert walks past before it
// gives up on storing an entry.
const MaxProbeAttempts = 100

const (
	DefaultCapacity = 100000
	MinCapacity     = 1024
	// 8 bytes of hash + 4 of score, padded.
	entrySize = 16
)

type TableEntry struct {
	hash  uint64
	score float32
}

func (t TableEntry) valid() bool {
	return t.hash != InvalidHash
}

func (t TableEntry) Hash() uint64 {
	return t.hash
}

func (t TableEntry) Score() float32 {
	return t.score
}

var emptyEntry = TableEntry{hash: InvalidHash}

// TranspositionTable is a fixed-size open-addressed map from bar
// fingerprint to score, with linear probing. It never grows and never
// evicts; once every slot is taken it stops answering lookups and refuses
// inserts. It is not safe for concurrent use.
type TranspositionTable struct {
	table      []TableEntry
	created    int
	probeLimit int

	lookups       uint64
	hits          uint64
	probeFailures uint64
	refused       uint64
	warnedFull    bool
}

func NewTranspositionTable(capacity int) *TranspositionTable {
	if capacity < 1 {
		log.Warn().Int("capacity", capacity).Int("using", DefaultCapacity).Msg("bad-transposition-table-capacity")
		capacity = DefaultCapacity
	}
	t := &TranspositionTable{
		table:      make([]TableEntry, capacity),
		probeLimit: MaxProbeAttempts,
	}
	t.Reset()
	return t
}

// CapacityForMemory returns the number of slots that fit in the given
// fraction of total system memory.
func CapacityForMemory(fractionOfMemory float64) int {
	totalMem := memory.TotalMemory()
	desiredNElems := int(fractionOfMemory * (float64(totalMem) / float64(entrySize)))
	if desiredNElems < MinCapacity {
		desiredNElems = MinCapacity
	}
	log.Debug().Int("num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", desiredNElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")
	return desiredNElems
}

// SetProbeLimit changes how far Insert probes before giving up.
func (t *TranspositionTable) SetProbeLimit(n int) {
	if n < 1 {
		n = 1
	}
	t.probeLimit = n
}

func (t *TranspositionTable) Capacity() int {
	return len(t.table)
}

func (t *TranspositionTable) Len() int {
	return t.created
}

func (t *TranspositionTable) Saturated() bool {
	return t.created >= len(t.table)
}

func (t *TranspositionTable) home(hash uint64) int {
	return int(hash % uint64(len(t.table)))
}

// Lookup returns the entry stored for hash. A saturated table always misses.
func (t *TranspositionTable) Lookup(hash uint64) (TableEntry, bool) {
	if t.Saturated() {
		t.warnFull("lookup")
		return emptyEntry, false
	}
	t.lookups++
	idx := t.home(hash)
	// There is always an empty slot somewhere, so this ends.
	for {
		entry := t.table[idx]
		if !entry.valid() {
			return emptyEntry, false
		}
		if entry.hash == hash {
			t.hits++
			return entry, true
		}
		idx++
		if idx == len(t.table) {
			idx = 0
		}
	}
}

// Insert stores score under hash in the first free slot at or after the
// hash's home slot. If hash is already present its score is replaced. The
// insert is dropped when the table is saturated or when probeLimit slots
// in a row are occupied; the caller then simply recomputes later.
func (t *TranspositionTable) Insert(hash uint64, score float32) (TableEntry, bool) {
	if hash == InvalidHash {
		log.Warn().Msg("refusing-to-store-invalid-hash")
		return emptyEntry, false
	}
	if t.Saturated() {
		t.refused++
		t.warnFull("insert")
		return emptyEntry, false
	}
	idx := t.home(hash)
	attempts := 0
	for t.table[idx].valid() && t.table[idx].hash != hash {
		attempts++
		if attempts >= t.probeLimit {
			t.probeFailures++
			log.Warn().Uint64("hash", hash).Int("attempts", attempts).Msg("probe-limit-exceeded")
			return emptyEntry, false
		}
		idx++
		if idx == len(t.table) {
			idx = 0
		}
	}
	if !t.table[idx].valid() {
		t.created++
	}
	t.table[idx] = TableEntry{hash: hash, score: score}
	return t.table[idx], true
}

// warnFull logs at warn level the first time the table is found full and
// at debug level after that, so a long search does not flood the log.
func (t *TranspositionTable) warnFull(op string) {
	if t.warnedFull {
		log.Debug().Str("op", op).Msg("transposition-table-full")
		return
	}
	t.warnedFull = true
	log.Warn().Int("capacity", len(t.table)).Str("op", op).Msg("transposition-table-full")
}

// Reset empties every slot and zeroes the counters.
func (t *TranspositionTable) Reset() {
	for i := range t.table {
		t.table[i] = emptyEntry
	}
	t.created = 0
	t.lookups = 0
	t.hits = 0
	t.probeFailures = 0
	t.refused = 0
	t.warnedFull = false
}

// Stats is a snapshot of the table's counters.
type Stats struct {
	Capacity      int
	Created       int
	Lookups       uint64
	Hits          uint64
	ProbeFailures uint64
	Refused       uint64
}

func (t *TranspositionTable) Stats() Stats {
	return Stats{
		Capacity:      len(t.table),
		Created:       t.created,
		Lookups:       t.lookups,
		Hits:          t.hits,
		ProbeFailures: t.probeFailures,
		Refused:       t.refused,
	}
}
