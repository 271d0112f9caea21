package rules

import (
	"math/rand"
	"sync"

	"github.com/bszcz/mt19937_64"
)

// zobristTable holds one random key per (cell, color) for a board shape.
type zobristTable struct {
	width int
	keys  []uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[[2]int]*zobristTable
}

var zobristTables = &zobristStore{tables: make(map[[2]int]*zobristTable)}

// zobristFor returns the key table for a width x height board. Keys are
// generated from a fixed seed so hashes are stable across runs.
func zobristFor(width, height int) *zobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	shape := [2]int{width, height}
	if table, ok := zobristTables.tables[shape]; ok {
		return table
	}
	src := mt19937_64.New()
	src.Seed(int64(0x5eed<<16 | width<<8 | height))
	rng := rand.New(src)
	table := &zobristTable{width: width, keys: make([]uint64, width*height*2)}
	for i := range table.keys {
		table.keys[i] = rng.Uint64()
	}
	zobristTables.tables[shape] = table
	return table
}

func (z *zobristTable) key(c Cell, color Color) uint64 {
	idx := (c.Y*z.width + c.X) * 2
	if color == White {
		idx++
	}
	return z.keys[idx]
}
