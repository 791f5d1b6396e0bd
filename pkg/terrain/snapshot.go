package terrain

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/gzip"
)

// snapshot is the on-disk form of a terrain: the grid plus enough metadata
// to rebuild it without guessing dimensions.
type snapshot struct {
	Width    int       `cbor:"width"`
	Height   int       `cbor:"height"`
	CellSize float64   `cbor:"cellSize"`
	Water    *float64  `cbor:"water,omitempty"`
	Heights  []float32 `cbor:"heights"`
}

// Encode writes the terrain as gzip-compressed CBOR.
func (t *Terrain) Encode(w io.Writer) error {
	t.mutex.RLock()
	snap := snapshot{
		Width:    t.width,
		Height:   t.height,
		CellSize: t.cellSize,
		Heights:  t.heights,
	}
	if t.hasWater {
		level := t.water
		snap.Water = &level
	}
	t.mutex.RUnlock()

	gz := gzip.NewWriter(w)
	if err := cbor.NewEncoder(gz).Encode(snap); err != nil {
		gz.Close()
		return fmt.Errorf("encoding terrain: %w", err)
	}
	return gz.Close()
}

// Decode reads a terrain previously written with Encode.
func Decode(r io.Reader) (*Terrain, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading terrain: %w", err)
	}
	defer gz.Close()

	var snap snapshot
	if err := cbor.NewDecoder(gz).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding terrain: %w", err)
	}

	terrain, err := New(snap.Heights, snap.Width, snap.Height, snap.CellSize)
	if err != nil {
		return nil, err
	}
	if snap.Water != nil {
		terrain.SetWaterHeight(*snap.Water)
	}
	return terrain, nil
}

// Save writes the terrain to a file.
func (t *Terrain) Save(path string) error {
	var buffer bytes.Buffer
	if err := t.Encode(&buffer); err != nil {
		return err
	}
	return os.WriteFile(path, buffer.Bytes(), 0644)
}

// Load reads a terrain from a file.
func Load(path string) (*Terrain, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file)
}
