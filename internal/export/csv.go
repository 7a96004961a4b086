package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alvaroquispe1998/email-generator/internal/schema"
)

// DefaultChunkSize is the most rows the directory portal imports per file.
const DefaultChunkSize = 249

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Chunk is one serialized import file, ready to download or write to disk.
type Chunk struct {
	Name string
	Data []byte
}

// Batcher serializes eligible records the way the portal wants them: UTF-8
// with BOM, comma delimited, CRLF line endings, header row per file, at most
// ChunkSize data rows per file.
type Batcher struct {
	BaseName  string
	ChunkSize int
}

func NewBatcher(baseName string, chunkSize int) *Batcher {
	if baseName == "" {
		baseName = "contactos"
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Batcher{BaseName: baseName, ChunkSize: chunkSize}
}

// Batch splits records in order into files. A single chunk keeps the plain
// base name; more than one gets a 1-based part suffix. No records, no files.
func (b *Batcher) Batch(records []schema.Record) ([]Chunk, error) {
	if len(records) == 0 {
		return nil, nil
	}

	total := (len(records) + b.ChunkSize - 1) / b.ChunkSize
	chunks := make([]Chunk, 0, total)

	for part := 0; part < total; part++ {
		start := part * b.ChunkSize
		end := start + b.ChunkSize
		if end > len(records) {
			end = len(records)
		}

		data, err := b.serialize(records[start:end])
		if err != nil {
			return nil, err
		}

		name := b.BaseName + ".csv"
		if total > 1 {
			name = fmt.Sprintf("%s_%d.csv", b.BaseName, part+1)
		}
		chunks = append(chunks, Chunk{Name: name, Data: data})
	}

	return chunks, nil
}

func (b *Batcher) serialize(records []schema.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(bomUTF8)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(schema.Columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.Values()); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", rec.RowNumber, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to serialize chunk: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDir persists the chunks into dir, creating it if needed.
func WriteDir(dir string, chunks []Chunk) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, chunk := range chunks {
		if err := os.WriteFile(filepath.Join(dir, chunk.Name), chunk.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", chunk.Name, err)
		}
	}
	return nil
}
