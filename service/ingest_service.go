package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Regeleardealului/diabetes-agent/database"
	"github.com/Regeleardealului/diabetes-agent/repository"
	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/google/uuid"
)

// recordNamespace seeds the UUIDv5 derivation of record IDs. Fixed
// forever: changing it would orphan every record already indexed.
var recordNamespace = uuid.MustParse("4b9acde2-8f05-44f5-9be3-7a6c9c4b8d21")

// RecordID derives the deterministic index ID for a chunk from its
// source, page and sequence. Re-ingesting an unchanged corpus produces
// the same IDs, so records are overwritten instead of duplicated.
func RecordID(source string, page, seq int) string {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%s:%d:%d", source, page, seq))).String()
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Documents    int   // documents ingested
	Skipped      int   // documents skipped after errors
	Chunks       int   // chunks embedded and upserted
	IndexRecords int64 // records in the index after the run
}

// IngestService walks a document directory and feeds the vector index:
// load, chunk, embed, upsert.
type IngestService struct {
	repo      *repository.DocumentRepo
	chunker   *ChunkerService
	embedder  Embedder
	index     database.VectorIndex
	batchSize int
}

func NewIngestService(repo *repository.DocumentRepo, chunker *ChunkerService, embedder Embedder, index database.VectorIndex, batchSize int) *IngestService {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &IngestService{
		repo:      repo,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
	}
}

// Run ingests every supported document under the source directory. A
// failing document is logged and skipped so one bad file cannot sink
// the run; the run itself fails only when the directory cannot be
// listed, the schema cannot be ensured, or every document fails.
func (s *IngestService) Run(ctx context.Context) (*IngestReport, error) {
	paths, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	report := &IngestReport{}
	if len(paths) == 0 {
		log.Printf("Warning: no documents found in %s, nothing to ingest", s.repo.Dir())
		return report, nil
	}

	if err := s.index.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	for _, path := range paths {
		chunks, err := s.ingestDocument(ctx, path)
		if err != nil {
			log.Printf("Warning: skipping %s: %v", path, err)
			report.Skipped++
			continue
		}
		report.Documents++
		report.Chunks += chunks
	}

	if report.Documents == 0 {
		return report, fmt.Errorf("ingest: %w: all %d documents failed", types.ErrIngest, report.Skipped)
	}

	if count, err := s.index.Count(ctx); err != nil {
		log.Printf("Warning: failed to read index count: %v", err)
	} else {
		report.IndexRecords = count
	}

	return report, nil
}

func (s *IngestService) ingestDocument(ctx context.Context, path string) (int, error) {
	doc, err := s.repo.Load(path)
	if err != nil {
		return 0, err
	}

	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return 0, err
	}
	log.Printf("Loaded %s: %d pages, %d chunks", doc.Source, len(doc.Pages), len(chunks))

	for i := 0; i < len(chunks); i += s.batchSize {
		end := i + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = chunk.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks %d-%d: %w", i, end, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("embed chunks %d-%d: %w: got %d vectors for %d chunks",
				i, end, types.ErrServiceUnavailable, len(vectors), len(batch))
		}

		records := make([]types.IndexRecord, len(batch))
		for j, chunk := range batch {
			records[j] = types.IndexRecord{
				ID:     RecordID(chunk.Source, chunk.Page, chunk.Seq),
				Vector: vectors[j],
				Text:   chunk.Text,
				Source: chunk.Source,
				Page:   chunk.Page,
			}
		}

		if err := s.index.Upsert(ctx, records); err != nil {
			return 0, fmt.Errorf("upsert records %d-%d: %w", i, end, err)
		}
	}

	return len(chunks), nil
}
