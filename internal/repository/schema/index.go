package schema

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
)

// FieldEmbedding holds the raw float32 vector in both chunk and verse hashes.
// It is indexed under the db.DefaultVectorField alias.
const FieldEmbedding = "embedding"

// HNSW holds the vector index parameters.
type HNSW struct {
	M           int
	EFConstruct int
}

// DefaultHNSW is used when no parameters are configured.
var DefaultHNSW = HNSW{M: 16, EFConstruct: 200}

func (h HNSW) withDefaults() HNSW {
	if h.M <= 0 {
		h.M = DefaultHNSW.M
	}
	if h.EFConstruct <= 0 {
		h.EFConstruct = DefaultHNSW.EFConstruct
	}
	return h
}

// ChunkReturnFields are projected by chunk searches; the vector stays behind.
var ChunkReturnFields = []string{
	chunk.FieldChunkText, chunk.FieldFullText,
	chunk.FieldVideoID, chunk.FieldVideoTitle, chunk.FieldServiceType, chunk.FieldServiceDate,
	chunk.FieldPreacher, chunk.FieldSermonTopic, chunk.FieldBibleVerse, chunk.FieldKeywords,
	chunk.FieldChunkIndex, chunk.FieldStartChar, chunk.FieldEndChar,
	chunk.FieldStartTime, chunk.FieldEndTime,
}

// VerseReturnFields are projected by verse searches.
var VerseReturnFields = []string{
	bible.FieldBook, bible.FieldChapter, bible.FieldVerse, bible.FieldText, bible.FieldTestament,
}

func (h HNSW) params(dim int) db.HNSWParams {
	h = h.withDefaults()
	return db.HNSWParams{Dim: dim, M: h.M, EFConstruct: h.EFConstruct}
}

// ChunkIndex builds the chunk index. withText adds the BM25 field.
func ChunkIndex(ks Keyspace, dim int, hnsw HNSW, withText bool) (*db.IndexDefinition, error) {
	fields := []db.SchemaField{
		db.ExactField(chunk.FieldVideoID),
		db.TagField(chunk.FieldServiceType),
		db.ListField(chunk.FieldKeywords, chunk.KeywordSeparator),
		db.SortableNumericField(chunk.FieldServiceDateNum),
		db.NumericField(chunk.FieldChunkIndex),
	}
	if withText {
		fields = append(fields, db.KoreanTextField(chunk.FieldChunkText))
	}
	fields = append(fields, db.VectorField(FieldEmbedding, db.DefaultVectorField, hnsw.params(dim)))

	def, err := db.NewIndexDefinition(ks.ChunkIndex(), ks.ChunkPrefix(), fields...)
	if err != nil {
		return nil, fmt.Errorf("chunk index: %w", err)
	}
	return def, nil
}

// VerseIndex builds the verse index. withText adds the BM25 field.
func VerseIndex(ks Keyspace, dim int, hnsw HNSW, withText bool) (*db.IndexDefinition, error) {
	fields := []db.SchemaField{
		db.ExactField(bible.FieldBook),
		db.TagField(bible.FieldTestament),
		db.NumericField(bible.FieldChapter),
		db.NumericField(bible.FieldVerse),
	}
	if withText {
		fields = append(fields, db.KoreanTextField(bible.FieldText))
	}
	fields = append(fields, db.VectorField(FieldEmbedding, db.DefaultVectorField, hnsw.params(dim)))

	def, err := db.NewIndexDefinition(ks.VerseIndex(), ks.VersePrefix(), fields...)
	if err != nil {
		return nil, fmt.Errorf("verse index: %w", err)
	}
	return def, nil
}

// indexStore is the consumer interface for index bootstrap (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
}

// EnsureIndexes creates the chunk and verse indexes when missing.
// Existing indexes are left untouched, including their dimension.
func EnsureIndexes(ctx context.Context, s indexStore, ks Keyspace, dim int, hnsw HNSW, logger *zap.Logger) error {
	withText := s.SupportsTextSearch(ctx)
	if !withText {
		logger.Warn("Backend lacks TEXT fields, keyword search disabled")
	}

	chunkDef, err := ChunkIndex(ks, dim, hnsw, withText)
	if err != nil {
		return err
	}
	verseDef, err := VerseIndex(ks, dim, hnsw, withText)
	if err != nil {
		return err
	}

	for _, def := range []*db.IndexDefinition{chunkDef, verseDef} {
		exists, err := s.IndexExists(ctx, def.Name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists {
			logger.Debug("Index exists", zap.String("index", def.Name))
			continue
		}
		if err := s.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
		logger.Info("Index created", zap.Stringer("schema", def), zap.Int("dim", dim))
	}
	return nil
}
