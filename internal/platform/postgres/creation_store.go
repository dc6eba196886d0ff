package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/charforge-api/internal/domain"
	"github.com/phrazzld/charforge-api/internal/store"
)

// PostgresCreationStore implements the store.CreationStore interface
// using a PostgreSQL database as the storage backend. Artifacts are
// stored as JSONB so the schema is indifferent to artifact kind.
type PostgresCreationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCreationStore creates a new PostgreSQL implementation of the
// CreationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewPostgresCreationStore(db store.DBTX, logger *slog.Logger) *PostgresCreationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCreationStore{
		db:     db,
		logger: logger.With(slog.String("component", "creation_store")),
	}
}

// Ensure PostgresCreationStore implements store.CreationStore interface
var _ store.CreationStore = (*PostgresCreationStore)(nil)

// artifactRecord is the JSONB wire form of a generated artifact.
type artifactRecord struct {
	Kind     string `json:"kind"`
	ImageURI string `json:"image_uri,omitempty"`
	Text     string `json:"text,omitempty"`
}

// GetByCharacterID implements store.CreationStore.GetByCharacterID.
// Returns store.ErrCreationNotFound if no creation is cached for the
// character.
func (s *PostgresCreationStore) GetByCharacterID(
	ctx context.Context,
	characterID string,
) (*domain.Creation, error) {
	query := `
		SELECT id, character_id, character_name, artifact, prompt_used, created_at
		FROM creations
		WHERE character_id = $1`

	var (
		creation     domain.Creation
		artifactJSON []byte
		createdAt    time.Time
	)
	err := s.db.QueryRowContext(ctx, query, characterID).Scan(
		&creation.ID,
		&creation.CharacterID,
		&creation.CharacterName,
		&artifactJSON,
		&creation.PromptUsed,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCreationNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get creation",
			slog.String("character_id", characterID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	var record artifactRecord
	if err := json.Unmarshal(artifactJSON, &record); err != nil {
		return nil, fmt.Errorf("%w: malformed artifact payload: %v", store.ErrInvalidEntity, err)
	}
	creation.Artifact = domain.GeneratedArtifact{
		Kind:     domain.ArtifactKind(record.Kind),
		ImageURI: record.ImageURI,
		Text:     record.Text,
	}
	creation.CreatedAt = createdAt.UTC()

	return &creation, nil
}

// Create implements store.CreationStore.Create. The insert is an
// ON CONFLICT DO NOTHING upsert keyed on character_id, so the first
// cached creation for a character wins and concurrent writers never
// fail on the unique constraint.
func (s *PostgresCreationStore) Create(ctx context.Context, creation *domain.Creation) error {
	if err := creation.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	artifactJSON, err := json.Marshal(artifactRecord{
		Kind:     string(creation.Artifact.Kind),
		ImageURI: creation.Artifact.ImageURI,
		Text:     creation.Artifact.Text,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal artifact: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO creations (id, character_id, character_name, artifact, prompt_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (character_id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		creation.ID,
		creation.CharacterID,
		creation.CharacterName,
		artifactJSON,
		creation.PromptUsed,
		creation.CreatedAt.UTC(),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to cache creation",
			slog.String("character_id", creation.CharacterID),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if rows, raErr := result.RowsAffected(); raErr == nil && rows == 0 {
		s.logger.DebugContext(ctx, "creation already cached, insert skipped",
			slog.String("character_id", creation.CharacterID))
	}

	return nil
}
