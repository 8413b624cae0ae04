package postgres

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// PostgresQuestionStore implements store.QuestionPoolStore on PostgreSQL.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a question pool store over db.
// If logger is nil, the default logger is used.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

var _ store.QuestionPoolStore = (*PostgresQuestionStore)(nil)

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

// ListPool implements store.QuestionPoolStore.
func (s *PostgresQuestionStore) ListPool(ctx context.Context, domains []string) ([]practice.Item, error) {
	query := `SELECT ` + store.QuestionColumns + ` FROM questions WHERE active`
	args := make([]any, 0, len(domains))
	if len(domains) > 0 {
		query += ` AND domain IN (` + placeholders(1, len(domains)) + `)`
		for _, d := range domains {
			args = append(args, d)
		}
	}
	query += ` ORDER BY id ASC`

	return s.query(ctx, "list pool", query, args...)
}

// GetByIDs implements store.QuestionPoolStore.
func (s *PostgresQuestionStore) GetByIDs(ctx context.Context, ids []string) ([]practice.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + store.QuestionColumns + ` FROM questions WHERE id IN (` +
		placeholders(1, len(ids)) + `) ORDER BY id ASC`

	return s.query(ctx, "get by ids", query, args...)
}

func (s *PostgresQuestionStore) query(ctx context.Context, op, query string, args ...any) ([]practice.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query question pool",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("question", op, "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var items []practice.Item
	for rows.Next() {
		item, err := store.ScanQuestion(rows)
		if err != nil {
			return nil, store.NewStoreError("question", op, "scan failed", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("question", op, "iteration failed", MapError(err))
	}

	return items, nil
}
