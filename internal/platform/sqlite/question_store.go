package sqlite

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/store"
)

// QuestionStore implements store.QuestionPoolStore on SQLite.
type QuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewQuestionStore creates a question pool store over db.
func NewQuestionStore(db store.DBTX, logger *slog.Logger) *QuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

var _ store.QuestionPoolStore = (*QuestionStore)(nil)

func inClause(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

// ListPool implements store.QuestionPoolStore.
func (s *QuestionStore) ListPool(ctx context.Context, domains []string) ([]practice.Item, error) {
	query := `SELECT ` + store.QuestionColumns + ` FROM questions WHERE active = 1`
	args := make([]any, 0, len(domains))
	if len(domains) > 0 {
		query += ` AND domain IN ` + inClause(len(domains))
		for _, d := range domains {
			args = append(args, d)
		}
	}
	query += ` ORDER BY id ASC`
	return s.query(ctx, "list pool", query, args...)
}

// GetByIDs implements store.QuestionPoolStore.
func (s *QuestionStore) GetByIDs(ctx context.Context, ids []string) ([]practice.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + store.QuestionColumns + ` FROM questions WHERE id IN ` +
		inClause(len(ids)) + ` ORDER BY id ASC`
	return s.query(ctx, "get by ids", query, args...)
}

// Insert adds questions to the pool. It backs seeding and tests; the review
// engine itself only reads the pool.
func (s *QuestionStore) Insert(ctx context.Context, items ...practice.Item) error {
	for _, item := range items {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO questions (`+store.QuestionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, item.Domain, string(item.Difficulty), item.Concept, item.ModuleID, store.JoinTags(item.Tags))
		if err != nil {
			return store.NewStoreError("question", "insert", item.ID, MapError(err))
		}
	}
	return nil
}

func (s *QuestionStore) query(ctx context.Context, op, query string, args ...any) ([]practice.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query question pool",
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
