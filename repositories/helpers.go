package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor абстрагирует *sql.DB и *sql.Tx для методов,
// которые могут выполняться внутри чужой транзакции.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// bumpAnswerCounter атомарно инкрементирует счётчик ответа одним
// UPDATE на стороне БД. Выполняется внутри транзакции вставки
// лайка/комментария, exec — её *sql.Tx.
func bumpAnswerCounter(ctx context.Context, exec SQLExecutor, column string, answerID int) error {
	query := fmt.Sprintf(`UPDATE answers SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, column, column)
	result, err := exec.ExecContext(ctx, query, answerID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return checkAffectedRows(result, ErrAnswerNotFound)
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
