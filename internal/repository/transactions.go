package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/ourxmas/payment-service/internal/models"
)

// ListFilter narrows a transaction listing. Nil/empty fields apply no
// constraint. Content matching is a case-insensitive substring match.
type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Content   string
	Skip      int
	Limit     int
}

// DailySummary aggregates one day of stored transactions
type DailySummary struct {
	Count     int64
	AmountIn  int64
	AmountOut int64
}

// CreateTransaction inserts a transaction unless one with the same sepay_id
// already exists. The unique constraint on sepay_id is what makes concurrent
// duplicate deliveries safe; on conflict no row is written and created is
// false. On success the ID and CreatedAt fields are filled in.
func (r *Repository) CreateTransaction(tx *models.Transaction) (created bool, err error) {
	query := `
		INSERT INTO transactions (sepay_id, gateway, transaction_date, account_number, content, transfer_type, amount, reference_code, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		ON CONFLICT (sepay_id) DO NOTHING
		RETURNING id, created_at`
	err = r.db.QueryRow(query,
		tx.SepayID, tx.Gateway, tx.TransactionDate, tx.AccountNumber,
		tx.Content, tx.TransferType, tx.Amount, tx.ReferenceCode, tx.Description).
		Scan(&tx.ID, &tx.CreatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create transaction: %w", err)
	}
	return true, nil
}

// FindTransactionByID retrieves a transaction by internal identifier
func (r *Repository) FindTransactionByID(id int64) (*models.Transaction, error) {
	return r.findTransaction("id", id)
}

// FindTransactionBySepayID retrieves a transaction by gateway identifier
func (r *Repository) FindTransactionBySepayID(sepayID int64) (*models.Transaction, error) {
	return r.findTransaction("sepay_id", sepayID)
}

func (r *Repository) findTransaction(column string, value int64) (*models.Transaction, error) {
	tx := &models.Transaction{}
	query := fmt.Sprintf(`
		SELECT id, sepay_id, gateway, transaction_date, account_number, content, transfer_type, amount, reference_code, description, created_at
		FROM transactions
		WHERE %s = $1`, column)
	err := r.db.QueryRow(query, value).Scan(
		&tx.ID, &tx.SepayID, &tx.Gateway, &tx.TransactionDate, &tx.AccountNumber,
		&tx.Content, &tx.TransferType, &tx.Amount, &tx.ReferenceCode, &tx.Description, &tx.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns transactions matching the filter ordered by
// transaction date descending, along with the total match count before
// skip/limit are applied.
func (r *Repository) ListTransactions(filter ListFilter) ([]models.Transaction, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}
	if filter.Content != "" {
		args = append(args, "%"+filter.Content+"%")
		conditions = append(conditions, fmt.Sprintf("content ILIKE $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions" + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT id, sepay_id, gateway, transaction_date, account_number, content, transfer_type, amount, reference_code, description, created_at
		FROM transactions` + where + fmt.Sprintf(`
		ORDER BY transaction_date DESC, id DESC
		OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Skip, filter.Limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.SepayID, &tx.Gateway, &tx.TransactionDate, &tx.AccountNumber,
			&tx.Content, &tx.TransferType, &tx.Amount, &tx.ReferenceCode, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, total, nil
}

// SummarizeDay aggregates transactions whose transaction date falls on the
// given calendar day.
func (r *Repository) SummarizeDay(day time.Time) (DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var summary DailySummary
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(amount) FILTER (WHERE transfer_type = 'in'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE transfer_type = 'out'), 0)
		FROM transactions
		WHERE transaction_date >= $1 AND transaction_date < $2`
	err := r.db.QueryRow(query, start, end).Scan(&summary.Count, &summary.AmountIn, &summary.AmountOut)
	if err != nil {
		return DailySummary{}, fmt.Errorf("failed to summarize day: %w", err)
	}
	return summary, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
