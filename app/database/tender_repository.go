package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PersistenceError wraps a backend failure during reconciliation of one
// record. Local to that record; callers fold it into the run's error sample.
type PersistenceError struct {
	OCID string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure for %q during %s: %v", e.OCID, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PostgresTenderRepository is the reconciliation store backed by Postgres.
type PostgresTenderRepository struct {
	db *DB
}

var _ TenderRepository = (*PostgresTenderRepository)(nil)

func NewTenderRepository(db *DB) *PostgresTenderRepository {
	return &PostgresTenderRepository{db: db}
}

// UpsertTender reconciles one normalized record by OCID. The tender row is
// inserted or fully replaced via the backend's ON CONFLICT primitive, then the
// document set is deleted and re-inserted. Both steps run in one transaction
// per record, so a tender is never visible with a half-written document set.
func (r *PostgresTenderRepository) UpsertTender(ctx context.Context, record TenderRecord) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", &PersistenceError{OCID: record.OCID, Op: "begin", Err: err}
	}
	defer tx.Rollback()

	var tenderID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tenders (
			ocid, title, description, buyer_name, buyer_email, buyer_phone,
			province, industry, value_amount, currency, submission_method,
			date_published, date_closing, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (ocid) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			buyer_name = EXCLUDED.buyer_name,
			buyer_email = EXCLUDED.buyer_email,
			buyer_phone = EXCLUDED.buyer_phone,
			province = EXCLUDED.province,
			industry = EXCLUDED.industry,
			value_amount = EXCLUDED.value_amount,
			currency = EXCLUDED.currency,
			submission_method = EXCLUDED.submission_method,
			date_published = EXCLUDED.date_published,
			date_closing = EXCLUDED.date_closing,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id
	`, record.OCID, record.Title, record.Description, record.BuyerName,
		record.BuyerEmail, record.BuyerPhone, record.Province, record.Industry,
		record.ValueAmount, record.Currency, record.SubmissionMethod,
		record.DatePublished, record.DateClosing, record.Status).Scan(&tenderID)
	if err != nil {
		return "", &PersistenceError{OCID: record.OCID, Op: "upsert tender", Err: err}
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM tender_documents WHERE tender_id = $1`, tenderID)
	if err != nil {
		return "", &PersistenceError{OCID: record.OCID, Op: "delete documents", Err: err}
	}

	for _, doc := range record.Documents {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tender_documents (
				tender_id, title, description, url, format, document_type,
				language, date_published, date_modified
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, tenderID, doc.Title, doc.Description, doc.URL, doc.Format,
			doc.DocumentType, doc.Language, doc.DatePublished, doc.DateModified)
		if err != nil {
			return "", &PersistenceError{OCID: record.OCID, Op: "insert document", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", &PersistenceError{OCID: record.OCID, Op: "commit", Err: err}
	}

	return tenderID, nil
}

const tenderColumns = `id, ocid, title, description, buyer_name, buyer_email, buyer_phone,
	       province, industry, value_amount, currency, submission_method,
	       date_published, date_closing, status, created_at, updated_at`

func scanTender(row interface{ Scan(...interface{}) error }) (*Tender, error) {
	var t Tender
	err := row.Scan(
		&t.ID, &t.OCID, &t.Title, &t.Description, &t.BuyerName, &t.BuyerEmail,
		&t.BuyerPhone, &t.Province, &t.Industry, &t.ValueAmount, &t.Currency,
		&t.SubmissionMethod, &t.DatePublished, &t.DateClosing, &t.Status,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTenderRepository) GetTenderByOCID(ctx context.Context, ocid string) (*Tender, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+tenderColumns+`
		FROM tenders
		WHERE ocid = $1
	`, ocid)

	tender, err := scanTender(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tender by ocid: %w", err)
	}
	return tender, nil
}

func (r *PostgresTenderRepository) GetDocuments(ctx context.Context, tenderID string) ([]TenderDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tender_id, title, description, url, format, document_type,
		       language, date_published, date_modified, created_at
		FROM tender_documents
		WHERE tender_id = $1
		ORDER BY created_at, id
	`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var docs []TenderDocument
	for rows.Next() {
		var d TenderDocument
		err := rows.Scan(
			&d.ID, &d.TenderID, &d.Title, &d.Description, &d.URL, &d.Format,
			&d.DocumentType, &d.Language, &d.DatePublished, &d.DateModified,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

// sortFields whitelists the sortable columns exposed at the query boundary.
var sortFields = map[string]string{
	"date_published": "date_published",
	"date_closing":   "date_closing",
	"value_amount":   "value_amount",
	"title":          "title",
}

// ListTenders runs the query boundary search: free text over title,
// description and buyer name, facet filters, ranges, whitelist-driven sort
// and pagination. Returns the page plus the unpaginated match count.
func (r *PostgresTenderRepository) ListTenders(ctx context.Context, q SearchQuery) ([]Tender, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	addCondition := func(clause string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(clause, argIndex))
		args = append(args, value)
		argIndex++
	}

	if q.Text != "" {
		pattern := "%" + q.Text + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR buyer_name ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, pattern)
		argIndex++
	}
	if q.Province != "" {
		addCondition("province = $%d", q.Province)
	}
	if q.Industry != "" {
		addCondition("industry = $%d", q.Industry)
	}
	if q.Status != "" {
		addCondition("status = $%d", q.Status)
	}
	if q.DateFrom != nil {
		addCondition("date_published >= $%d", *q.DateFrom)
	}
	if q.DateTo != nil {
		addCondition("date_published <= $%d", *q.DateTo)
	}
	if q.ValueMin != nil {
		addCondition("value_amount >= $%d", *q.ValueMin)
	}
	if q.ValueMax != nil {
		addCondition("value_amount <= $%d", *q.ValueMax)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tenders"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tenders: %w", err)
	}

	sortColumn, ok := sortFields[q.SortField]
	if !ok {
		sortColumn = "date_published"
	}
	sortOrder := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM tenders%s ORDER BY %s %s NULLS LAST LIMIT $%d OFFSET $%d",
		tenderColumns, where, sortColumn, sortOrder, argIndex, argIndex+1)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenders: %w", err)
	}
	defer rows.Close()

	var tenders []Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tender row: %w", err)
		}
		tenders = append(tenders, *tender)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tender rows: %w", err)
	}

	return tenders, total, nil
}

func (r *PostgresTenderRepository) GetTenderCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tenders").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get tender count: %w", err)
	}
	return count, nil
}

func (r *PostgresTenderRepository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus:   make(FacetCounts),
		ByProvince: make(FacetCounts),
		ByIndustry: make(FacetCounts),
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(value_amount), 0) FROM tenders
	`).Scan(&stats.Total, &stats.TotalValue)
	if err != nil {
		return nil, fmt.Errorf("failed to get tender totals: %w", err)
	}

	for column, facet := range map[string]FacetCounts{
		"status":   stats.ByStatus,
		"province": stats.ByProvince,
		"industry": stats.ByIndustry,
	} {
		if err := r.countFacet(ctx, column, facet); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (r *PostgresTenderRepository) countFacet(ctx context.Context, column string, facet FacetCounts) error {
	// column comes from a fixed caller-side set, never user input
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(*) FROM tenders GROUP BY %s", column, column))
	if err != nil {
		return fmt.Errorf("failed to count %s facet: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return fmt.Errorf("failed to scan %s facet row: %w", column, err)
		}
		facet[value] = count
	}

	return rows.Err()
}
