package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
id, user_id, filename, file_url, document_type, document_date, document_sender,
document_receiver, summary, clinical_codes::text, suggested_tasks::text,
patient_info::text, processing_time, status, created_at, updated_at`

// Create inserts a new processed document and returns the stored row.
func (r *PGRepo) Create(ctx context.Context, doc ProcessedDocument) (ProcessedDocument, error) {
	const query = `
INSERT INTO processed_documents (
    user_id,
    filename,
    file_url,
    document_type,
    document_date,
    document_sender,
    document_receiver,
    summary,
    clinical_codes,
    suggested_tasks,
    patient_info,
    processing_time,
    status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, created_at, updated_at`

	codes, err := encodeCodes(doc.ClinicalCodes)
	if err != nil {
		return ProcessedDocument{}, err
	}
	tasks, err := encodeTasks(doc.SuggestedTasks)
	if err != nil {
		return ProcessedDocument{}, err
	}
	patient, err := encodePatientInfo(doc.PatientInfo)
	if err != nil {
		return ProcessedDocument{}, err
	}

	status := doc.Status
	if status == "" {
		status = StatusCompleted
	}

	err = r.DB.QueryRowContext(ctx, query,
		doc.UserID,
		doc.Filename,
		doc.FileURL,
		string(doc.DocumentType),
		doc.DocumentDate,
		doc.DocumentSender,
		doc.DocumentReceiver,
		doc.Summary,
		codes,
		tasks,
		patient,
		doc.ProcessingTime,
		string(status),
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return ProcessedDocument{}, fmt.Errorf("%w: insert processed document: %v", ErrPersistence, err)
	}

	doc.Status = status
	if doc.ClinicalCodes == nil {
		doc.ClinicalCodes = []ClinicalCode{}
	}
	if doc.SuggestedTasks == nil {
		doc.SuggestedTasks = []SuggestedTask{}
	}
	return doc, nil
}

// ListByUser lists a user's documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string) ([]ProcessedDocument, error) {
	query := `
SELECT ` + selectColumns + `
FROM processed_documents
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", ErrPersistence, err)
	}
	defer rows.Close()

	out := []ProcessedDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", ErrPersistence, err)
	}
	return out, nil
}

// GetByID fetches a document by ID scoped to the owning user.
func (r *PGRepo) GetByID(ctx context.Context, userId, documentID string) (ProcessedDocument, error) {
	query := `
SELECT ` + selectColumns + `
FROM processed_documents
WHERE user_id = $1 AND id = $2
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, userId, documentID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProcessedDocument{}, ErrNotFound
		}
		return ProcessedDocument{}, err
	}
	return doc, nil
}

// Delete removes a document by ID scoped to the owning user. The stored
// object in file storage is intentionally left alone.
func (r *PGRepo) Delete(ctx context.Context, userId, documentID string) error {
	const query = `DELETE FROM processed_documents WHERE user_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, userId, documentID)
	if err != nil {
		return fmt.Errorf("%w: delete document: %v", ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete document: %v", ErrPersistence, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (ProcessedDocument, error) {
	var doc ProcessedDocument
	var docType sql.NullString
	var docDate sql.NullString
	var sender sql.NullString
	var receiver sql.NullString
	var summary sql.NullString
	var codes sql.NullString
	var tasks sql.NullString
	var patient sql.NullString
	var processingTime sql.NullFloat64

	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Filename,
		&doc.FileURL,
		&docType,
		&docDate,
		&sender,
		&receiver,
		&summary,
		&codes,
		&tasks,
		&patient,
		&processingTime,
		&doc.Status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProcessedDocument{}, err
		}
		return ProcessedDocument{}, fmt.Errorf("%w: scan document: %v", ErrPersistence, err)
	}

	doc.DocumentType = DocumentType(docType.String)
	doc.DocumentDate = docDate.String
	doc.DocumentSender = sender.String
	doc.DocumentReceiver = receiver.String
	doc.Summary = summary.String
	if processingTime.Valid {
		doc.ProcessingTime = processingTime.Float64
	}

	if doc.ClinicalCodes, err = decodeCodes(codes); err != nil {
		return ProcessedDocument{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if doc.SuggestedTasks, err = decodeTasks(tasks); err != nil {
		return ProcessedDocument{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if doc.PatientInfo, err = decodePatientInfo(patient); err != nil {
		return ProcessedDocument{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
