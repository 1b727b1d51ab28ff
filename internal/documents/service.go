package documents

import (
	"context"
	"strings"
)

// Service contains business logic for processed documents.
type Service struct {
	Repo Repo
}

// SaveProcessed combines upload metadata with the analyzer's result and
// inserts exactly one completed row. Nothing is persisted for failed runs;
// failures earlier in the pipeline never reach this point.
func (s *Service) SaveProcessed(ctx context.Context, userId, filename, fileURL string, res Analysis) (ProcessedDocument, error) {
	if strings.TrimSpace(userId) == "" || strings.TrimSpace(filename) == "" || strings.TrimSpace(fileURL) == "" {
		return ProcessedDocument{}, ErrInvalidInput
	}

	doc := ProcessedDocument{
		UserID:           userId,
		Filename:         filename,
		FileURL:          fileURL,
		DocumentType:     res.DocumentType,
		DocumentDate:     res.DocumentDate,
		DocumentSender:   res.DocumentSender,
		DocumentReceiver: res.DocumentReceiver,
		Summary:          res.Summary,
		ClinicalCodes:    res.ClinicalCodes,
		SuggestedTasks:   res.SuggestedTasks,
		PatientInfo:      res.PatientInfo,
		ProcessingTime:   res.ProcessingTime,
		Status:           StatusCompleted,
	}
	if doc.ClinicalCodes == nil {
		doc.ClinicalCodes = []ClinicalCode{}
	}
	if doc.SuggestedTasks == nil {
		doc.SuggestedTasks = []SuggestedTask{}
	}

	return s.Repo.Create(ctx, doc)
}

// List returns all documents for a user, newest first. Empty, never nil.
func (s *Service) List(ctx context.Context, userId string) ([]ProcessedDocument, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, ErrInvalidInput
	}
	docs, err := s.Repo.ListByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []ProcessedDocument{}
	}
	return docs, nil
}

// Get returns one document scoped to the owning user.
func (s *Service) Get(ctx context.Context, userId, documentID string) (ProcessedDocument, error) {
	if strings.TrimSpace(userId) == "" || strings.TrimSpace(documentID) == "" {
		return ProcessedDocument{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// Delete removes one document scoped to the owning user. The uploaded object
// in file storage is not cascaded.
func (s *Service) Delete(ctx context.Context, userId, documentID string) error {
	if strings.TrimSpace(userId) == "" || strings.TrimSpace(documentID) == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userId, documentID)
}
