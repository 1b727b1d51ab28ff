package documents

import (
	"context"
	"errors"
	"testing"
)

func TestSaveProcessedBuildsCompletedRow(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	res := Analysis{
		DocumentType: TypeDischargeSummary,
		DocumentDate: "2025-05-20",
		Summary:      "Discharged after observation.",
		ClinicalCodes: []ClinicalCode{
			{Title: "Chest pain", Code: "R07.4", Confidence: ConfidenceLow},
		},
		ProcessingTime: 6.1,
	}

	doc, err := svc.SaveProcessed(context.Background(), "user-1", "discharge.pdf", "https://files.example/d", res)
	if err != nil {
		t.Fatalf("SaveProcessed: %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if doc.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %q", doc.Status)
	}
	if doc.SuggestedTasks == nil {
		t.Fatalf("suggested tasks must be non-nil even when the analyzer returns none")
	}

	docs, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != doc.ID {
		t.Fatalf("stored document not listed: %+v", docs)
	}
}

func TestSaveProcessedRejectsMissingFields(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	if _, err := svc.SaveProcessed(context.Background(), "", "a.pdf", "url", Analysis{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty user, got %v", err)
	}
	if _, err := svc.SaveProcessed(context.Background(), "user-1", "", "url", Analysis{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty filename, got %v", err)
	}
	if _, err := svc.SaveProcessed(context.Background(), "user-1", "a.pdf", "  ", Analysis{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty file url, got %v", err)
	}
}

func TestListScopesToUser(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	if _, err := svc.SaveProcessed(context.Background(), "user-1", "mine.pdf", "u1", Analysis{}); err != nil {
		t.Fatalf("SaveProcessed: %v", err)
	}
	if _, err := svc.SaveProcessed(context.Background(), "user-2", "theirs.pdf", "u2", Analysis{}); err != nil {
		t.Fatalf("SaveProcessed: %v", err)
	}

	docs, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].Filename != "mine.pdf" {
		t.Fatalf("list crossed user boundary: %+v", docs)
	}

	empty, err := svc.List(context.Background(), "user-3")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected non-nil empty list, got %#v", empty)
	}
}

func TestDeleteScopesToUser(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	doc, err := svc.SaveProcessed(context.Background(), "user-1", "mine.pdf", "u1", Analysis{})
	if err != nil {
		t.Fatalf("SaveProcessed: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
