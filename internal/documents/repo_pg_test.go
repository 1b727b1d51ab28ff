package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateReturnsServerAssignedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO processed_documents").
		WithArgs(
			"user-1",
			"report.pdf",
			"https://files.example/signed",
			"lab_report",
			"2025-06-01",
			"City Lab",
			"Dr Patel",
			"Normal full blood count.",
			sqlmock.AnyArg(), // clinical_codes
			sqlmock.AnyArg(), // suggested_tasks
			sqlmock.AnyArg(), // patient_info
			4.2,
			"completed",
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("doc-1", now, now))

	doc, err := repo.Create(context.Background(), ProcessedDocument{
		UserID:           "user-1",
		Filename:         "report.pdf",
		FileURL:          "https://files.example/signed",
		DocumentType:     TypeLabReport,
		DocumentDate:     "2025-06-01",
		DocumentSender:   "City Lab",
		DocumentReceiver: "Dr Patel",
		Summary:          "Normal full blood count.",
		ClinicalCodes: []ClinicalCode{
			{Title: "FBC normal", Code: "42R..", Confidence: ConfidenceHigh},
		},
		ProcessingTime: 4.2,
		Status:         StatusCompleted,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Fatalf("expected server-assigned id, got %q", doc.ID)
	}
	if doc.SuggestedTasks == nil {
		t.Fatalf("suggested tasks must never be nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserDecodesCollections(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	cols := []string{
		"id", "user_id", "filename", "file_url", "document_type", "document_date",
		"document_sender", "document_receiver", "summary", "clinical_codes",
		"suggested_tasks", "patient_info", "processing_time", "status",
		"created_at", "updated_at",
	}
	rows := sqlmock.NewRows(cols).
		AddRow(
			"doc-2", "user-1", "later.pdf", "https://files.example/2", "prescription",
			"2025-06-02", "", "", "Repeat prescription.",
			`[{"title":"Amoxicillin","code":"a1","description":"","confidence":"high"}]`,
			`[]`, nil, 2.5, "completed", now, now,
		).
		AddRow(
			"doc-1", "user-1", "earlier.pdf", "https://files.example/1", "lab_report",
			"2025-06-01", "", "", "Bloods.",
			`[]`,
			`[{"task_type":"follow_up","description":"call patient","priority":"medium","assigned_to":"Nurse"}]`,
			`{"name":"Jane Smith"}`, 4.0, "completed", now.Add(-time.Hour), now.Add(-time.Hour),
		)

	mock.ExpectQuery("SELECT (.+) FROM processed_documents").
		WithArgs("user-1").
		WillReturnRows(rows)

	docs, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "doc-2" {
		t.Fatalf("expected newest first, got %q", docs[0].ID)
	}
	if len(docs[0].ClinicalCodes) != 1 || docs[0].ClinicalCodes[0].Code != "a1" {
		t.Fatalf("clinical codes not decoded: %+v", docs[0].ClinicalCodes)
	}
	if docs[0].SuggestedTasks == nil || len(docs[0].SuggestedTasks) != 0 {
		t.Fatalf("empty task collection must decode to non-nil empty slice")
	}
	if docs[0].PatientInfo != nil {
		t.Fatalf("absent patient info must decode to nil")
	}
	if docs[1].PatientInfo == nil || docs[1].PatientInfo.Name != "Jane Smith" {
		t.Fatalf("patient info not decoded: %+v", docs[1].PatientInfo)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	cols := []string{
		"id", "user_id", "filename", "file_url", "document_type", "document_date",
		"document_sender", "document_receiver", "summary", "clinical_codes",
		"suggested_tasks", "patient_info", "processing_time", "status",
		"created_at", "updated_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM processed_documents").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows(cols))

	docs, err := repo.ListByUser(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if docs == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestPGRepoDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("DELETE FROM processed_documents").
		WithArgs("user-1", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectExec("DELETE FROM processed_documents").
		WithArgs("user-1", "doc-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-1", "doc-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
