package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo, used when no database
// is configured (dev) and in tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]ProcessedDocument // userId -> documents
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]ProcessedDocument),
		now:  time.Now,
	}
}

// Create stores a document, assigning id and timestamps.
func (r *MemoryRepo) Create(ctx context.Context, doc ProcessedDocument) (ProcessedDocument, error) {
	if err := ctx.Err(); err != nil {
		return ProcessedDocument{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc.ID = uuid.NewString()
	doc.CreatedAt = r.now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	if doc.Status == "" {
		doc.Status = StatusCompleted
	}
	if doc.ClinicalCodes == nil {
		doc.ClinicalCodes = []ClinicalCode{}
	}
	if doc.SuggestedTasks == nil {
		doc.SuggestedTasks = []SuggestedTask{}
	}

	r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	return doc, nil
}

// ListByUser returns a user's documents, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string) ([]ProcessedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	userDocs := r.data[userId]
	r.mu.RUnlock()

	docs := make([]ProcessedDocument, len(userDocs))
	copy(docs, userDocs)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// GetByID returns a document by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, documentID string) (ProcessedDocument, error) {
	if err := ctx.Err(); err != nil {
		return ProcessedDocument{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[userId] {
		if doc.ID == documentID {
			return doc, nil
		}
	}
	return ProcessedDocument{}, ErrNotFound
}

// Delete removes a document by ID for a user.
func (r *MemoryRepo) Delete(ctx context.Context, userId, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userId]
	for i := range docs {
		if docs[i].ID == documentID {
			r.data[userId] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
