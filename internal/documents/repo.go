package documents

import "context"

// Repo defines persistence operations for processed documents.
type Repo interface {
	// Create inserts one row and returns it with server-assigned id and
	// timestamps.
	Create(ctx context.Context, doc ProcessedDocument) (ProcessedDocument, error)

	// ListByUser returns all of a user's documents, newest first. The result
	// is empty, never nil, when the user has none.
	ListByUser(ctx context.Context, userId string) ([]ProcessedDocument, error)

	// GetByID fetches one document scoped to the owning user.
	GetByID(ctx context.Context, userId, documentID string) (ProcessedDocument, error)

	// Delete removes one document scoped to the owning user.
	Delete(ctx context.Context, userId, documentID string) error
}
