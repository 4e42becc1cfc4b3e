package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tellergo-dev/tellergo/agent"
)

// FirestoreStore implements Store on Google Cloud Firestore. Documents are
// keyed by the full thread key, one document per conversation thread.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	mu         sync.RWMutex
	closed     bool
}

// FirestoreConfig configures the Firestore session store.
type FirestoreConfig struct {
	// ProjectID is the GCP project (required).
	ProjectID string
	// CredentialsFile optionally points at service-account credentials;
	// Application Default Credentials are used when empty.
	CredentialsFile string
	// Collection is the Firestore collection name (default "sessions").
	Collection string
}

// NewFirestoreStore creates a Firestore-backed session store.
func NewFirestoreStore(ctx context.Context, cfg FirestoreConfig) (*FirestoreStore, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "sessions"
	}

	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) doc(id agent.ThreadID) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id.Key())
}

func (s *FirestoreStore) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *FirestoreStore) Read(ctx context.Context, id agent.ThreadID) (*Record, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	snap, err := s.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	var rec Record
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &rec, nil
}

func (s *FirestoreStore) Write(ctx context.Context, rec *Record) error {
	if err := s.guard(); err != nil {
		return err
	}

	rec.UpdatedAt = time.Now().UTC()
	if _, err := s.doc(rec.Thread()).Set(ctx, rec); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) PatchActiveAgent(ctx context.Context, id agent.ThreadID, active string) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.doc(id).Update(ctx, []firestore.Update{
		{Path: "ActiveAgent", Value: active},
		{Path: "UpdatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("patch document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	query := s.client.Collection(s.collection).Query
	if opts.TenantID != "" {
		query = query.Where("TenantID", "==", opts.TenantID)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []*Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate documents: %w", err)
		}
		var rec Record
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id agent.ThreadID) error {
	if err := s.guard(); err != nil {
		return err
	}
	if _, err := s.doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
