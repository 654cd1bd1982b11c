package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

const collectionAuthEvents = "auth_events"

// AuthEventRepository implements ports.AuditRepository using MongoDB.
type AuthEventRepository struct {
	col *mongo.Collection
}

var _ ports.AuditRepository = (*AuthEventRepository)(nil)

func NewAuthEventRepository(db *mongo.Database) *AuthEventRepository {
	return &AuthEventRepository{col: db.Collection(collectionAuthEvents)}
}

type authEventDoc struct {
	ID      string    `bson:"_id"`
	Type    string    `bson:"type"`
	Login   string    `bson:"login"`
	UserID  int64     `bson:"user_id,omitempty"`
	Success bool      `bson:"success"`
	Reason  string    `bson:"reason,omitempty"`
	At      time.Time `bson:"at"`
}

func toDoc(e *domain.AuthEvent) authEventDoc {
	return authEventDoc{
		ID:      e.ID,
		Type:    string(e.Type),
		Login:   e.Login,
		UserID:  e.UserID,
		Success: e.Success,
		Reason:  e.Reason,
		At:      e.At.UTC(),
	}
}

// InsertEvent persists an audit event. Re-inserting an event with the same ID
// is treated as success so retries stay idempotent.
func (r *AuthEventRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDoc(event)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes used by audit queries.
func (r *AuthEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "login", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
