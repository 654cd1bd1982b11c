package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "docker.io/mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("container endpoint: %v", err)
	}

	client, db, err := Connect(ctx, Config{URI: fmt.Sprintf("mongodb://%s", endpoint), Database: "staff_test"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	return db
}

func TestAuthEventRepositoryInsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewAuthEventRepository(db)

	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	event := &domain.AuthEvent{
		ID:      "evt-1",
		Type:    domain.EventLogin,
		Login:   "maria",
		UserID:  7,
		Success: false,
		Reason:  "blocked: attempts",
		At:      time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.InsertEvent(ctx, event); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}
	if err := repo.InsertEvent(ctx, event); err != nil {
		t.Fatalf("re-insert should be idempotent: %v", err)
	}

	var got authEventDoc
	if err := repo.col.FindOne(ctx, bson.M{"_id": "evt-1"}).Decode(&got); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if got.Login != "maria" || got.Type != "login" || got.Reason != "blocked: attempts" || got.UserID != 7 {
		t.Errorf("unexpected document: %+v", got)
	}

	n, err := repo.col.CountDocuments(ctx, bson.M{"login": "maria"})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}
