package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/comandaclub/comanda/internal/pos"
)

const demoSeedActor = "demo-seed"

const seedTrackerID = "demo_cancellations_v1"

// SeedDemo inserts sample cancellation records so the POS audit views have
// something to show on a fresh install. Runs once; a seed tracker document
// guards against duplicates.
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding...")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	seeds := db.Collection("_seeds")
	var tracker bson.M
	err = seeds.FindOne(ctx, bson.M{"_id": seedTrackerID}).Decode(&tracker)
	if err == nil {
		logger.Info("Demo seed already applied, skipping")
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return fmt.Errorf("check seed tracker: %w", err)
	}

	orderID := aqm.GenerateNewID()
	records := []interface{}{
		demoCancellation(orderID, "Grilled squid", 1, "customer changed mind"),
		demoCancellation(orderID, "Seafood hotpot", 2, "wrong table"),
		demoCancellation(aqm.GenerateNewID(), "Steamed clams", 0, "kitchen out of stock"),
	}

	cancellations := db.Collection("cancellations")
	result, err := cancellations.InsertMany(ctx, records)
	if err != nil {
		return fmt.Errorf("insert demo cancellations: %w", err)
	}
	logger.Info("Inserted demo cancellations", "count", len(result.InsertedIDs))

	if _, err := seeds.InsertOne(ctx, bson.M{"_id": seedTrackerID, "applied_at": time.Now()}); err != nil {
		return fmt.Errorf("record seed tracker: %w", err)
	}

	return nil
}

func demoCancellation(orderID uuid.UUID, dish string, qty int, reason string) *pos.CancellationRecord {
	rec := pos.NewCancellationRecord()
	rec.OrderID = orderID
	rec.OrderItemID = aqm.GenerateNewID()
	rec.MenuItemID = aqm.GenerateNewID()
	rec.DishName = dish
	rec.Qty = qty
	rec.Reason = reason
	rec.By = demoSeedActor
	rec.CreatedAt = time.Now()
	return rec
}
