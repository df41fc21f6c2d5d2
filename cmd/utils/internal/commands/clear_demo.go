package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// ClearDemo removes seeded demo data from the POS database.
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	cancellations := db.Collection("cancellations")
	result, err := cancellations.DeleteMany(ctx, bson.M{"by": demoSeedActor})
	if err != nil {
		return fmt.Errorf("delete demo cancellations: %w", err)
	}
	logger.Info("Deleted demo cancellations", "count", result.DeletedCount)

	seeds := db.Collection("_seeds")
	trackerResult, err := seeds.DeleteOne(ctx, bson.M{"_id": seedTrackerID})
	if err != nil {
		return fmt.Errorf("delete seed tracker: %w", err)
	}
	logger.Info("Cleared seed tracker", "deleted", trackerResult.DeletedCount)

	return nil
}
