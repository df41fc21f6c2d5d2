package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comandaclub/comanda/internal/pos"
)

type CancellationRepo struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	logger     aqm.Logger
	config     *aqm.Config
}

func NewCancellationRepo(config *aqm.Config, logger aqm.Logger) *CancellationRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &CancellationRepo{
		logger: logger,
		config: config,
	}
}

func (r *CancellationRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "comanda_pos"
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)
	r.collection = r.db.Collection("cancellations")

	orderIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, orderIndexModel); err != nil {
		return fmt.Errorf("cannot create order_id index: %w", err)
	}

	r.logger.Infof("Connected to MongoDB: %s, database: %s, collection: cancellations", mongoURL, dbName)
	return nil
}

func (r *CancellationRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (r *CancellationRepo) Record(ctx context.Context, rec *pos.CancellationRecord) error {
	if rec == nil {
		return fmt.Errorf("cancellation record is nil")
	}
	if r.collection == nil {
		return fmt.Errorf("cancellation repo not started")
	}

	if _, err := r.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("cannot record cancellation: %w", err)
	}

	return nil
}

func (r *CancellationRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*pos.CancellationRecord, error) {
	if r.collection == nil {
		return nil, fmt.Errorf("cancellation repo not started")
	}

	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("cannot list cancellations by order: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*pos.CancellationRecord
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode cancellations: %w", err)
	}

	return result, nil
}
