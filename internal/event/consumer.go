package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Kafka topic constants for catalog domain events consumed by the storefront.
const (
	TopicProductCreated = "ecommerce.product.created"
	TopicProductUpdated = "ecommerce.product.updated"
	TopicProductDeleted = "ecommerce.product.deleted"

	TopicCollectionCreated = "ecommerce.collection.created"
	TopicCollectionUpdated = "ecommerce.collection.updated"
	TopicCollectionDeleted = "ecommerce.collection.deleted"
)

// ProductEventData is the payload of product created/updated events.
type ProductEventData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        int64   `json:"price"`
	Currency     string  `json:"currency"`
	CollectionID *string `json:"collection_id,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
}

// CollectionEventData is the payload of collection created/updated events.
type CollectionEventData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Featured    bool    `json:"featured"`
}

// DeletedData is the payload of deleted events.
type DeletedData struct {
	ID string `json:"id"`
}

// CatalogConsumer applies catalog domain events to the in-memory catalog
// snapshot, keeping the storefront's product and collection lists fresh
// between bulk loads.
type CatalogConsumer struct {
	store  *catalog.Store
	logger *slog.Logger
}

// NewCatalogConsumer creates a consumer bound to the catalog store.
func NewCatalogConsumer(store *catalog.Store, logger *slog.Logger) *CatalogConsumer {
	return &CatalogConsumer{
		store:  store,
		logger: logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *CatalogConsumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleProductUpsert(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	case TopicCollectionCreated, TopicCollectionUpdated:
		return c.handleCollectionUpsert(ctx, event)
	case TopicCollectionDeleted:
		return c.handleCollectionDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *CatalogConsumer) handleProductUpsert(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product event data: %w", err)
	}

	c.store.UpsertProduct(domain.Product{
		ID:           data.ID,
		Name:         data.Name,
		Description:  data.Description,
		Price:        data.Price,
		Currency:     data.Currency,
		CollectionID: data.CollectionID,
		ImageURL:     data.ImageURL,
	})

	c.logger.InfoContext(ctx, "catalog product refreshed from event",
		slog.String("product_id", data.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

func (c *CatalogConsumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data DeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	c.store.RemoveProduct(data.ID)

	c.logger.InfoContext(ctx, "catalog product removed from event",
		slog.String("product_id", data.ID),
	)

	return nil
}

func (c *CatalogConsumer) handleCollectionUpsert(ctx context.Context, event *pkgkafka.Event) error {
	var data CollectionEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal collection event data: %w", err)
	}

	c.store.UpsertCollection(domain.Collection{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Image:       data.Image,
		Featured:    data.Featured,
	})

	c.logger.InfoContext(ctx, "catalog collection refreshed from event",
		slog.String("collection_id", data.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

func (c *CatalogConsumer) handleCollectionDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data DeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal collection.deleted data: %w", err)
	}

	c.store.RemoveCollection(data.ID)

	c.logger.InfoContext(ctx, "catalog collection removed from event",
		slog.String("collection_id", data.ID),
	)

	return nil
}
