// Package stream provides DynamoDB Streams handlers for cascade operations.
package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/store"
)

// Handler processes DynamoDB stream events for cascade disables.
type Handler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s *store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleCascadeDisable processes DynamoDB stream events and disables the
// children of every institution whose habil flag went from true to false.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleCascadeDisable(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				zap.String("eventID", record.EventID),
				zap.Error(err),
			)
			return err // retried by the event source mapping
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != string(events.DynamoDBOperationTypeModify) {
		return nil
	}

	key := StreamKeys(record.Change.Keys)
	if key.SK != keys.Metadata {
		return nil
	}
	kind, id, ok := keys.ParseRef(key.PK)
	if !ok || !h.store.Registry().HasChildren(kind) {
		return nil
	}

	wasEnabled := getBoolAttr(record.Change.OldImage, store.AttrEnabled)
	isEnabled := getBoolAttr(record.Change.NewImage, store.AttrEnabled)
	if !wasEnabled || isEnabled {
		return nil
	}

	h.logger.Info("processing cascade disable",
		zap.String("kind", kind.String()),
		zap.String("id", id),
	)

	var failed []error
	disabled := 0
	for _, rel := range h.store.Registry().ChildrenOf(kind) {
		children, err := h.store.QueryChildren(ctx, id, rel.ChildKind)
		if err != nil {
			return fmt.Errorf("query %s children: %w", rel.ChildKind, err)
		}

		for _, child := range children {
			if !child.Enabled {
				continue
			}
			if err := h.store.SetEnabledByKey(ctx, child, false); err != nil {
				h.logger.Warn("failed to disable child",
					zap.String("kind", child.Kind.String()),
					zap.String("id", child.ID),
					zap.Error(err),
				)
				failed = append(failed, fmt.Errorf("%s %s: %w", child.Kind, child.ID, err))
				continue
			}
			disabled++
		}
	}

	h.logger.Info("cascade disable completed",
		zap.String("id", id),
		zap.Int("childrenDisabled", disabled),
		zap.Int("failures", len(failed)),
	)

	// Already disabled children are skipped on retry.
	return errors.Join(failed...)
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getBoolAttr extracts a boolean attribute from a DynamoDB stream image.
// A missing or non-boolean attribute reads as false.
func getBoolAttr(image map[string]events.DynamoDBAttributeValue, key string) bool {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeBoolean {
		return v.Boolean()
	}
	return false
}

// StreamKeys converts the key of a stream record into store keys.
func StreamKeys(streamKey map[string]events.DynamoDBAttributeValue) store.Keys {
	return store.Keys{
		PK: getStringAttr(streamKey, store.AttrPK),
		SK: getStringAttr(streamKey, store.AttrSK),
	}
}
