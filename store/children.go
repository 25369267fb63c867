package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/catalog/internal/keys"
)

// ChildRef locates one child record inside its parent's partition.
type ChildRef struct {
	Kind    keys.Kind
	ID      string
	Key     Keys
	Enabled bool
}

// QueryChildren returns every child of the given kind stored under an institution,
// enabled or not.
func (s *Store) QueryChildren(ctx context.Context, institutionID string, kind keys.Kind) ([]ChildRef, error) {
	if institutionID == "" {
		return nil, ErrParentRequired
	}
	pk, _ := keys.PrimaryKey(kind, "", institutionID)
	items, err := s.queryPartition(ctx, pk, kind.Tag())
	if err != nil {
		return nil, fmt.Errorf("query %s children of %s: %w", kind, institutionID, err)
	}

	refs := make([]ChildRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, unmarshalChildRef(item, kind))
	}
	return refs, nil
}

// SetEnabledByKey flips habil on a child located by QueryChildren.
func (s *Store) SetEnabledByKey(ctx context.Context, ref ChildRef, enabled bool) error {
	_, err := s.setEnabled(ctx, ref.Kind, ref.ID, ref.Key, enabled)
	return err
}

// unmarshalChildRef extracts the key, id and habil flag of a raw child record.
func unmarshalChildRef(item map[string]types.AttributeValue, kind keys.Kind) ChildRef {
	ref := ChildRef{Kind: kind}

	if v, ok := item[AttrPK].(*types.AttributeValueMemberS); ok {
		ref.Key.PK = v.Value
	}
	if v, ok := item[AttrSK].(*types.AttributeValueMemberS); ok {
		ref.Key.SK = v.Value
	}
	if v, ok := item[kind.IDAttr()].(*types.AttributeValueMemberS); ok {
		ref.ID = v.Value
	}
	if v, ok := item[AttrEnabled].(*types.AttributeValueMemberBOOL); ok {
		ref.Enabled = v.Value
	}

	return ref
}
