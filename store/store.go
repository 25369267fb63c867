package store

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/keys"
)

// Store provides single-table DynamoDB access for the catalog entities.
// A Store is safe for concurrent use and is meant to be created once at startup.
type Store struct {
	client   DynamoDBAPI
	config   Config
	logger   *zap.Logger
	now      Clock
	newID    func(keys.Kind) string
	registry *Registry
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for fecha_creacion and fecha_actualizacion.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator replaces the id generator used on create.
func WithIDGenerator(gen func(keys.Kind) string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithRegistry sets the relationship registry used by cascades.
func WithRegistry(registry *Registry) Option {
	return func(s *Store) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// New creates a new Store instance.
func New(client DynamoDBAPI, config Config, opts ...Option) *Store {
	config.validate()
	s := &Store{
		client:   client,
		config:   config,
		logger:   zap.NewNop(),
		now:      DefaultClock,
		newID:    keys.NewID,
		registry: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.config
}

// Registry returns the relationship registry.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Institutions returns the institution repository.
func (s *Store) Institutions() *InstitutionRepository {
	return &InstitutionRepository{s: s}
}

// Programs returns the program repository.
func (s *Store) Programs() *ProgramRepository {
	return &ProgramRepository{s: s}
}

// Projects returns the project repository.
func (s *Store) Projects() *ProjectRepository {
	return &ProjectRepository{s: s}
}

// Procedures returns the procedure repository.
func (s *Store) Procedures() *ProcedureRepository {
	return &ProcedureRepository{s: s}
}

// Ping checks that the table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.config.TableName),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return timestamp(s.now())
}

// put writes a full record. The key must not exist yet.
func (s *Store) put(ctx context.Context, op string, record any) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", op, err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(AttrPK))).
		Build()
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.config.TableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		s.logger.Error("put item failed", zap.String("op", op), zap.Error(err))
		return &WriteError{Op: op, Err: classify(err)}
	}
	return nil
}

// getByKey reads one record by primary key into out.
func (s *Store) getByKey(ctx context.Context, key Keys, out any) error {
	s.logger.Debug("get item", zap.String("PK", key.PK), zap.String("SK", key.SK))

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       key.av(),
	})
	if err != nil {
		return fmt.Errorf("get item: %w", classify(err))
	}
	if result.Item == nil {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// getByIndex reads the record holding the given GSI1 key pair into out.
// The key layout guarantees at most one match.
func (s *Store) getByIndex(ctx context.Context, gsi1pk, gsi1sk string, out any) error {
	s.logger.Debug("query index", zap.String("index", s.config.IndexName), zap.String("GSI1PK", gsi1pk))

	keyCond := expression.Key(AttrGSI1PK).Equal(expression.Value(gsi1pk)).
		And(expression.Key(AttrGSI1SK).Equal(expression.Value(gsi1sk)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return fmt.Errorf("build index query: %w", err)
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		IndexName:                 aws.String(s.config.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("query index: %w", classify(err))
	}
	if len(result.Items) == 0 {
		return ErrNotFound
	}
	if len(result.Items) > 1 {
		s.logger.Warn("index key matched more than one record",
			zap.String("GSI1PK", gsi1pk),
			zap.Int("count", len(result.Items)),
		)
	}
	if err := attributevalue.UnmarshalMap(result.Items[0], out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// queryPartition returns every record in a partition whose sort key starts with skPrefix.
func (s *Store) queryPartition(ctx context.Context, pk, skPrefix string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key(AttrPK).Equal(expression.Value(pk)).
		And(expression.Key(AttrSK).BeginsWith(skPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build partition query: %w", err)
	}

	s.logger.Debug("query partition", zap.String("PK", pk), zap.String("prefix", skPrefix))

	return s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// queryIndexPartition returns every record in a GSI1 partition.
func (s *Store) queryIndexPartition(ctx context.Context, gsi1pk string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key(AttrGSI1PK).Equal(expression.Value(gsi1pk))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build index query: %w", err)
	}

	s.logger.Debug("query index partition", zap.String("index", s.config.IndexName), zap.String("GSI1PK", gsi1pk))

	return s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		IndexName:                 aws.String(s.config.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// queryAll pages through a query until the last page.
func (s *Store) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query: %w", classify(err))
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// scanKind reads the whole table and keeps the records of one kind.
//
// Deprecated: only reachable through MissingParentScan.
func (s *Store) scanKind(ctx context.Context, kind keys.Kind) ([]map[string]types.AttributeValue, error) {
	s.logger.Warn("full table scan", zap.String("kind", kind.String()), zap.String("table", s.config.TableName))

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.config.TableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", classify(err))
		}
		for _, item := range page.Items {
			sk, ok := item[AttrSK].(*types.AttributeValueMemberS)
			if ok && keys.BelongsToType(sk.Value, kind) {
				items = append(items, item)
			}
		}
	}
	return items, nil
}

// update applies fields to the record stored under key and refreshes
// fecha_actualizacion. The key must come from the located record, never from
// the patch, so an update can never move a record. The existence condition
// keeps an update from recreating a record that is gone.
func (s *Store) update(ctx context.Context, op string, key Keys, fields []Field, out any) error {
	if len(fields) == 0 {
		return ErrNoFieldsToUpdate
	}

	upd := expression.Set(expression.Name(AttrUpdatedAt), expression.Value(s.timestamp()))
	for _, f := range fields {
		upd = upd.Set(expression.Name(f.Name), expression.Value(f.Value))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(upd).
		WithCondition(expression.AttributeExists(expression.Name(AttrPK))).
		Build()
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       key.av(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		s.logger.Error("update item failed",
			zap.String("op", op),
			zap.String("PK", key.PK),
			zap.String("SK", key.SK),
			zap.Error(err),
		)
		return &WriteError{Op: op, Err: classify(err)}
	}

	if out == nil {
		return nil
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// setEnabled flips habil on the record stored under key.
// Repeating the same flip succeeds and still refreshes fecha_actualizacion.
func (s *Store) setEnabled(ctx context.Context, kind keys.Kind, id string, key Keys, enabled bool) (*Confirmation, error) {
	op := "disable " + kind.String()
	if enabled {
		op = "enable " + kind.String()
	}
	if err := s.update(ctx, op, key, []Field{{Name: AttrEnabled, Value: enabled}}, nil); err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, id, err)
	}

	s.logger.Info("habil changed",
		zap.String("kind", kind.String()),
		zap.String("id", id),
		zap.Bool("habil", enabled),
	)

	return &Confirmation{
		ID:      id,
		Enabled: enabled,
		Message: confirmationMessage(kind, enabled),
	}, nil
}

// locate loads a record by id alone. Root records are read by primary key,
// children through their GSI1 key.
func locate[T any](ctx context.Context, s *Store, kind keys.Kind, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("get %s: %w", kind, ErrNotFound)
	}

	var rec T
	var err error
	if kind.IsRoot() {
		pk, sk := keys.PrimaryKey(kind, id, "")
		err = s.getByKey(ctx, Keys{PK: pk, SK: sk}, &rec)
	} else {
		gpk, gsk := keys.IndexKey(kind, id)
		err = s.getByIndex(ctx, gpk, gsk, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return &rec, nil
}

// listChildren returns the raw records of a child kind under one institution.
func (s *Store) listChildren(ctx context.Context, kind keys.Kind, parentID string) ([]map[string]types.AttributeValue, error) {
	if parentID == "" {
		if s.config.MissingParent != MissingParentScan {
			return nil, fmt.Errorf("list %s: %w", kind, ErrParentRequired)
		}
		return s.scanKind(ctx, kind)
	}
	pk, _ := keys.PrimaryKey(kind, "", parentID)
	return s.queryPartition(ctx, pk, kind.Tag())
}

// collect unmarshals raw records, applies the habil filter and projects each
// record into its list item.
func collect[T any, L any](items []map[string]types.AttributeValue, opts ListOptions, project func(*T) (bool, L)) ([]L, error) {
	out := make([]L, 0, len(items))
	for i, raw := range items {
		var rec T
		if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal item %d: %w", i, err)
		}
		enabled, item := project(&rec)
		if !opts.keep(enabled) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// classify marks connectivity failures with ErrStoreUnavailable.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) || !IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// IsUnavailable reports whether err means DynamoDB could not serve the call:
// a network failure, an expired deadline, or a throttling or server-side error.
// Conditional-check failures and validation errors are not unavailability.
func IsUnavailable(err error) bool {
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ServiceUnavailable", "InternalServerError", "RequestLimitExceeded",
			"ThrottlingException", "ProvisionedThroughputExceededException":
			return true
		}
	}
	return false
}

var displayNames = map[keys.Kind]struct {
	noun     string
	feminine bool
}{
	keys.Institution: {"Institución", true},
	keys.Program:     {"Programa", false},
	keys.Project:     {"Proyecto", false},
	keys.Procedure:   {"Trámite", false},
}

func confirmationMessage(kind keys.Kind, enabled bool) string {
	d := displayNames[kind]
	verb := "deshabilitado"
	if enabled {
		verb = "habilitado"
	}
	if d.feminine {
		verb = verb[:len(verb)-1] + "a"
	}
	return fmt.Sprintf("%s %s correctamente", d.noun, verb)
}
