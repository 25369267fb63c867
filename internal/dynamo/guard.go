package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/config"
	"github.com/jacentio/catalog/internal/metrics"
	"github.com/jacentio/catalog/store"
)

// BreakerName labels the DynamoDB breaker in logs and metrics.
const BreakerName = "dynamodb"

// Trip thresholds for the DynamoDB breaker.
const (
	breakerMinRequests      = 5
	breakerFailureThreshold = 0.6
	breakerInterval         = 60 * time.Second
)

// Guarded decorates a DynamoDB client with an optional circuit breaker and
// per-call metrics. Only unavailability counts as a breaker failure, so
// conditional-check failures and missing tables never open it.
type Guarded struct {
	next    store.DynamoDBAPI
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collector
}

var _ store.DynamoDBAPI = (*Guarded)(nil)

// Guard wraps next according to cfg. A nil collector records no metrics.
func Guard(next store.DynamoDBAPI, cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Guarded{next: next, metrics: collector}
	if cfg.BreakerEnabled {
		g.breaker = gobreaker.NewCircuitBreaker(breakerSettings(cfg.BreakerTimeout, collector, logger))
		collector.SetBreakerState(BreakerName, float64(gobreaker.StateClosed))
	}
	return g
}

func breakerSettings(timeout time.Duration, collector *metrics.Collector, logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			collector.SetBreakerState(name, float64(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !store.IsUnavailable(err)
		},
	}
}

// State returns the breaker state, or StateClosed when no breaker is configured.
func (g *Guarded) State() gobreaker.State {
	if g.breaker == nil {
		return gobreaker.StateClosed
	}
	return g.breaker.State()
}

func call[T any](g *Guarded, op string, fn func() (T, error)) (T, error) {
	start := time.Now()

	var out T
	var err error
	if g.breaker == nil {
		out, err = fn()
	} else {
		var res any
		res, err = g.breaker.Execute(func() (any, error) {
			v, err := fn()
			return v, err
		})
		if v, ok := res.(T); ok {
			out = v
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %s: %w", store.ErrStoreUnavailable, op, err)
		}
	}

	g.metrics.ObserveDB(op, err, time.Since(start))
	return out, err
}

func (g *Guarded) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return call(g, "PutItem", func() (*dynamodb.PutItemOutput, error) {
		return g.next.PutItem(ctx, params, optFns...)
	})
}

func (g *Guarded) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return call(g, "GetItem", func() (*dynamodb.GetItemOutput, error) {
		return g.next.GetItem(ctx, params, optFns...)
	})
}

func (g *Guarded) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return call(g, "Query", func() (*dynamodb.QueryOutput, error) {
		return g.next.Query(ctx, params, optFns...)
	})
}

func (g *Guarded) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return call(g, "Scan", func() (*dynamodb.ScanOutput, error) {
		return g.next.Scan(ctx, params, optFns...)
	})
}

func (g *Guarded) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return call(g, "UpdateItem", func() (*dynamodb.UpdateItemOutput, error) {
		return g.next.UpdateItem(ctx, params, optFns...)
	})
}

func (g *Guarded) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return call(g, "DescribeTable", func() (*dynamodb.DescribeTableOutput, error) {
		return g.next.DescribeTable(ctx, params, optFns...)
	})
}
