package store

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names shared by every record.
const (
	AttrPK            = "PK"
	AttrSK            = "SK"
	AttrGSI1PK        = "GSI1PK"
	AttrGSI1SK        = "GSI1SK"
	AttrInstitutionID = "id_institucion"
	AttrEnabled       = "habil"
	AttrCreatedAt     = "fecha_creacion"
	AttrUpdatedAt     = "fecha_actualizacion"
)

// Keys is the primary key pair of a stored record.
type Keys struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// av returns the key as a DynamoDB key map.
func (k Keys) av() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: k.PK},
		AttrSK: &types.AttributeValueMemberS{Value: k.SK},
	}
}

// IndexKeys is the GSI1 key pair of a stored record.
type IndexKeys struct {
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
}

// Meta holds the lifecycle attributes every record carries.
type Meta struct {
	Enabled   bool   `dynamodbav:"habil" json:"habil"`
	CreatedAt string `dynamodbav:"fecha_creacion" json:"fecha_creacion"`
	UpdatedAt string `dynamodbav:"fecha_actualizacion" json:"fecha_actualizacion"`
}

// Field is one attribute assignment of a partial update.
type Field struct {
	Name  string
	Value any
}

func appendString(fields []Field, name string, v *string) []Field {
	if v == nil {
		return fields
	}
	return append(fields, Field{Name: name, Value: *v})
}

func appendStrings(fields []Field, name string, v *[]string) []Field {
	if v == nil {
		return fields
	}
	return append(fields, Field{Name: name, Value: *v})
}

// ListOptions narrows a listing.
type ListOptions struct {
	// ParentID is the institution whose partition is listed. Ignored for institutions.
	ParentID string

	// Enabled keeps only records whose habil flag matches. Nil keeps all.
	Enabled *bool
}

// keep reports whether a record with the given flag passes the filter.
// The filter always runs in memory after retrieval.
func (o ListOptions) keep(enabled bool) bool {
	return o.Enabled == nil || *o.Enabled == enabled
}

// Confirmation acknowledges an enable or disable.
type Confirmation struct {
	ID      string `json:"id"`
	Enabled bool   `json:"habil"`
	Message string `json:"message"`
}

// Clock returns the current time. Tests inject a deterministic one.
type Clock func() time.Time

// DefaultClock returns the current UTC time.
func DefaultClock() time.Time {
	return time.Now().UTC()
}

// timestamp formats t as the stored ISO-8601 UTC string.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
