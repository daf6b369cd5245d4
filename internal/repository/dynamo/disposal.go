// Package dynamo reads and writes denormalized disposal documents in a
// DynamoDB table. It is the alternative reporting source to Postgres.
package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
	"github.com/pharmacycle/pharma-cycle/internal/service/analytics"
)

// TimestampLayout is fixed-width so stored timestamps sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const metaSK = "META"

// API is the subset of the DynamoDB client used here.
type API interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DisposalItem is one disposal document.
type DisposalItem struct {
	PK           string     `dynamodbav:"PK"`
	SK           string     `dynamodbav:"SK"`
	ID           string     `dynamodbav:"ID"`
	UserID       string     `dynamodbav:"UserID"`
	Status       string     `dynamodbav:"Status"`
	DisposalCode string     `dynamodbav:"DisposalCode"`
	CreatedAt    string     `dynamodbav:"CreatedAt"`
	CompletedAt  string     `dynamodbav:"CompletedAt,omitempty"`
	PharmacyID   string     `dynamodbav:"PharmacyID,omitempty"`
	PharmacyName string     `dynamodbav:"PharmacyName,omitempty"`
	PharmacyCity string     `dynamodbav:"PharmacyCity,omitempty"`
	Items        []ItemAttr `dynamodbav:"Items"`
}

// ItemAttr is one medicine line inside a disposal document.
type ItemAttr struct {
	MedicineName string `dynamodbav:"MedicineName"`
	Brand        string `dynamodbav:"Brand,omitempty"`
	Qty          int    `dynamodbav:"Qty,omitempty"`
	Unit         string `dynamodbav:"Unit,omitempty"`
	Sealed       bool   `dynamodbav:"Sealed,omitempty"`
}

// DisposalRepo implements analytics.Repository over a DynamoDB table.
type DisposalRepo struct {
	client    API
	tableName string
}

// NewDisposalRepo creates a DynamoDB-backed disposal repository.
func NewDisposalRepo(client API, tableName string) *DisposalRepo {
	return &DisposalRepo{client: client, tableName: tableName}
}

// NewDisposalRepoFromConfig builds the repository with a real DynamoDB client.
func NewDisposalRepoFromConfig(cfg aws.Config, tableName string) *DisposalRepo {
	return NewDisposalRepo(dynamodb.NewFromConfig(cfg), tableName)
}

// ListCompleted scans every page of Completed documents created inside r.
func (d *DisposalRepo) ListCompleted(ctx context.Context, r analytics.Range) ([]domain.DisposalRecord, error) {
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName:        aws.String(d.tableName),
		FilterExpression: aws.String("SK = :meta AND #status = :completed AND CreatedAt BETWEEN :from AND :to"),
		ExpressionAttributeNames: map[string]string{
			"#status": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":meta":      &types.AttributeValueMemberS{Value: metaSK},
			":completed": &types.AttributeValueMemberS{Value: string(domain.DisposalCompleted)},
			":from":      &types.AttributeValueMemberS{Value: r.From.UTC().Format(TimestampLayout)},
			":to":        &types.AttributeValueMemberS{Value: r.To.UTC().Format(TimestampLayout)},
		},
	})

	var out []domain.DisposalRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning disposals: %w", err)
		}
		for _, av := range page.Items {
			var item DisposalItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				return nil, fmt.Errorf("unmarshaling disposal: %w", err)
			}
			rec, err := item.toRecord()
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Put writes one disposal document.
func (d *DisposalRepo) Put(ctx context.Context, rec domain.DisposalRecord) error {
	av, err := attributevalue.MarshalMap(FromRecord(rec))
	if err != nil {
		return fmt.Errorf("marshaling disposal: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting disposal to DynamoDB: %w", err)
	}
	return nil
}

// FromRecord converts a disposal into its document form.
func FromRecord(rec domain.DisposalRecord) DisposalItem {
	item := DisposalItem{
		PK:           "DISPOSAL#" + rec.ID,
		SK:           metaSK,
		ID:           rec.ID,
		UserID:       rec.UserID,
		Status:       string(rec.Status),
		DisposalCode: rec.DisposalCode,
		CreatedAt:    rec.CreatedAt.UTC().Format(TimestampLayout),
		Items:        make([]ItemAttr, 0, len(rec.Items)),
	}
	if rec.CompletedAt != nil {
		item.CompletedAt = rec.CompletedAt.UTC().Format(TimestampLayout)
	}
	if rec.Pharmacy != nil {
		item.PharmacyID = rec.Pharmacy.ID
		item.PharmacyName = rec.Pharmacy.Name
		item.PharmacyCity = rec.Pharmacy.City
	} else if rec.PharmacyID != nil {
		item.PharmacyID = *rec.PharmacyID
	}
	for _, it := range rec.Items {
		item.Items = append(item.Items, ItemAttr{
			MedicineName: it.MedicineName,
			Brand:        it.Brand,
			Qty:          it.Quantity,
			Unit:         it.Unit,
			Sealed:       it.Sealed,
		})
	}
	return item
}

func (item DisposalItem) toRecord() (domain.DisposalRecord, error) {
	created, err := time.Parse(TimestampLayout, item.CreatedAt)
	if err != nil {
		return domain.DisposalRecord{}, fmt.Errorf("disposal %s: bad CreatedAt %q: %w", item.ID, item.CreatedAt, err)
	}

	rec := domain.DisposalRecord{
		ID:           item.ID,
		UserID:       item.UserID,
		Status:       domain.DisposalStatus(item.Status),
		DisposalCode: item.DisposalCode,
		CreatedAt:    created,
		Items:        make([]domain.Item, 0, len(item.Items)),
	}
	if item.CompletedAt != "" {
		if t, err := time.Parse(TimestampLayout, item.CompletedAt); err == nil {
			rec.CompletedAt = &t
		}
	}
	if item.PharmacyID != "" {
		id := item.PharmacyID
		rec.PharmacyID = &id
		if item.PharmacyName != "" {
			rec.Pharmacy = &domain.PharmacyRef{ID: id, Name: item.PharmacyName, City: item.PharmacyCity}
		}
	}
	for _, it := range item.Items {
		rec.Items = append(rec.Items, domain.Item{
			MedicineName: it.MedicineName,
			Brand:        it.Brand,
			Quantity:     it.Qty,
			Unit:         it.Unit,
			Sealed:       it.Sealed,
		})
	}
	return rec, nil
}
