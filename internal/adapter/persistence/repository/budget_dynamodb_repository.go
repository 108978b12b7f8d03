package repository

import (
	"context"
	"fmt"
	"strconv"

	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const budgetsOwnerIDIndex = "owner_id-index"

type budgetLineItem struct {
	Kind          string `dynamodbav:"kind"`
	RefID         string `dynamodbav:"ref_id"`
	Quantity      string `dynamodbav:"quantity"`
	UnitPrice     string `dynamodbav:"unit_price,omitempty"`
	Cost          string `dynamodbav:"cost,omitempty"`
	MarginPercent string `dynamodbav:"margin_percent,omitempty"`
	Description   string `dynamodbav:"description,omitempty"`
}

type taxSnapshotItem struct {
	TaxID      string `dynamodbav:"tax_id"`
	Name       string `dynamodbav:"name"`
	Percentage string `dynamodbav:"percentage"`
	Amount     string `dynamodbav:"amount"`
}

// budgetItem stores amounts as decimal strings so no precision is lost to
// DynamoDB number handling.
type budgetItem struct {
	ID             string            `dynamodbav:"id"`
	OwnerID        string            `dynamodbav:"owner_id"`
	ClientID       string            `dynamodbav:"client_id"`
	CurrencyID     string            `dynamodbav:"currency_id"`
	Lines          []budgetLineItem  `dynamodbav:"lines"`
	TaxIDs         []string          `dynamodbav:"tax_ids"`
	AgencyAmount   string            `dynamodbav:"agency_amount,omitempty"`
	AgencyPercent  string            `dynamodbav:"agency_percent,omitempty"`
	ValidFrom      string            `dynamodbav:"valid_from"`
	ValidUntil     string            `dynamodbav:"valid_until"`
	ValidityPreset string            `dynamodbav:"validity_preset"`
	State          string            `dynamodbav:"state"`
	Subtotal       string            `dynamodbav:"subtotal"`
	Taxes          []taxSnapshotItem `dynamodbav:"taxes"`
	TaxTotal       string            `dynamodbav:"tax_total"`
	AgencyProfit   string            `dynamodbav:"agency_profit"`
	GrandTotal     string            `dynamodbav:"grand_total"`
	Version        int64             `dynamodbav:"version"`
	CreatedAt      string            `dynamodbav:"created_at"`
	UpdatedAt      string            `dynamodbav:"updated_at"`
}

// BudgetDynamoRepository persists Budget entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: owner_id-index (PK: owner_id)
//
// Every overwrite is conditioned on the stored version, which gives
// optimistic concurrency without locks.

type BudgetDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IBudgetRepository = (*BudgetDynamoRepository)(nil)

func NewBudgetDynamoRepository(ddb DynamoAPI, tableName string) *BudgetDynamoRepository {
	return &BudgetDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *BudgetDynamoRepository) Create(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	av, err := attributevalue.MarshalMap(toBudgetItem(b))
	if err != nil {
		return entities.Budget{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Budget{}, err
	}
	return b, nil
}

func (r *BudgetDynamoRepository) GetByID(ctx context.Context, id string) (entities.Budget, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Budget{}, err
	}
	if len(out.Item) == 0 {
		return entities.Budget{}, nil
	}

	var it budgetItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Budget{}, err
	}
	return fromBudgetItem(it)
}

func (r *BudgetDynamoRepository) ListByOwner(ctx context.Context, ownerID string) ([]entities.Budget, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(budgetsOwnerIDIndex),
		KeyConditionExpression: aws.String("owner_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: ownerID},
		},
	})

	var budgets []entities.Budget
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			var it budgetItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			b, err := fromBudgetItem(it)
			if err != nil {
				return nil, err
			}
			budgets = append(budgets, b)
		}
	}
	return budgets, nil
}

// Update overwrites the stored record if its version still equals
// expectedVersion.
func (r *BudgetDynamoRepository) Update(ctx context.Context, b entities.Budget, expectedVersion int64) (entities.Budget, error) {
	av, err := attributevalue.MarshalMap(toBudgetItem(b))
	if err != nil {
		return entities.Budget{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames:  versionNames(),
		ExpressionAttributeValues: versionValues(expectedVersion),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return entities.Budget{}, fmt.Errorf("budget %s moved past version %d: %w", b.ID, expectedVersion, entities.ErrStaleSnapshot)
		}
		return entities.Budget{}, err
	}
	return b, nil
}

func (r *BudgetDynamoRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(id),
		ConditionExpression:       aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames:  versionNames(),
		ExpressionAttributeValues: versionValues(expectedVersion),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("budget %s moved past version %d: %w", id, expectedVersion, entities.ErrStaleSnapshot)
		}
		return err
	}
	return nil
}

func versionNames() map[string]string {
	return map[string]string{
		"#id":      "id",
		"#version": "version",
	}
}

func versionValues(expected int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)},
	}
}

func toBudgetItem(b entities.Budget) budgetItem {
	lines := make([]budgetLineItem, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = budgetLineItem{
			Kind:          string(l.Ref.Kind()),
			RefID:         l.Ref.ID(),
			Quantity:      l.Quantity.String(),
			UnitPrice:     formatOptDecimal(l.UnitPrice),
			Cost:          formatOptDecimal(l.Cost),
			MarginPercent: formatOptDecimal(l.MarginPercent),
			Description:   l.Description,
		}
	}
	taxes := make([]taxSnapshotItem, len(b.Totals.Taxes))
	for i, s := range b.Totals.Taxes {
		taxes[i] = taxSnapshotItem{
			TaxID:      s.TaxID,
			Name:       s.Name,
			Percentage: s.Percentage.String(),
			Amount:     s.Amount.String(),
		}
	}
	taxIDs := b.TaxIDs
	if taxIDs == nil {
		taxIDs = []string{}
	}

	return budgetItem{
		ID:             b.ID,
		OwnerID:        b.OwnerID,
		ClientID:       b.ClientID,
		CurrencyID:     b.CurrencyID,
		Lines:          lines,
		TaxIDs:         taxIDs,
		AgencyAmount:   formatOptDecimal(b.AgencyMargin.Amount),
		AgencyPercent:  formatOptDecimal(b.AgencyMargin.Percent),
		ValidFrom:      formatTime(b.Validity.Start),
		ValidUntil:     formatTime(b.Validity.End),
		ValidityPreset: string(b.Validity.Preset),
		State:          string(b.State),
		Subtotal:       b.Totals.Subtotal.String(),
		Taxes:          taxes,
		TaxTotal:       b.Totals.TaxTotal.String(),
		AgencyProfit:   b.Totals.AgencyProfit.String(),
		GrandTotal:     b.Totals.GrandTotal.String(),
		Version:        b.Version,
		CreatedAt:      formatTime(b.CreatedAt),
		UpdatedAt:      formatTime(b.UpdatedAt),
	}
}

func fromBudgetItem(it budgetItem) (entities.Budget, error) {
	b := entities.Budget{
		ID:         it.ID,
		OwnerID:    it.OwnerID,
		ClientID:   it.ClientID,
		CurrencyID: it.CurrencyID,
		TaxIDs:     it.TaxIDs,
		State:      entities.BudgetState(it.State),
		Version:    it.Version,
	}
	var err error

	b.Lines = make([]entities.LineItem, len(it.Lines))
	for i, l := range it.Lines {
		ref, rerr := entities.NewItemRef(entities.ItemKind(l.Kind), l.RefID)
		if rerr != nil {
			return entities.Budget{}, fmt.Errorf("decode lines[%d]: %w", i, rerr)
		}
		line := entities.LineItem{Ref: ref, Description: l.Description}
		if line.Quantity, err = parseDecimal("quantity", l.Quantity); err != nil {
			return entities.Budget{}, err
		}
		if line.UnitPrice, err = parseOptDecimal("unit_price", l.UnitPrice); err != nil {
			return entities.Budget{}, err
		}
		if line.Cost, err = parseOptDecimal("cost", l.Cost); err != nil {
			return entities.Budget{}, err
		}
		if line.MarginPercent, err = parseOptDecimal("margin_percent", l.MarginPercent); err != nil {
			return entities.Budget{}, err
		}
		b.Lines[i] = line
	}

	if b.AgencyMargin.Amount, err = parseOptDecimal("agency_amount", it.AgencyAmount); err != nil {
		return entities.Budget{}, err
	}
	if b.AgencyMargin.Percent, err = parseOptDecimal("agency_percent", it.AgencyPercent); err != nil {
		return entities.Budget{}, err
	}

	b.Validity.Preset = entities.Preset(it.ValidityPreset)
	if b.Validity.Start, err = parseTime(it.ValidFrom); err != nil {
		return entities.Budget{}, err
	}
	if b.Validity.End, err = parseTime(it.ValidUntil); err != nil {
		return entities.Budget{}, err
	}

	b.Totals.Taxes = make([]entities.TaxSnapshot, len(it.Taxes))
	for i, s := range it.Taxes {
		snap := entities.TaxSnapshot{TaxID: s.TaxID, Name: s.Name}
		if snap.Percentage, err = parseDecimal("taxes.percentage", s.Percentage); err != nil {
			return entities.Budget{}, err
		}
		if snap.Amount, err = parseDecimal("taxes.amount", s.Amount); err != nil {
			return entities.Budget{}, err
		}
		b.Totals.Taxes[i] = snap
	}
	if b.Totals.Subtotal, err = parseDecimal("subtotal", it.Subtotal); err != nil {
		return entities.Budget{}, err
	}
	if b.Totals.TaxTotal, err = parseDecimal("tax_total", it.TaxTotal); err != nil {
		return entities.Budget{}, err
	}
	if b.Totals.AgencyProfit, err = parseDecimal("agency_profit", it.AgencyProfit); err != nil {
		return entities.Budget{}, err
	}
	if b.Totals.GrandTotal, err = parseDecimal("grand_total", it.GrandTotal); err != nil {
		return entities.Budget{}, err
	}

	if b.CreatedAt, err = parseTime(it.CreatedAt); err != nil {
		return entities.Budget{}, err
	}
	if b.UpdatedAt, err = parseTime(it.UpdatedAt); err != nil {
		return entities.Budget{}, err
	}
	return b, nil
}
