package repository

import (
	"context"
	"fmt"

	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// catalogEntryItem is the shared shape of the products and services tables.
type catalogEntryItem struct {
	ID                   string `dynamodbav:"id"`
	Name                 string `dynamodbav:"name"`
	Cost                 string `dynamodbav:"cost"`
	DefaultMarginPercent string `dynamodbav:"default_margin_percent"`
	CurrencyID           string `dynamodbav:"currency_id"`
}

type taxItem struct {
	ID         string `dynamodbav:"id"`
	Name       string `dynamodbav:"name"`
	Percentage string `dynamodbav:"percentage"`
	Active     bool   `dynamodbav:"active"`
}

type currencyItem struct {
	ID              string `dynamodbav:"id"`
	Code            string `dynamodbav:"code"`
	MinorUnitDigits *int32 `dynamodbav:"minor_unit_digits"`
}

// CatalogTables names the read-only catalog tables. Each one is keyed by
// id (string).
type CatalogTables struct {
	Products   string
	Services   string
	Taxes      string
	Currencies string
}

// CatalogDynamoRepository reads catalog entries from DynamoDB. The
// catalogs are maintained elsewhere; nothing here writes.
type CatalogDynamoRepository struct {
	ddb    DynamoAPI
	tables CatalogTables
}

var _ interfaces.ICatalogRepository = (*CatalogDynamoRepository)(nil)

func NewCatalogDynamoRepository(ddb DynamoAPI, tables CatalogTables) *CatalogDynamoRepository {
	return &CatalogDynamoRepository{ddb: ddb, tables: tables}
}

func (r *CatalogDynamoRepository) GetItem(ctx context.Context, ref entities.ItemRef) (entities.CatalogItem, bool, error) {
	var table string
	switch {
	case ref.IsProduct():
		table = r.tables.Products
	case ref.IsService():
		table = r.tables.Services
	default:
		return entities.CatalogItem{}, false, entities.ErrInvalidItemRef
	}

	var it catalogEntryItem
	found, err := r.get(ctx, table, ref.ID(), &it)
	if err != nil || !found {
		return entities.CatalogItem{}, false, err
	}

	item := entities.CatalogItem{Ref: ref, Name: it.Name, CurrencyID: it.CurrencyID}
	if item.Cost, err = parseDecimal("cost", it.Cost); err != nil {
		return entities.CatalogItem{}, false, err
	}
	if item.DefaultMarginPercent, err = parseDecimal("default_margin_percent", it.DefaultMarginPercent); err != nil {
		return entities.CatalogItem{}, false, err
	}
	return item, true, nil
}

func (r *CatalogDynamoRepository) GetTax(ctx context.Context, id string) (entities.Tax, bool, error) {
	var it taxItem
	found, err := r.get(ctx, r.tables.Taxes, id, &it)
	if err != nil || !found {
		return entities.Tax{}, false, err
	}
	pct, err := parseDecimal("percentage", it.Percentage)
	if err != nil {
		return entities.Tax{}, false, err
	}
	return entities.Tax{ID: it.ID, Name: it.Name, Percentage: pct, Active: it.Active}, true, nil
}

func (r *CatalogDynamoRepository) GetCurrency(ctx context.Context, id string) (entities.Currency, bool, error) {
	var it currencyItem
	found, err := r.get(ctx, r.tables.Currencies, id, &it)
	if err != nil || !found {
		return entities.Currency{}, false, err
	}
	digits := entities.DefaultMinorUnitDigits
	if it.MinorUnitDigits != nil {
		digits = *it.MinorUnitDigits
	}
	return entities.Currency{ID: it.ID, Code: it.Code, MinorUnitDigits: digits}, true, nil
}

func (r *CatalogDynamoRepository) get(ctx context.Context, table, id string, out any) (bool, error) {
	res, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", table, err)
	}
	if len(res.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return false, fmt.Errorf("%s: %w", table, err)
	}
	return true, nil
}
