package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tokohq/go-shop-api/internal/shop"
)

var psq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type ProductStore struct{ DB *pgxpool.Pool }

// ProductChangeSet carries the fields of a partial product update; nil
// means "leave alone".
type ProductChangeSet struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
}

func (c ProductChangeSet) toMap() map[string]interface{} {
	m := map[string]interface{}{}
	if c.Name != nil {
		m["name"] = *c.Name
	}
	if c.Description != nil {
		m["description"] = *c.Description
	}
	if c.Price != nil {
		m["price"] = *c.Price
	}
	if c.Stock != nil {
		m["stock"] = *c.Stock
	}
	if c.Category != nil {
		m["category"] = *c.Category
	}
	return m
}

func (c ProductChangeSet) Empty() bool { return len(c.toMap()) == 0 }

func (s *ProductStore) Create(ctx context.Context, p *shop.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	sql, args, err := psq.Insert("products").
		SetMap(map[string]interface{}{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"stock":       p.Stock,
			"category":    p.Category,
			"user_id":     nilIfEmpty(p.UserID),
		}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := s.DB.QueryRow(ctx, sql, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, id string, change ProductChangeSet) (shop.Product, error) {
	if change.Empty() {
		return s.GetByID(ctx, id)
	}

	set := change.toMap()
	set["updated_at"] = squirrel.Expr("NOW()")

	sql, args, err := psq.Update("products").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, description, price, stock, category, user_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return shop.Product{}, fmt.Errorf("build update: %w", err)
	}

	p, err := scanProduct(s.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return shop.Product{}, shop.ErrProductNotFound
		}
		return shop.Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return shop.ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return shop.ErrProductNotFound
	}
	return nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (shop.Product, error) {
	const query = `
		SELECT id, name, description, price, stock, category, user_id, created_at, updated_at
		FROM products WHERE id=$1`

	p, err := scanProduct(s.DB.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return shop.Product{}, shop.ErrProductNotFound
		}
		return shop.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

type ListParams struct {
	Page   int
	Limit  int
	Search string
}

func (s *ProductStore) List(ctx context.Context, params ListParams) ([]shop.Product, int, error) {
	countQ := psq.Select("COUNT(*)").From("products")
	listQ := psq.
		Select("id", "name", "description", "price", "stock", "category", "user_id", "created_at", "updated_at").
		From("products")
	if params.Search != "" {
		match := squirrel.ILike{"name": "%" + params.Search + "%"}
		countQ = countQ.Where(match)
		listQ = listQ.Where(match)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := s.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	sql, args, err := listQ.
		OrderBy("created_at DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []shop.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func scanProduct(row pgx.Row) (shop.Product, error) {
	var p shop.Product
	var userID *string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.Category, &userID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return shop.Product{}, err
	}
	if userID != nil {
		p.UserID = *userID
	}
	return p, nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
