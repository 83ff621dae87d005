package sqlite

import (
	"context"

	"github.com/slicelab/pizzeria/internal/api/domain"
)

type catalogRepo struct {
	db dbtx
}

func (r *catalogRepo) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image_url FROM ingredients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []domain.Ingredient
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.ImageURL); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (r *catalogRepo) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *catalogRepo) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address FROM shops ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []domain.Shop
	for rows.Next() {
		var shop domain.Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.Address); err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}
