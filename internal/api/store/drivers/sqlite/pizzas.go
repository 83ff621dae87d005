package sqlite

import (
	"context"

	"github.com/slicelab/pizzeria/internal/api/domain"
)

type pizzasRepo struct {
	db dbtx
}

func (r *pizzasRepo) CreatePizza(ctx context.Context, p domain.Pizza) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pizzas (id, tenant_id, name, description, size, image_url, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, p.Name, p.Description, p.Size, p.ImageURL, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return mapConstraint(err)
	}

	for _, ingredientID := range p.IngredientIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO pizza_ingredients (pizza_id, ingredient_id) VALUES (?, ?)`,
			p.ID, ingredientID); err != nil {
			return err
		}
	}

	return nil
}

func (r *pizzasRepo) ListPizzas(ctx context.Context, tenant int64) ([]domain.Pizza, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, description, size, image_url, created_by, created_at
		 FROM pizzas WHERE tenant_id = ? ORDER BY created_at DESC`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pizzas []domain.Pizza
	for rows.Next() {
		var p domain.Pizza
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Size,
			&p.ImageURL, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		pizzas = append(pizzas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range pizzas {
		ids, err := r.ingredientIDs(ctx, pizzas[i].ID)
		if err != nil {
			return nil, err
		}
		pizzas[i].IngredientIDs = ids
	}

	return pizzas, nil
}

func (r *pizzasRepo) ingredientIDs(ctx context.Context, pizzaID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ingredient_id FROM pizza_ingredients WHERE pizza_id = ? ORDER BY ingredient_id`, pizzaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
