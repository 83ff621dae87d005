package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/slicelab/pizzeria/internal/api/blob"
	"github.com/slicelab/pizzeria/internal/api/domain"
	"github.com/slicelab/pizzeria/internal/api/notify"
	"github.com/slicelab/pizzeria/internal/api/store"
	"github.com/slicelab/pizzeria/pkg/idx"
)

var ErrPizzaExists = errors.New("pizza_exists")

// Notifier is the slice of the broker the pizza service needs.
type Notifier interface {
	Send(e notify.Event)
}

type PizzaService struct {
	Store   store.Store
	Broker  Notifier
	Uploads blob.Uploader
	Logger  *slog.Logger
}

type CreatePizzaInput struct {
	Name          string
	Description   string
	Size          int64
	IngredientIDs []int64

	// Optional image; stored via the blob collaborator before the row is
	// written so the URL can go in the same insert.
	Image            []byte
	ImageContentType string
}

// pizzaCreatedData is the `data` part of the notification envelope.
type pizzaCreatedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (s *PizzaService) Create(ctx context.Context, tenant int64, createdBy string, in CreatePizzaInput) (domain.Pizza, error) {
	pizza := domain.Pizza{
		ID:            idx.New().String(),
		TenantID:      tenant,
		Name:          in.Name,
		Description:   in.Description,
		Size:          in.Size,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC(),
		IngredientIDs: in.IngredientIDs,
	}

	if len(in.Image) > 0 && s.Uploads != nil {
		url, err := s.Uploads.Put(ctx, "pizzas/"+pizza.ID, in.Image, in.ImageContentType)
		if err != nil {
			return domain.Pizza{}, fmt.Errorf("upload image: %w", err)
		}
		pizza.ImageURL = url
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Pizzas().CreatePizza(ctx, pizza)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Pizza{}, ErrPizzaExists
		}
		return domain.Pizza{}, err
	}

	s.emitCreated(pizza)

	return pizza, nil
}

// emitCreated hands the event to the broker. Best-effort by contract: a
// notification problem never fails the create that produced it.
func (s *PizzaService) emitCreated(pizza domain.Pizza) {
	event, err := notify.NewEvent(pizza.TenantID, "pizza_created", pizzaCreatedData{
		ID:   pizza.ID,
		Name: pizza.Name,
		Size: pizza.Size,
	})
	if err != nil {
		s.Logger.Error("encode pizza_created event", "pizza_id", pizza.ID, "err", err)
		return
	}

	s.Broker.Send(event)
}

func (s *PizzaService) List(ctx context.Context, tenant int64) ([]domain.Pizza, error) {
	return s.Store.Pizzas().ListPizzas(ctx, tenant)
}
