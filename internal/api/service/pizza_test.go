package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slicelab/pizzeria/internal/api/notify"
)

type captureNotifier struct {
	events []notify.Event
}

func (c *captureNotifier) Send(e notify.Event) { c.events = append(c.events, e) }

type captureUploader struct {
	key  string
	data []byte
}

func (c *captureUploader) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	c.key = key
	c.data = data
	return "/uploads/" + key, nil
}

func newPizzaService(t *testing.T) (*PizzaService, *captureNotifier, *captureUploader) {
	t.Helper()

	notifier := &captureNotifier{}
	uploader := &captureUploader{}
	svc := &PizzaService{
		Store:   newTestDB(t),
		Broker:  notifier,
		Uploads: uploader,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return svc, notifier, uploader
}

func seedCreator(t *testing.T, svc *PizzaService, tenant int64) string {
	t.Helper()

	users := &UserService{Store: svc.Store}
	user, err := users.Create(context.Background(), CreateUserInput{
		TenantID: tenant,
		Username: "chef",
		Password: "very-secret-pw",
	})
	require.NoError(t, err)
	return user.ID
}

func TestPizzaCreateEmitsEvent(t *testing.T) {
	svc, notifier, _ := newPizzaService(t)
	ctx := context.Background()
	creator := seedCreator(t, svc, 1)

	pizza, err := svc.Create(ctx, 1, creator, CreatePizzaInput{
		Name:          "Diavola",
		Size:          32,
		IngredientIDs: []int64{1, 2, 4},
	})
	require.NoError(t, err)
	require.NotEmpty(t, pizza.ID)

	require.Len(t, notifier.events, 1)
	require.Equal(t, notify.NotificationChannel, notifier.events[0].Channel)

	var envelope notify.Envelope
	require.NoError(t, json.Unmarshal([]byte(notifier.events[0].Payload), &envelope))
	require.Equal(t, int64(1), envelope.TenantID)
	require.Equal(t, "pizza_created", envelope.Payload.EventName)

	var data struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Size int64  `json:"size"`
	}
	require.NoError(t, json.Unmarshal(envelope.Payload.Data, &data))
	require.Equal(t, pizza.ID, data.ID)
	require.Equal(t, "Diavola", data.Name)
	require.Equal(t, int64(32), data.Size)
}

func TestPizzaCreateUploadsImage(t *testing.T) {
	svc, _, uploader := newPizzaService(t)
	ctx := context.Background()
	creator := seedCreator(t, svc, 1)

	pizza, err := svc.Create(ctx, 1, creator, CreatePizzaInput{
		Name:             "Capricciosa",
		Size:             28,
		Image:            []byte{0xff, 0xd8, 0xff},
		ImageContentType: "image/jpeg",
	})
	require.NoError(t, err)
	require.Equal(t, "pizzas/"+pizza.ID, uploader.key)
	require.Equal(t, "/uploads/pizzas/"+pizza.ID, pizza.ImageURL)
}

func TestPizzaCreateDuplicateName(t *testing.T) {
	svc, notifier, _ := newPizzaService(t)
	ctx := context.Background()
	creator := seedCreator(t, svc, 1)

	_, err := svc.Create(ctx, 1, creator, CreatePizzaInput{Name: "Margherita", Size: 32})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, creator, CreatePizzaInput{Name: "Margherita", Size: 28})
	require.ErrorIs(t, err, ErrPizzaExists)

	// Only the successful create produced an event.
	require.Len(t, notifier.events, 1)
}

func TestPizzaList(t *testing.T) {
	svc, _, _ := newPizzaService(t)
	ctx := context.Background()
	creator := seedCreator(t, svc, 1)

	_, err := svc.Create(ctx, 1, creator, CreatePizzaInput{Name: "Margherita", Size: 32})
	require.NoError(t, err)

	pizzas, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pizzas, 1)

	pizzas, err = svc.List(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, pizzas)
}
