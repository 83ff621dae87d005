package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slicelab/pizzeria/internal/api/domain"
	"github.com/slicelab/pizzeria/internal/api/service"
	"github.com/slicelab/pizzeria/pkg/httpx"
	"github.com/slicelab/pizzeria/pkg/slogx"
)

// maxImageBytes caps uploaded pizza images at 4 MiB.
const maxImageBytes = 4 << 20

type PizzaCreateHandler struct {
	PizzaService *service.PizzaService
}

type pizzaResponse struct {
	ID            string    `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Size          int64     `json:"size"`
	ImageURL      string    `json:"image_url,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	IngredientIDs []int64   `json:"ingredient_ids"`
}

func toPizzaResponse(p domain.Pizza) pizzaResponse {
	return pizzaResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		Name:          p.Name,
		Description:   p.Description,
		Size:          p.Size,
		ImageURL:      p.ImageURL,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		IngredientIDs: p.IngredientIDs,
	}
}

// ServeHTTP accepts multipart form uploads so the pizza fields and an
// optional image travel in one request.
func (h *PizzaCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	size, err := strconv.ParseInt(r.FormValue("size"), 10, 64)
	if err != nil || size <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "size must be a positive integer")
		return
	}

	var ingredientIDs []int64
	if raw := r.FormValue("ingredient_ids"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &ingredientIDs); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "ingredient_ids must be a JSON array of integers")
			return
		}
	}

	in := service.CreatePizzaInput{
		Name:          name,
		Description:   r.FormValue("description"),
		Size:          size,
		IngredientIDs: ingredientIDs,
	}

	if file, header, ferr := r.FormFile("image"); ferr == nil {
		defer file.Close()
		data, rerr := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if rerr != nil {
			httpx.WriteError(w, http.StatusBadRequest, "unable to read image")
			return
		}
		if len(data) > maxImageBytes {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		in.Image = data
		in.ImageContentType = header.Header.Get("Content-Type")
	}

	tenant := httpx.TenantFromCtx(ctx)
	subject := httpx.SubjectFromCtx(ctx)

	pizza, err := h.PizzaService.Create(ctx, tenant, subject, in)
	if err != nil {
		if errors.Is(err, service.ErrPizzaExists) {
			httpx.WriteError(w, http.StatusConflict, "a pizza with that name already exists")
			return
		}
		log.Error("create pizza", "tenant_id", tenant, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"pizza":   toPizzaResponse(pizza),
	})
}

type PizzaListHandler struct {
	PizzaService *service.PizzaService
}

func (h *PizzaListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tenant := httpx.TenantFromCtx(ctx)
	pizzas, err := h.PizzaService.List(ctx, tenant)
	if err != nil {
		log.Error("list pizzas", "tenant_id", tenant, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	out := make([]pizzaResponse, 0, len(pizzas))
	for _, p := range pizzas {
		out = append(out, toPizzaResponse(p))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"pizzas":  out,
	})
}
