package http

import (
	"net/http"

	"github.com/slicelab/pizzeria/internal/api/service"
	"github.com/slicelab/pizzeria/pkg/httpx"
	"github.com/slicelab/pizzeria/pkg/slogx"
)

type ingredientResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type shopResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type IngredientListHandler struct {
	CatalogService *service.CatalogService
}

func (h *IngredientListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ingredients, err := h.CatalogService.Ingredients(ctx)
	if err != nil {
		log.Error("list ingredients", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	out := make([]ingredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, ingredientResponse{ID: ing.ID, Name: ing.Name, ImageURL: ing.ImageURL})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"ingredients": out,
	})
}

type TagListHandler struct {
	CatalogService *service.CatalogService
}

func (h *TagListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tags, err := h.CatalogService.Tags(ctx)
	if err != nil {
		log.Error("list tags", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	out := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tagResponse{ID: tag.ID, Name: tag.Name})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tags":    out,
	})
}

type ShopListHandler struct {
	CatalogService *service.CatalogService
}

func (h *ShopListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	shops, err := h.CatalogService.Shops(ctx)
	if err != nil {
		log.Error("list shops", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	out := make([]shopResponse, 0, len(shops))
	for _, shop := range shops {
		out = append(out, shopResponse{ID: shop.ID, Name: shop.Name, Address: shop.Address})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stores":  out,
	})
}
