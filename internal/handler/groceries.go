package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/store"
)

type GroceryOptionRequest struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

type GroceryRequest struct {
	Title       string                 `json:"title" validate:"required"`
	ImageURL    string                 `json:"imageUrl"`
	Rating      float64                `json:"rating" validate:"gte=0,lte=5"`
	Price       float64                `json:"price" validate:"gte=0"`
	Discount    float64                `json:"discount" validate:"gte=0"`
	Description string                 `json:"description"`
	Options     []GroceryOptionRequest `json:"options" validate:"dive"`
}

func ListGroceries(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groceries, err := db.ListGroceries(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, groceries)
	}
}

func GetGrocery(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		grocery, err := db.GroceryByID(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, grocery)
	}
}

func CreateGrocery(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req GroceryRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "Invalid request body.")
			return
		}
		if err := validate.Struct(req); err != nil {
			badRequest(w, err.Error())
			return
		}

		grocery := model.Grocery{
			Title:       req.Title,
			ImageURL:    req.ImageURL,
			Rating:      req.Rating,
			Price:       req.Price,
			Discount:    req.Discount,
			Description: req.Description,
		}
		for _, opt := range req.Options {
			grocery.Options = append(grocery.Options, model.GroceryOption{
				Name:  opt.Name,
				Price: opt.Price,
			})
		}

		id, err := db.CreateGrocery(ctx, grocery)
		if err != nil {
			respondError(w, err)
			return
		}

		created, err := db.GroceryByID(ctx, id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, created)
	}
}

func UpdateGrocery(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		var req GroceryRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "Invalid request body.")
			return
		}
		if err := validate.Struct(req); err != nil {
			badRequest(w, err.Error())
			return
		}

		err = db.UpdateGrocery(ctx, store.UpdateGroceryParams{
			ID:          id,
			Title:       req.Title,
			ImageURL:    req.ImageURL,
			Rating:      req.Rating,
			Price:       req.Price,
			Discount:    req.Discount,
			Description: req.Description,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		updated, err := db.GroceryByID(ctx, id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, updated)
	}
}

func DeleteGrocery(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		deleted, err := db.DeleteGrocery(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		if !deleted {
			respondError(w, model.ErrNotFound)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}
