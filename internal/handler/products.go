package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/files"
	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/store"
)

const maxImageSize = 10 << 20 // 10 MiB

// CreateProduct handles the multipart product form: metadata fields
// plus an "image" file that goes to the asset store before the row is
// persisted.
func CreateProduct(db *store.Store, assets files.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sellerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			badRequest(w, "Invalid form data.")
			return
		}

		price, err := strconv.ParseFloat(r.PostFormValue("price"), 64)
		if err != nil {
			badRequest(w, "Invalid price.")
			return
		}

		image, header, err := r.FormFile("image")
		if err != nil {
			badRequest(w, "Missing image.")
			return
		}
		defer image.Close() //nolint:errcheck

		if header.Size > maxImageSize {
			badRequest(w, "Image exceeds the 10MB limit.")
			return
		}
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			badRequest(w, "File must be an image.")
			return
		}

		upload, err := assets.UploadImage(ctx, image)
		if err != nil {
			log.Printf("image upload failed: %v", err)
			respondError(w, err)
			return
		}

		productID, err := db.CreateProduct(ctx, store.CreateProductParams{
			Name:            r.PostFormValue("name"),
			Description:     r.PostFormValue("description"),
			Price:           price,
			ImageURL:        upload.ImageURL,
			ExternalImageID: upload.AssetExternalID,
			SellerID:        sellerID,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		product, err := db.ProductByID(ctx, productID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, product)
	}
}

func ListProducts(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := db.ListProducts(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, products)
	}
}

func GetProduct(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		product, err := db.ProductByID(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// UpdateProduct lets the seller, and only the seller, change product
// metadata.
func UpdateProduct(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		var req UpdateProductRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "Invalid request body.")
			return
		}
		if err := validate.Struct(req); err != nil {
			badRequest(w, err.Error())
			return
		}

		product, err := db.ProductByID(ctx, id)
		if err != nil {
			respondError(w, err)
			return
		}
		if product.Seller.ID != callerID {
			respondError(w, model.ErrUnauthorized)
			return
		}

		err = db.UpdateProduct(ctx, store.UpdateProductParams{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		product, err = db.ProductByID(ctx, id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

// UpdateProductImage replaces the product image. The new asset is
// uploaded before the row is touched, so a failed upload leaves the
// old image in place.
func UpdateProductImage(db *store.Store, assets files.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		product, err := db.ProductByID(ctx, id)
		if err != nil {
			respondError(w, err)
			return
		}
		if product.Seller.ID != callerID {
			respondError(w, model.ErrUnauthorized)
			return
		}

		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			badRequest(w, "Invalid form data.")
			return
		}

		image, header, err := r.FormFile("image")
		if err != nil {
			badRequest(w, "Missing image.")
			return
		}
		defer image.Close() //nolint:errcheck

		if header.Size > maxImageSize {
			badRequest(w, "Image exceeds the 10MB limit.")
			return
		}
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			badRequest(w, "File must be an image.")
			return
		}

		upload, err := assets.UploadImage(ctx, image)
		if err != nil {
			log.Printf("image upload failed: %v", err)
			respondError(w, err)
			return
		}

		if err := db.UpdateProductImage(ctx, id, upload.ImageURL, upload.AssetExternalID); err != nil {
			respondError(w, err)
			return
		}

		if err := assets.DeleteAssets(ctx, []string{product.ExternalImageID}); err != nil {
			log.Printf("failed to delete replaced product image: %v", err)
		}

		product, err = db.ProductByID(ctx, id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

// DeleteProduct removes the row and its stored image. Asset deletion
// failures are logged, not surfaced; the catalog row is authoritative.
func DeleteProduct(db *store.Store, assets files.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		product, err := db.ProductByID(ctx, id)
		if err != nil {
			respondError(w, err)
			return
		}
		if product.Seller.ID != callerID {
			respondError(w, model.ErrUnauthorized)
			return
		}

		if err := assets.DeleteAssets(ctx, []string{product.ExternalImageID}); err != nil {
			log.Printf("failed to delete product image: %v", err)
		}

		deleted, err := db.DeleteProduct(ctx, id)
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
