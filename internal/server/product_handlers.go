package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopworks/go-commerce-server/internal/models"
	"github.com/shopworks/go-commerce-server/internal/repositories/products"
	"github.com/shopworks/go-commerce-server/internal/repositories/repomanager"
	"github.com/shopworks/go-commerce-server/internal/storage"
)

const maxUploadBytes = 32 << 20

// ListProductsHandler returns one page of the catalog.
func (s *Server) ListProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, limit := pagination(r)
		list, err := s.repos.Products.List(r.Context(), skip, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, list)
	}
}

// GetProductHandler returns one product with its media.
func (s *Server) GetProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid product id"})
			return
		}

		product, err := s.repos.Products.GetByID(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, product)
	}
}

// CreateProductHandler accepts a multipart form with the product fields and
// zero or more image files. The row, the uploads and the media records are
// committed together: an upload failure rolls the product back.
func (s *Server) CreateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "Not authenticated"})
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Invalid multipart form"})
			return
		}

		name := r.FormValue("name")
		if name == "" {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Product name is required"})
			return
		}
		price, err := strconv.ParseFloat(r.FormValue("price"), 64)
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid price"})
			return
		}

		var product *models.Product
		err = s.tx.WithTx(r.Context(), func(repos repomanager.Repos) error {
			created, err := repos.Products.Create(r.Context(), &models.Product{
				Name:        name,
				Description: r.FormValue("description"),
				Price:       price,
				IsActive:    true,
				CreatedByID: &user.ID,
			})
			if err != nil {
				return err
			}

			var files []storage.ImageFile
			for _, header := range r.MultipartForm.File["files"] {
				f, err := header.Open()
				if err != nil {
					return err
				}
				defer f.Close()
				files = append(files, storage.ImageFile{
					Name:        header.Filename,
					ContentType: header.Header.Get("Content-Type"),
					Reader:      f,
				})
			}

			if len(files) > 0 {
				urls, err := s.blobs.Upload(r.Context(), created.ID, files)
				if err != nil {
					return err
				}
				media, err := repos.Media.CreateBatch(r.Context(), created.ID, urls)
				if err != nil {
					return err
				}
				created.Media = media
			}

			product = created
			return nil
		})
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, product)
	}
}

type productUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateProductHandler applies a partial update; absent fields keep their
// stored values.
func (s *Server) UpdateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid product id"})
			return
		}

		var req productUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Invalid request body"})
			return
		}

		var updatedByID *int64
		if user, ok := currentUser(r); ok {
			updatedByID = &user.ID
		}

		product, err := s.repos.Products.Update(r.Context(), id, products.UpdateParams{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			IsActive:    req.IsActive,
		}, updatedByID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, product)
	}
}

func (s *Server) DeleteProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid product id"})
			return
		}

		if err := s.repos.Products.Delete(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
