package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopworks/go-commerce-server/internal/models"
)

func productIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("product_id"), 10, 64)
	return id, err == nil
}

// AddToWishlistHandler stores the product on the caller's wishlist. Adding
// an already wished product is a no-op.
func (s *Server) AddToWishlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)
		productID, ok := productIDFromPath(r)
		if !ok {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid product id"})
			return
		}

		if _, err := s.repos.Products.GetByID(r.Context(), productID); err != nil {
			s.writeError(w, err)
			return
		}

		entry, err := s.repos.Wishlists.Add(r.Context(), user.ID, productID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, entry)
	}
}

func (s *Server) ListWishlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)
		entries, err := s.repos.Wishlists.ListByUser(r.Context(), user.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) RemoveFromWishlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)
		productID, ok := productIDFromPath(r)
		if !ok {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid product id"})
			return
		}

		if err := s.repos.Wishlists.Remove(r.Context(), user.ID, productID); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type createOrderRequest struct {
	ProductID int64 `json:"product_id"`
}

// CreateOrderHandler records an order at the product's current price.
func (s *Server) CreateOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Invalid request body"})
			return
		}

		product, err := s.repos.Products.GetByID(r.Context(), req.ProductID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		order, err := s.repos.Orders.Create(r.Context(), &models.Order{
			UserID:    user.ID,
			ProductID: product.ID,
			Amount:    product.Price,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, order)
	}
}

func (s *Server) ListOrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)
		orders, err := s.repos.Orders.ListByUser(r.Context(), user.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, orders)
	}
}

// AddToBasketHandler adds the product to the caller's basket, accumulating
// quantity when it is already there.
func (s *Server) AddToBasketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)
		productID, ok := productIDFromPath(r)
		if !ok {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid product id"})
			return
		}

		quantity := 1
		if q := r.URL.Query().Get("quantity"); q != "" {
			parsed, err := strconv.Atoi(q)
			if err != nil || parsed <= 0 {
				s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid quantity"})
				return
			}
			quantity = parsed
		}

		if _, err := s.repos.Products.GetByID(r.Context(), productID); err != nil {
			s.writeError(w, err)
			return
		}

		entry, err := s.repos.Baskets.Add(r.Context(), &models.Basket{
			UserID:    user.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, entry)
	}
}

func (s *Server) ListBasketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)
		entries, err := s.repos.Baskets.ListByUser(r.Context(), user.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) RemoveFromBasketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r)
		productID, ok := productIDFromPath(r)
		if !ok {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "Invalid product id"})
			return
		}

		if err := s.repos.Baskets.Remove(r.Context(), user.ID, productID); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
