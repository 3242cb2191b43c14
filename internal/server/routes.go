package server

import "net/http"

func (s *Server) initRoutes() {
	api := s.APIMiddleware()
	authed := append(s.APIMiddleware(), s.RequireAuth())

	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), api...))

	// Preflight requests are answered by the CORS middleware on any path.
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, api...))

	// Google OAuth flow
	s.RegisterRouteHandler("GET /auth/google/login", ChainMiddleware(s.GoogleLoginHandler(), api...))
	s.RegisterRouteHandler("GET /auth/google/callback", ChainMiddleware(s.GoogleCallbackHandler(), api...))
	s.RegisterRouteHandler("POST /auth/refresh", ChainMiddleware(s.RefreshHandler(), api...))

	// Users
	s.RegisterRouteHandler("GET /users/", ChainMiddleware(s.ListUsersHandler(), api...))
	s.RegisterRouteHandler("GET /users/me", ChainMiddleware(s.MeHandler(), authed...))

	// Products
	s.RegisterRouteHandler("GET /products/", ChainMiddleware(s.ListProductsHandler(), api...))
	s.RegisterRouteHandler("POST /products/", ChainMiddleware(s.CreateProductHandler(), authed...))
	s.RegisterRouteHandler("GET /products/{id}", ChainMiddleware(s.GetProductHandler(), api...))
	s.RegisterRouteHandler("PUT /products/{id}", ChainMiddleware(s.UpdateProductHandler(), api...))
	s.RegisterRouteHandler("DELETE /products/{id}", ChainMiddleware(s.DeleteProductHandler(), api...))

	// Wishlist
	s.RegisterRouteHandler("POST /wishlist/{product_id}", ChainMiddleware(s.AddToWishlistHandler(), authed...))
	s.RegisterRouteHandler("GET /wishlist/", ChainMiddleware(s.ListWishlistHandler(), authed...))
	s.RegisterRouteHandler("DELETE /wishlist/{product_id}", ChainMiddleware(s.RemoveFromWishlistHandler(), authed...))

	// Orders
	s.RegisterRouteHandler("POST /orders/", ChainMiddleware(s.CreateOrderHandler(), authed...))
	s.RegisterRouteHandler("GET /orders/", ChainMiddleware(s.ListOrdersHandler(), authed...))

	// Basket
	s.RegisterRouteHandler("POST /basket/{product_id}", ChainMiddleware(s.AddToBasketHandler(), authed...))
	s.RegisterRouteHandler("GET /basket/", ChainMiddleware(s.ListBasketHandler(), authed...))
	s.RegisterRouteHandler("DELETE /basket/{product_id}", ChainMiddleware(s.RemoveFromBasketHandler(), authed...))
}

// IndexHandler reports the service identity, doubling as a liveness probe.
func (s *Server) IndexHandler() http.HandlerFunc {
	type indexResponse struct {
		App    string `json:"app"`
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, indexResponse{App: s.config.AppName, Status: "ok"})
	}
}
