package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/unimercado/unimercado-api/internal/application/auth"
	"github.com/unimercado/unimercado-api/internal/application/usecase"
	"github.com/unimercado/unimercado-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	StoreUC    *usecase.StoreUseCase
	CategoryUC *usecase.CategoryUseCase
	ProductUC  *usecase.ProductUseCase
	CartUC     *usecase.CartUseCase
	CheckoutUC *usecase.CheckoutUseCase
	ReceiptUC  *usecase.ReceiptUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authRequired := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (público, salvo la invitación de admins)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/admin/invite", authRequired, adminOnly, authHandler.InviteAdmin)
	authGroup.Post("/admin/register", authHandler.RegisterAdmin)
	authGroup.Post("/send-otp", authHandler.SendOTP)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Get("/verify-reset-token", authHandler.VerifyResetToken)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Catálogo público: navegación y búsqueda sin sesión
	productHandler := NewProductHandler(deps.ProductUC)
	api.Get("/products", productHandler.Search)
	api.Get("/products/:id", productHandler.GetByID)

	storeHandler := NewStoreHandler(deps.StoreUC)
	api.Get("/stores", storeHandler.List)
	api.Get("/stores/:id", storeHandler.GetByID)

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	api.Get("/categories", categoryHandler.List)
	api.Get("/categories/:id", categoryHandler.GetByID)

	// Mutaciones del catálogo (requieren Bearer Token)
	api.Post("/products", authRequired, productHandler.Create)
	api.Put("/products/:id", authRequired, productHandler.Update)
	api.Delete("/products/:id", authRequired, productHandler.Delete)

	api.Post("/stores", authRequired, storeHandler.Create)
	api.Put("/stores/:id", authRequired, storeHandler.Update)
	api.Delete("/stores/:id", authRequired, storeHandler.Delete)

	api.Post("/categories", authRequired, adminOnly, categoryHandler.Create)
	api.Delete("/categories/:id", authRequired, adminOnly, categoryHandler.Delete)

	// Carrito (protegido)
	cart := api.Group("/cart", authRequired)
	cartHandler := NewCartHandler(deps.CartUC)
	cart.Get("/", cartHandler.List)
	cart.Post("/", cartHandler.Add)
	cart.Put("/:id", cartHandler.UpdateQuantity)
	cart.Delete("/user/:id", cartHandler.Clear)
	cart.Delete("/:id", cartHandler.Remove)

	// Órdenes (protegido)
	orders := api.Group("/orders", authRequired)
	orderHandler := NewOrderHandler(deps.CheckoutUC, deps.ReceiptUC)
	orders.Post("/", orderHandler.Checkout)
	orders.Get("/", orderHandler.ListMine)
	orders.Get("/:id/receipt", orderHandler.Receipt)
	orders.Get("/:id", orderHandler.GetByID)
}
