package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/unimercado/unimercado-api/internal/application/dto"
	"github.com/unimercado/unimercado-api/internal/application/usecase"
	"github.com/unimercado/unimercado-api/internal/domain"
)

// CartHandler maneja el carrito del usuario autenticado.
// El storefront siempre opera sobre el carrito del dueño del token; un admin
// puede consultar el de otro usuario.
type CartHandler struct {
	uc *usecase.CartUseCase
}

// NewCartHandler construye el handler del carrito.
func NewCartHandler(uc *usecase.CartUseCase) *CartHandler {
	return &CartHandler{uc: uc}
}

// List godoc
// @Summary      Listar el carrito de un usuario
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        userId  query  string  true  "ID del usuario"
// @Success      200  {array}  dto.CartItemResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/cart [get]
func (h *CartHandler) List(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		userID = GetUserID(c)
	}
	if userID != GetUserID(c) && GetRole(c) != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo puedes ver tu propio carrito"})
	}
	items, err := h.uc.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(items)
}

// Add godoc
// @Summary      Agregar o incrementar una línea del carrito
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AddCartItemRequest  true  "userId, productId, quantity"
// @Success      201  {object}  dto.CartItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart [post]
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.UserID == "" {
		in.UserID = GetUserID(c)
	}
	if in.UserID != GetUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo puedes modificar tu propio carrito"})
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "productId es requerido"})
	}
	out, err := h.uc.AddItem(in)
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "el producto no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateQuantity godoc
// @Summary      Fijar la cantidad absoluta de una línea
// @Description  Cantidad 0 es válida y conserva la línea; eliminar es una operación aparte
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.UpdateCartItemRequest  true  "quantity"
// @Success      200  {object}  dto.CartItemResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/{id} [put]
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.checkLineOwner(c, c.Params("id")); err != nil {
		return h.lineOwnerError(c, err)
	}
	out, err := h.uc.UpdateQuantity(c.Params("id"), in)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity no puede ser negativa"})
		case domain.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "la línea no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Eliminar una línea del carrito
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la línea"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/{id} [delete]
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	if err := h.checkLineOwner(c, c.Params("id")); err != nil {
		return h.lineOwnerError(c, err)
	}
	if err := h.uc.RemoveItem(c.Params("id")); err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "la línea no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// checkLineOwner verifica que la línea exista y pertenezca al dueño del token
// (o que el caller sea admin). Devuelve ErrNotFound / ErrForbidden para que el
// handler los mapee a HTTP.
func (h *CartHandler) checkLineOwner(c *fiber.Ctx, itemID string) error {
	item, err := h.uc.GetItem(itemID)
	if err != nil {
		return err
	}
	if item.UserID != GetUserID(c) && GetRole(c) != "admin" {
		return domain.ErrForbidden
	}
	return nil
}

// lineOwnerError mapea los errores de checkLineOwner a la respuesta HTTP.
func (h *CartHandler) lineOwnerError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "la línea no existe"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo puedes modificar tu propio carrito"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// Clear godoc
// @Summary      Vaciar el carrito completo de un usuario
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del usuario"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/cart/user/{id} [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID != GetUserID(c) && GetRole(c) != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo puedes vaciar tu propio carrito"})
	}
	if err := h.uc.ClearByUser(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
