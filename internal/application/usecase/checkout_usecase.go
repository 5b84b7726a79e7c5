package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unimercado/unimercado-api/internal/application/dto"
	"github.com/unimercado/unimercado-api/internal/domain"
	"github.com/unimercado/unimercado-api/internal/domain/entity"
	"github.com/unimercado/unimercado-api/internal/domain/repository"
)

// CheckoutTxRunner puerto para ejecutar el checkout dentro de una transacción:
// carrito + productos + órdenes comparten la misma tx.
type CheckoutTxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		cartRepo repository.CartRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// CheckoutUseCase convierte el carrito del usuario en una orden: congela
// precios, descuenta stock y vacía el carrito, todo en una sola transacción.
// Las líneas en cantidad 0 se ignoran (no compran nada) pero no bloquean.
type CheckoutUseCase struct {
	tx        CheckoutTxRunner
	orderRepo repository.OrderRepository
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(tx CheckoutTxRunner, orderRepo repository.OrderRepository) *CheckoutUseCase {
	return &CheckoutUseCase{tx: tx, orderRepo: orderRepo}
}

// Checkout ejecuta la compra del carrito completo del usuario.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, in dto.CheckoutRequest) (*dto.OrderResponse, error) {
	var created *entity.Order

	err := uc.tx.RunCheckout(ctx, func(
		cartRepo repository.CartRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		items, err := cartRepo.ListByUser(in.UserID)
		if err != nil {
			return err
		}

		now := time.Now()
		order := &entity.Order{
			ID:        uuid.New().String(),
			UserID:    in.UserID,
			Status:    entity.OrderStatusPending,
			Total:     decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}

		for _, it := range items {
			if it.Quantity == 0 {
				continue
			}
			if it.Product == nil {
				return domain.ErrNotFound
			}
			if it.Product.Stock < it.Quantity {
				return domain.ErrInsufficientStock
			}
			qty := decimal.NewFromInt(int64(it.Quantity))
			subtotal := it.Product.Price.Mul(qty)
			order.Items = append(order.Items, entity.OrderItem{
				ID:          uuid.New().String(),
				OrderID:     order.ID,
				ProductID:   it.ProductID,
				ProductName: it.Product.Name,
				UnitPrice:   it.Product.Price,
				Quantity:    it.Quantity,
				Subtotal:    subtotal,
			})
			order.Total = order.Total.Add(subtotal)
			if err := productRepo.UpdateStock(it.ProductID, -it.Quantity); err != nil {
				return err
			}
		}
		if len(order.Items) == 0 {
			return domain.ErrEmptyCart
		}

		if err := orderRepo.Create(order); err != nil {
			return err
		}
		if err := cartRepo.DeleteByUser(in.UserID); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(created), nil
}

// GetByID obtiene una orden (para la página de confirmación y el recibo).
func (uc *CheckoutUseCase) GetByID(id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	return toOrderResponse(order), nil
}

// ListByUser lista las órdenes del usuario.
func (uc *CheckoutUseCase) ListByUser(userID string, limit, offset int) (*dto.OrderListResponse, error) {
	list, err := uc.orderRepo.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, o := range list {
		out.Items = append(out.Items, *toOrderResponse(o))
	}
	return out, nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	out := &dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		Items:     make([]dto.OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}
	return out
}
