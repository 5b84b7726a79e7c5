package usecase

import (
	"context"

	"github.com/unimercado/unimercado-api/internal/application/ports"
	"github.com/unimercado/unimercado-api/internal/domain"
	"github.com/unimercado/unimercado-api/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una orden.
type ReceiptUseCase struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	generator ports.ReceiptPDFGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	generator ports.ReceiptPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{orderRepo: orderRepo, userRepo: userRepo, generator: generator}
}

// GenerateReceipt devuelve el PDF de la orden. Solo el comprador (o un admin)
// puede pedirlo; el caller identifica al solicitante con los claims del token.
func (uc *ReceiptUseCase) GenerateReceipt(ctx context.Context, orderID, callerID, callerRole string) ([]byte, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.UserID != callerID && callerRole != "admin" {
		return nil, domain.ErrForbidden
	}
	buyer, err := uc.userRepo.GetByID(order.UserID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.generator.GenerateReceiptPDF(ctx, order, buyer)
}
