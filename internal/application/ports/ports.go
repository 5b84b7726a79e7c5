package ports

import (
	"context"
	"time"

	"github.com/unimercado/unimercado-api/internal/domain/entity"
)

// Mailer puerto para envío de correo transaccional (OTP, invitaciones, reset).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// OTPSender puerto para entrega de códigos por canal alterno (WhatsApp).
type OTPSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// OTPStore puerto para guardar códigos OTP hasheados con vencimiento.
// Verify consume el código: tras un verify exitoso el código deja de existir.
type OTPStore interface {
	Save(ctx context.Context, identifier, codeHash string, ttl time.Duration) error
	Verify(ctx context.Context, identifier, code string) (bool, error)
}

// ReceiptPDFGenerator puerto para la representación gráfica del comprobante de compra.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, order *entity.Order, buyer *entity.User) ([]byte, error)
}
