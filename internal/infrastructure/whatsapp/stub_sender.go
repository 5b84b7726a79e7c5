package whatsapp

import (
	"context"

	"github.com/unimercado/unimercado-api/internal/application/ports"
	"github.com/unimercado/unimercado-api/pkg/logger"
)

var _ ports.OTPSender = (*StubSender)(nil)

// StubSender implementa el puerto OTPSender solo logueando el envío.
// TODO: reemplazar por la integración real con la API de WhatsApp Business
// cuando haya proveedor contratado; el puerto ya está definido para eso.
type StubSender struct {
	log *logger.Logger
}

// NewStubSender construye el stub.
func NewStubSender(log *logger.Logger) *StubSender {
	return &StubSender{log: log}
}

// SendOTP registra el envío en el log en lugar de llamar a un proveedor.
// El código NO se loguea completo en producción.
func (s *StubSender) SendOTP(ctx context.Context, phone, code string) error {
	s.log.Info().
		Str("channel", "whatsapp").
		Str("phone", phone).
		Int("code_len", len(code)).
		Msg("envío de OTP simulado (stub)")
	s.log.Debug().Str("code", code).Msg("código OTP (solo visible en debug)")
	return nil
}
