// Package provider wires configured payment gateway clients.
package provider

import (
	"go.uber.org/zap"

	"github.com/flexpay/payment-service/internal/config"
	domainprovider "github.com/flexpay/payment-service/internal/domain/provider"
	"github.com/flexpay/payment-service/internal/infrastructure/provider/greenpay"
	"github.com/flexpay/payment-service/internal/infrastructure/provider/stripe"
	apperrors "github.com/flexpay/payment-service/pkg/errors"
)

// NewGatewayClient builds the gateway client selected in the service config.
func NewGatewayClient(cfg config.GatewayConfig, logger *zap.Logger) (domainprovider.GatewayClient, error) {
	switch domainprovider.GatewayType(cfg.Provider) {
	case domainprovider.GatewayTypeGreenPay:
		if cfg.GreenPay.APIURL == "" {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "greenpay gateway requires an API URL", nil)
		}
		return greenpay.NewClient(cfg.GreenPay.APIURL, cfg.GreenPay.APIKey, cfg.Timeout, logger), nil
	case domainprovider.GatewayTypeStripe:
		if cfg.Stripe.SecretKey == "" {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "stripe gateway requires a secret key", nil)
		}
		return stripe.NewClient(cfg.Stripe.SecretKey, logger), nil
	default:
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "unknown gateway provider: "+cfg.Provider, nil)
	}
}
