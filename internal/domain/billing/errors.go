// internal/domain/billing/errors.go
package billing

import (
	"fmt"

	xerrors "contenthub-service/internal/pkg/errors"
)

// Webhook input failures. Both match xerrors.ErrBadRequest.
var (
	ErrInvalidSignature = fmt.Errorf("invalid webhook signature: %w", xerrors.ErrBadRequest)
	ErrInvalidPayload   = fmt.Errorf("invalid webhook payload: %w", xerrors.ErrBadRequest)
)
