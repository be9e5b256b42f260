package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Module("provider.pdf",
	fx.Provide(New),
)

// Provider renders printable billing documents.
type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}
