// Package dream defines the contract and data models shared between the
// observatory control system and a DREAM instance.
package dream

import "context"

// Interface is the operations contract to one DREAM instance. The mock
// server implements it locally; the real instrument implements it on the
// other side of the wire.
type Interface interface {
	// Resume indicates that DREAM is permitted to resume automated
	// operations.
	Resume(ctx context.Context) error

	// OpenRoof opens the roof if DREAM has evaluated that it is safe to
	// do so.
	OpenRoof(ctx context.Context) error

	// CloseRoof closes the roof.
	CloseRoof(ctx context.Context) error

	// Stop immediately stops operations and closes the roof.
	Stop(ctx context.Context) error

	// SetReadyForData informs DREAM whether the observatory is ready to
	// receive data products.
	SetReadyForData(ctx context.Context, ready bool) error

	// SetDataArchived informs DREAM that the observatory has received and
	// archived a data product. Parameters are reserved until the real
	// instrument defines them.
	SetDataArchived(ctx context.Context) error

	// SetWeatherInfo forwards observatory weather data to DREAM.
	SetWeatherInfo(ctx context.Context, info map[string]any) error
}
