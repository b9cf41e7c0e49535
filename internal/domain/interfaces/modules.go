package interfaces

import (
	"context"

	domaintypes "boarbot/internal/domain/types"
)

// Module reacts to events broadcast by the dispatch engine. Handle is called
// once per event, sequentially with the other modules; an error is logged by
// the engine and does not affect other modules.
type Module interface {
	Name() string
	Handle(ctx context.Context, event domaintypes.Event) error
}
