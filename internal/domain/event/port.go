package event

import "context"

type Queue interface {
	PublishEvent(ctx context.Context, env Envelope) error
}
