package gmail

import "context"

// Client is the narrow Gmail surface required by labelsweep.
type Client interface {
	ListMessages(ctx context.Context, req ListRequest) (MessagePage, error)
	ListThreads(ctx context.Context, req ListRequest) (ThreadPage, error)
	GetMetadata(ctx context.Context, id MessageID, headers []string) (MessageMeta, error)
	Trash(ctx context.Context, id MessageID) error
}
