package runtime

import (
	"context"
	"errors"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
)

const userID = "me"

// googleClient adapts *gmail.Service to the gmail.Client interface.
type googleClient struct{ svc *gmail.Service }

// NewGoogleAPIClient wraps svc in the gmail.Client interface.
func NewGoogleAPIClient(svc *gmail.Service) gc.Client { return &googleClient{svc} }

func (g *googleClient) ListMessages(ctx context.Context, req gc.ListRequest) (gc.MessagePage, error) {
	call := g.svc.Users.Messages.List(userID).Q(req.Query.Raw).MaxResults(int64(req.PageSize))
	if req.Label != "" {
		call = call.LabelIds(string(req.Label))
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return gc.MessagePage{}, wrapError("messages.list", err)
	}
	ids := make([]gc.MessageID, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, gc.MessageID(m.Id))
	}
	return gc.MessagePage{IDs: ids, NextPageToken: res.NextPageToken}, nil
}

func (g *googleClient) ListThreads(ctx context.Context, req gc.ListRequest) (gc.ThreadPage, error) {
	call := g.svc.Users.Threads.List(userID).Q(req.Query.Raw).MaxResults(int64(req.PageSize))
	if req.Label != "" {
		call = call.LabelIds(string(req.Label))
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return gc.ThreadPage{}, wrapError("threads.list", err)
	}
	ids := make([]gc.ThreadID, 0, len(res.Threads))
	for _, t := range res.Threads {
		ids = append(ids, gc.ThreadID(t.Id))
	}
	return gc.ThreadPage{IDs: ids, NextPageToken: res.NextPageToken}, nil
}

func (g *googleClient) GetMetadata(ctx context.Context, id gc.MessageID, headers []string) (gc.MessageMeta, error) {
	msg, err := g.svc.Users.Messages.Get(userID, string(id)).
		Format("metadata").
		MetadataHeaders(headers...).
		Context(ctx).
		Do()
	if err != nil {
		return gc.MessageMeta{}, wrapError("messages.get", err)
	}
	h := map[string]string{}
	if msg.Payload != nil {
		for _, hd := range msg.Payload.Headers {
			h[hd.Name] = hd.Value
		}
	}
	return gc.MessageMeta{ID: id, Headers: h}, nil
}

func (g *googleClient) Trash(ctx context.Context, id gc.MessageID) error {
	if _, err := g.svc.Users.Messages.Trash(userID, string(id)).Context(ctx).Do(); err != nil {
		return wrapError("messages.trash", err)
	}
	return nil
}

func wrapError(op string, err error) error {
	apiErr := &gc.APIError{Op: op, Err: err}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		apiErr.Code = gErr.Code
	}
	return apiErr
}
