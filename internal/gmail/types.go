package gmail

type MessageID string
type ThreadID string
type LabelID string

// System labels the cleanup routes know about.
const (
	LabelSpam       LabelID = "SPAM"
	LabelPromotions LabelID = "CATEGORY_PROMOTIONS"
	LabelSocial     LabelID = "CATEGORY_SOCIAL"
)

// MaxPageSize is the largest page the cleanup paths request.
const MaxPageSize = 100

type MessageMeta struct {
	ID      MessageID
	Headers map[string]string // Subject, From, Date
}

type Query struct {
	Raw string // Gmail query string, already formed (e.g., `before:2024/01/31`)
}

// ListRequest scopes a single page request to one label and query.
type ListRequest struct {
	Label     LabelID
	Query     Query
	PageToken string
	PageSize  int
}

// MessagePage is one page of a message listing.
type MessagePage struct {
	IDs           []MessageID
	NextPageToken string
}

// ThreadPage is one page of a thread listing.
type ThreadPage struct {
	IDs           []ThreadID
	NextPageToken string
}
