package projections

import (
	"context"

	"tunelingo/internal/adapters/storage/newsletter"
	"tunelingo/internal/application/listutil"
	domainNewsletter "tunelingo/internal/domain/newsletter"
)

// GetSubscriberListQuery carries query parameters.
type GetSubscriberListQuery struct {
	Params listutil.Query
	Status string // optional status filter
}

// GetSubscriberListResult carries the query result.
type GetSubscriberListResult struct {
	Subscribers []domainNewsletter.Subscriber
	PageInfo    listutil.PageInfo
}

// GetSubscriberListDeps holds dependencies for GetSubscriberList.
type GetSubscriberListDeps struct {
	Newsletter NewsletterStore
}

// QueryGetSubscriberList retrieves a page of newsletter subscribers for the
// admin screen.
// PRE: query.Params has been parsed with listutil defaults applied
// POST: Returns one page plus pagination metadata
func QueryGetSubscriberList(ctx context.Context, query GetSubscriberListQuery, deps GetSubscriberListDeps) (GetSubscriberListResult, error) {
	total, err := deps.Newsletter.Count(ctx, query.Status)
	if err != nil {
		return GetSubscriberListResult{}, err
	}

	pageInfo := listutil.Paginate(query.Params.Page, query.Params.PerPage, total)

	subscribers, err := deps.Newsletter.List(ctx, newsletter.ListFilter{
		Limit:  pageInfo.PerPage,
		Offset: pageInfo.Offset(),
		Status: query.Status,
	})
	if err != nil {
		return GetSubscriberListResult{}, err
	}

	return GetSubscriberListResult{
		Subscribers: subscribers,
		PageInfo:    pageInfo,
	}, nil
}
