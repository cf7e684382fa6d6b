package elastic

import (
	"bytes"
	"context"

	"entiq/packages/common/config"
	jsonenc "entiq/packages/common/encoding/json"
	Error "entiq/packages/common/errors"
	"entiq/packages/core/entity"
	"entiq/packages/core/filter"
	"entiq/packages/core/query"
	"entiq/packages/core/sortspec"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type seeker struct {
	con *connector
}

type getResponse struct {
	Source entity.Record `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source entity.Record `json:"_source"`
			Sort   []any         `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *seeker) GetByID(ctx context.Context, entityName string, id string) (entity.Record, *Error.Status) {
	ctx, cancel := s.con.queryContext(ctx)

	defer cancel()

	raw, err := s.con.perform(func() (*esapi.Response, error) {
		return s.con.client.Get(
			indexFor(entityName),
			id,
			s.con.client.Get.WithContext(ctx),
		)
	})
	if err != nil {
		return nil, s.con.mapError(err, entityName, "GetByID")
	}

	parsed, decodeErr := jsonenc.Decode[getResponse](bytes.NewReader(raw))
	if decodeErr != nil {
		return nil, Error.StatusInternalError
	}

	return parsed.Source, nil
}

func (s *seeker) GetAll(ctx context.Context, q *query.Query) ([]entity.Record, int64, *Error.Status) {
	ent, ok := s.con.provider.Entity(q.Entity)
	if !ok {
		return nil, 0, Error.StatusNotFound
	}

	ctx, cancel := s.con.queryContext(ctx)

	defer cancel()

	caseSensitive := config.DB.CaseSensitiveCollation

	searchBody := buildSearchBody(ent, q.Filters)

	matched := []entity.Record{}

	// The scan pages through the full candidate set with search_after,
	// a single capped request would silently drop everything past the
	// cap from both the page and the total.
	for {
		body, encodeErr := encodeBody(searchBody)
		if encodeErr != nil {
			return nil, 0, Error.StatusInternalError
		}

		raw, err := s.con.perform(func() (*esapi.Response, error) {
			return s.con.client.Search(
				s.con.client.Search.WithContext(ctx),
				s.con.client.Search.WithIndex(indexFor(q.Entity)),
				s.con.client.Search.WithBody(body),
			)
		})
		if err != nil {
			return nil, 0, s.con.mapError(err, q.Entity, "GetAll")
		}

		parsed, decodeErr := jsonenc.Decode[searchResponse](bytes.NewReader(raw))
		if decodeErr != nil {
			return nil, 0, Error.StatusInternalError
		}

		hits := parsed.Hits.Hits
		for _, hit := range hits {
			if filter.Matches(hit.Source, q.Filters, q.Match, ent, caseSensitive) {
				matched = append(matched, hit.Source)
			}
		}

		if len(hits) < fetchCap {
			break
		}

		searchBody["search_after"] = hits[len(hits)-1].Sort
	}

	// Hits arrive id-ordered from the scan, so after the stable sort
	// id remains the final tie-break, matching the other backends.
	sortspec.Apply(matched, q.Sort, ent, caseSensitive)

	page := query.Paginate(matched, q.Page, q.PageSize)
	if page == nil {
		page = []entity.Record{}
	}

	return page, int64(len(matched)), nil
}
