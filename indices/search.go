package indices

import (
	"primor/bizerror"
	"primor/client/es"
	"primor/session"
	"strings"
)

var SearchFunc = Search

type SearchQuery struct {
	Index string `form:"index" binding:"required,oneof=events workers"`
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type SearchResult struct {
	Total int         `json:"total"`
	Hits  []es.Source `json:"hits"`
}

var searchFields = map[string][]string{
	EventIndexName:  {"name", "category", "venue"},
	WorkerIndexName: {"name", "email", "phone"},
}

func Search(q SearchQuery, s *session.Session) (*SearchResult, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if !es.Enabled() {
		return nil, bizerror.ErrFeatureDisabled
	}

	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	query := es.H{"size": limit}
	if text := strings.TrimSpace(q.Q); text != "" {
		query["query"] = es.H{"multi_match": es.H{"query": text, "fields": searchFields[q.Index], "fuzziness": "AUTO"}}
	} else {
		query["query"] = es.H{"match_all": es.H{}}
	}

	r, err := es.SearchFunc(s.Ctx(), q.Index, query)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{Total: r.Hits.Total.Value, Hits: make([]es.Source, 0, len(r.Hits.Hits))}
	for _, hit := range r.Hits.Hits {
		result.Hits = append(result.Hits, hit.Source)
	}
	return result, nil
}
