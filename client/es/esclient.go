package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"primor/bizerror"
	"primor/infra/tracing"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/estransport"
	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	SearchFunc         = Search
	IndexFunc          = Index
	GetDocumentFunc    = GetDocument
	DropIndexFunc      = DropIndex
	DeleteDocumentFunc = DeleteDocument
)

type H map[string]interface{}

type GetResult struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version int    `json:"_version"`
	Found   bool   `json:"found"`
	Source  Source `json:"_source"`
}

const (
	DeleteResultDeleted  = "deleted"
	DeleteResultNotFound = "not_found"
)

type DeleteResult struct {
	Index  string `json:"_index"`
	ID     string `json:"_id"`
	Result string `json:"result"` // deleted, not_found
}

type SearchResult struct {
	Took    int        `json:"took"`
	TimeOut bool       `json:"timed_out"`
	Hits    SearchHits `json:"hits"`
}

type SearchHits struct {
	Total    SearchHitsTotal `json:"total"`
	MaxScore float64         `json:"max_score"`
	Hits     []SearchHit     `json:"hits"`
}

type SearchHitsTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

type SearchHit struct {
	Index  string  `json:"_index"`
	ID     string  `json:"_id"`
	Score  float64 `json:"_score"`
	Source Source  `json:"_source"`
}

// Source keeps a document body undecoded.
type Source string

func (d *Source) UnmarshalJSON(data []byte) error {
	*d = Source(data)
	return nil
}

func (d Source) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return []byte(d), nil
}

// ActiveESClient is nil when search is disabled.
var ActiveESClient *elasticsearch.Client

func Enabled() bool {
	return ActiveESClient != nil
}

// CreateClient connects to ELASTICSEARCH_URL and makes the client active.
func CreateClient(url string) (*elasticsearch.Client, error) {
	debug := logrus.IsLevelEnabled(logrus.DebugLevel)
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Logger:    &estransport.TextLogger{Output: os.Stdout, EnableRequestBody: debug, EnableResponseBody: debug},
		Transport: tracing.NewTracingTransport(),
	})
	if err != nil {
		return nil, err
	}
	ActiveESClient = client
	return client, nil
}

func responseError(res *esapi.Response) error {
	return fmt.Errorf("elasticsearch error response: %s", res.String())
}

func DropIndex(ctx context.Context, index string) error {
	req := esapi.IndicesDeleteRequest{Index: []string{index}}
	res, err := req.Do(ctx, ActiveESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return responseError(res)
	}
	return nil
}

func Index(ctx context.Context, index string, id types.ID, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id.String(),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	logrus.Debugln("saved document body:", string(body))
	res, err := req.Do(ctx, ActiveESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(res)
	}
	return nil
}

func Search(ctx context.Context, index string, query interface{}) (*SearchResult, error) {
	var q bytes.Buffer
	if err := json.NewEncoder(&q).Encode(query); err != nil {
		return nil, err
	}

	res, err := ActiveESClient.Search(
		ActiveESClient.Search.WithContext(ctx),
		ActiveESClient.Search.WithIndex(index),
		ActiveESClient.Search.WithBody(&q),
		ActiveESClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError(res)
	}
	r := SearchResult{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func GetDocument(ctx context.Context, index string, id types.ID) (Source, error) {
	res, err := ActiveESClient.Get(index, id.String(), ActiveESClient.Get.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return "", bizerror.ErrNotFound
	}
	if res.IsError() {
		return "", responseError(res)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	result := GetResult{}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", err
	}
	if !result.Found {
		return "", bizerror.ErrNotFound
	}
	return result.Source, nil
}

// DeleteDocument treats an already missing document as deleted.
func DeleteDocument(ctx context.Context, index string, id types.ID) error {
	res, err := ActiveESClient.Delete(index, id.String(),
		ActiveESClient.Delete.WithRefresh("true"),
		ActiveESClient.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	result := DeleteResult{}
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	if result.Result == DeleteResultDeleted || result.Result == DeleteResultNotFound {
		return nil
	}
	return fmt.Errorf("delete error on elasticsearch: %s", string(data))
}
