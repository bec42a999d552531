// Package solr implements the Solr bridge adapter: it compiles a request's qualification,
// posts it to a core's select handler and extracts records from the JSON response.
package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kyle-williams-1/solrbridge"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/internal/jsonpath"
	"github.com/kyle-williams-1/solrbridge/internal/loggingutil"
	"github.com/kyle-williams-1/solrbridge/language/placeholder"
	"github.com/kyle-williams-1/solrbridge/qualification"
	"pkt.systems/pslog"
)

// Name is the adapter display name.
const Name = "Solr Bridge"

// Query methods accepted by BuildURL and BuildRequestBody.
const (
	MethodCount  = "count"
	MethodSearch = "search"
)

const (
	defaultPageSize = "1000"
	defaultOffset   = "0"
	countPath       = "$.response.numFound"
)

// ErrUnauthorized is returned by Initialize when Solr rejects the configured credentials.
var ErrUnauthorized = errors.New("unauthorized: the username/password combination is not valid")

// StatusError is returned when Solr answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("the Solr server returned a HTTP status code of %d, 200 was expected. Response body: %s", e.Code, e.Body)
}

// Request is one bridge request against a Solr core.
type Request struct {
	// Structure is the Solr core or collection name.
	Structure  string
	Query      string
	Parameters placeholder.Parameters
	Fields     []string
	// Metadata carries "pageSize", "offset" and "order".
	Metadata map[string]string
}

// Record maps requested field names to their values.
type Record map[string]any

// RecordList is the result of a search.
type RecordList struct {
	Fields   []string          `json:"fields"`
	Records  []Record          `json:"records"`
	Metadata map[string]string `json:"metadata"`
}

// Adapter talks to one Solr server.
type Adapter struct {
	props  Properties
	client *http.Client
	config *config.Config
	logger pslog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithHTTPClient sets the HTTP client used for Solr requests.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.client = client
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger pslog.Logger) Option {
	return func(a *Adapter) {
		a.logger = loggingutil.WithSubsystem(logger, "adapter.solr")
	}
}

// WithConfig sets the translator configuration used for every request.
func WithConfig(cfg *config.Config) Option {
	return func(a *Adapter) {
		if cfg != nil {
			a.config = cfg
		}
	}
}

// New creates an adapter for the Solr server described by props.
func New(props Properties, opts ...Option) *Adapter {
	a := &Adapter{
		props:  props,
		client: http.DefaultClient,
		config: config.Default(),
		logger: loggingutil.WithSubsystem(nil, "adapter.solr"),
	}
	a.props.URL = props.Endpoint()
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the adapter display name.
func (a *Adapter) Name() string {
	return Name
}

// Initialize checks that the server is reachable and accepts the configured credentials.
func (a *Adapter) Initialize(ctx context.Context) error {
	a.logger.Debug("testing the authentication credentials", "url", a.props.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.props.URL+"/admin/cores?action=STATUS", nil)
	if err != nil {
		return err
	}
	if a.props.hasCredentials() {
		req.SetBasicAuth(a.props.Username, a.props.Password)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("solr status request failed", "error", err)
		return fmt.Errorf("unable to make a connection to the Solr server: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unsuccessful HTTP response - the server returned a %d status code, expected 200", resp.StatusCode)
	}
	return nil
}

// BuildURL returns the select URL for method. Counting requests no rows; searching pages
// with the "pageSize" (default 1000, "0" meaning unset) and "offset" metadata.
func (a *Adapter) BuildURL(method string, req *Request) string {
	var sb strings.Builder
	sb.WriteString(a.props.URL)
	sb.WriteString("/")
	sb.WriteString(url.PathEscape(req.Structure))
	sb.WriteString("/select?wt=json")

	if method == MethodCount {
		sb.WriteString("&rows=0")
	} else {
		pageSize, offset := pagination(req.Metadata)
		sb.WriteString("&rows=" + url.QueryEscape(pageSize))
		sb.WriteString("&start=" + url.QueryEscape(offset))
	}

	a.logger.Trace("solr url", "url", sb.String())
	return sb.String()
}

func pagination(metadata map[string]string) (pageSize, offset string) {
	pageSize, offset = defaultPageSize, defaultOffset
	if v := strings.TrimSpace(metadata["pageSize"]); v != "" && v != "0" {
		pageSize = v
	}
	if v := strings.TrimSpace(metadata["offset"]); v != "" {
		offset = v
	}
	return pageSize, offset
}

// BuildRequestBody compiles the request qualification into the form posted to Solr. A
// JSON request body is sent as "json", anything else as "q". Searches also carry the
// field list and sort order.
func (a *Adapter) BuildRequestBody(method string, req *Request, t *solrbridge.Translator, q *qualification.Qualification) (url.Values, error) {
	query, err := t.Translate(q, req.Parameters)
	if err != nil {
		return nil, err
	}
	query = t.EmptyQuery(query)

	form := url.Values{}
	if qualification.LooksLikeJSON(query) {
		form.Set("json", query)
		a.logger.Trace("json query being sent to solr", "query", query)
	} else {
		form.Set("q", query)
		a.logger.Trace("lucene query being sent to solr", "query", query)
	}

	if method == MethodCount {
		return form, nil
	}
	if len(req.Fields) > 0 {
		form.Set("fl", strings.Join(req.Fields, ","))
	}
	if order, ok := req.Metadata["order"]; ok {
		form.Set("sort", SortParam(ParseOrder(order)))
	}
	return form, nil
}

// Count returns how many documents match the request.
func (a *Adapter) Count(ctx context.Context, req *Request) (int64, error) {
	t, q := a.translator(req)
	doc, err := a.query(ctx, MethodCount, req, t, q)
	if err != nil {
		return 0, err
	}
	value, err := jsonpath.Get(doc, countPath)
	if err != nil {
		return 0, fmt.Errorf("solr count: %w", err)
	}
	return toInt64(value)
}

// Retrieve returns the single record matching the request. It fails when more than one
// document matches and returns an empty record when none does.
func (a *Adapter) Retrieve(ctx context.Context, req *Request) (Record, error) {
	t, q := a.translator(req)
	root, err := t.ResultRootPath(q)
	if err != nil {
		return nil, err
	}
	doc, err := a.query(ctx, MethodSearch, req, t, q)
	if err != nil {
		return nil, err
	}
	value, err := jsonpath.Get(doc, root)
	if err != nil {
		return nil, fmt.Errorf("solr retrieve: %w", err)
	}

	switch v := value.(type) {
	case []any:
		switch len(v) {
		case 0:
			return Record{}, nil
		case 1:
			return extract(v[0], req.Fields), nil
		default:
			return nil, fmt.Errorf("multiple results matched an expected single match query")
		}
	case map[string]any:
		return extract(v, req.Fields), nil
	default:
		return Record{}, nil
	}
}

// Search returns every record matching the request with "count" (total matches) and
// "size" (records returned) metadata.
func (a *Adapter) Search(ctx context.Context, req *Request) (*RecordList, error) {
	t, q := a.translator(req)
	root, err := t.ResultRootPath(q)
	if err != nil {
		return nil, err
	}
	doc, err := a.query(ctx, MethodSearch, req, t, q)
	if err != nil {
		return nil, err
	}
	value, err := jsonpath.Get(doc, root)
	if err != nil {
		return nil, fmt.Errorf("solr search: %w", err)
	}

	list := &RecordList{Fields: req.Fields, Metadata: map[string]string{}}
	if count, err := jsonpath.Get(doc, countPath); err == nil {
		list.Metadata["count"] = fmt.Sprint(count)
	}

	switch v := value.(type) {
	case []any:
		for _, element := range v {
			list.Records = append(list.Records, extract(element, req.Fields))
		}
		list.Metadata["size"] = fmt.Sprint(len(v))
	case map[string]any:
		list.Records = append(list.Records, extract(v, req.Fields))
		list.Metadata["size"] = "1"
	}
	return list, nil
}

func (a *Adapter) translator(req *Request) (*solrbridge.Translator, *qualification.Qualification) {
	return solrbridge.NewWithConfig(a.config).WithLogger(a.logger), qualification.New(req.Query)
}

// query posts the compiled request to Solr and decodes the JSON response.
func (a *Adapter) query(ctx context.Context, method string, req *Request, t *solrbridge.Translator, q *qualification.Qualification) (any, error) {
	logger := a.logger.With("req", uuid.NewString(), "method", method, "structure", req.Structure)

	endpoint := a.BuildURL(method, req)
	form, err := a.BuildRequestBody(method, req, t, q)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if a.props.hasCredentials() {
		httpReq.SetBasicAuth(a.props.Username, a.props.Password)
	}

	logger.Debug("solr request", "url", endpoint)
	resp, err := a.client.Do(httpReq)
	if err != nil {
		logger.Error("solr request failed", "error", err)
		return nil, fmt.Errorf("unable to make a connection to the Solr server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read the Solr response: %w", err)
	}
	logger.Debug("solr response", "status", resp.StatusCode, "size", humanize.Bytes(uint64(len(body))))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("solr returned an unsuccessful status", "status", resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	logger.Trace("solr response body", "body", string(body))

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode the Solr response: %w", err)
	}
	return doc, nil
}

// extract picks fields out of one result element. Fields are JSONPath expressions
// relative to the element; unresolvable fields map to nil.
func extract(element any, fields []string) Record {
	record := Record{}
	for _, field := range fields {
		record[field] = fieldValue(element, field)
	}
	return record
}

func fieldValue(element any, field string) any {
	if members, ok := element.(map[string]any); ok {
		if value, ok := members[field]; ok {
			return value
		}
	}
	value, err := jsonpath.Get(element, field)
	if err != nil {
		return nil
	}
	return value
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("solr count: unexpected numFound value %v", value)
	}
}
