package contentunderstanding

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"

	"github.com/google/uuid"
)

const defaultUserAgent = "cu-sample-code"

// ClientOptions carries everything the client needs; nothing is read from
// the environment here.
type ClientOptions struct {
	Endpoint        string
	APIVersion      string
	SubscriptionKey string
	BearerToken     string
	UserAgent       string
}

// Client talks to the analysis service.
type Client struct {
	endpoint   string
	apiVersion string
	headers    map[string]string

	transport domain.Transport
	submitter *Submitter
	poller    *Poller
	logger    domain.Logger
}

// NewClient validates opts and wires the submitter and poller.
func NewClient(
	opts ClientOptions,
	transport domain.Transport,
	clock domain.Clock,
	logger domain.Logger,
) (*Client, error) {
	if opts.SubscriptionKey == "" && opts.BearerToken == "" {
		return nil, apperrors.NewInvalidInputError("either subscription key or bearer token must be provided")
	}
	if opts.APIVersion == "" {
		return nil, apperrors.NewInvalidInputError("API version must be provided")
	}
	if opts.Endpoint == "" {
		return nil, apperrors.NewInvalidInputError("endpoint must be provided")
	}

	headers := buildHeaders(opts)
	return &Client{
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		apiVersion: opts.APIVersion,
		headers:    headers,
		transport:  transport,
		submitter:  NewSubmitter(transport, logger),
		poller:     NewPoller(transport, clock, logger, headers),
		logger:     logger,
	}, nil
}

func buildHeaders(opts ClientOptions) map[string]string {
	headers := make(map[string]string, 2)
	if opts.SubscriptionKey != "" {
		headers["Ocp-Apim-Subscription-Key"] = opts.SubscriptionKey
	} else {
		headers["Authorization"] = "Bearer " + opts.BearerToken
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	headers["x-ms-useragent"] = ua
	return headers
}

// requestHeaders copies the base headers and tags the call with a fresh
// client request id.
func (c *Client) requestHeaders() map[string]string {
	h := make(map[string]string, len(c.headers)+1)
	for k, v := range c.headers {
		h[k] = v
	}
	h[clientRequestIDHeader] = uuid.NewString()
	return h
}

func (c *Client) resourceURL(collection, id, action string) string {
	u := c.endpoint + "/contentunderstanding/" + collection
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if action != "" {
		u += ":" + action
	}
	return u + "?api-version=" + url.QueryEscape(c.apiVersion)
}

func (c *Client) analyzerURL(id string) string { return c.resourceURL("analyzers", id, "") }
func (c *Client) analyzeURL(id string) string  { return c.resourceURL("analyzers", id, "analyze") }
func (c *Client) classifierURL(id string) string {
	return c.resourceURL("classifiers", id, "")
}
func (c *Client) classifyURL(id string) string { return c.resourceURL("classifiers", id, "classify") }

// BeginAnalyze submits location (file, directory or URL) to analyzerID.
// Directories become one multi-input request.
func (c *Client) BeginAnalyze(ctx context.Context, analyzerID, location string) (domain.Submission, error) {
	if analyzerID == "" {
		return domain.Submission{}, apperrors.NewInvalidInputError("analyzer ID must be provided")
	}
	target, err := domain.ParseSubmissionTarget(location)
	if err != nil {
		return domain.Submission{}, err
	}
	sub, err := c.begin(ctx, domain.KindAnalyze, c.analyzeURL(analyzerID), target)
	if err != nil {
		return domain.Submission{}, err
	}
	c.logger.Info("Analyzing file", "location", displayLocation(target), "analyzer_id", analyzerID,
		"operation_id", sub.Handle.ID())
	return sub, nil
}

// BeginClassify submits location (file or URL) to classifierID.
func (c *Client) BeginClassify(ctx context.Context, classifierID, location string) (domain.Submission, error) {
	if classifierID == "" {
		return domain.Submission{}, apperrors.NewInvalidInputError("classifier ID must be provided")
	}
	target, err := domain.ParseSubmissionTarget(location)
	if err != nil {
		return domain.Submission{}, err
	}
	sub, err := c.begin(ctx, domain.KindClassify, c.classifyURL(classifierID), target)
	if err != nil {
		return domain.Submission{}, err
	}
	c.logger.Info("Classifying file", "location", displayLocation(target), "classifier_id", classifierID,
		"operation_id", sub.Handle.ID())
	return sub, nil
}

func (c *Client) begin(
	ctx context.Context,
	kind domain.OperationKind,
	endpoint string,
	target domain.SubmissionTarget,
) (domain.Submission, error) {
	if target.Kind == domain.TargetSingleFile && !domain.IsSupportedFile(target.Location, false) {
		return domain.Submission{}, apperrors.NewInvalidInputError("file is not a supported document type", target.Location)
	}

	body, err := NewRequestBuilder(kind).Build(target, true)
	if err != nil {
		return domain.Submission{}, err
	}
	return c.submitter.Submit(ctx, endpoint, c.requestHeaders(), body)
}

// PollResult polls a submission to completion under policy.
func (c *Client) PollResult(ctx context.Context, sub domain.Submission, policy domain.PollPolicy) (*domain.OperationResult, error) {
	return c.poller.Poll(ctx, sub.Handle, policy)
}

// Analyze is BeginAnalyze followed by PollResult.
func (c *Client) Analyze(ctx context.Context, analyzerID, location string, policy domain.PollPolicy) (*domain.OperationResult, error) {
	sub, err := c.BeginAnalyze(ctx, analyzerID, location)
	if err != nil {
		return nil, err
	}
	return c.PollResult(ctx, sub, policy)
}

// Classify is BeginClassify followed by PollResult.
func (c *Client) Classify(ctx context.Context, classifierID, location string, policy domain.PollPolicy) (*domain.OperationResult, error) {
	sub, err := c.BeginClassify(ctx, classifierID, location)
	if err != nil {
		return nil, err
	}
	return c.PollResult(ctx, sub, policy)
}

// AnalyzePrebuiltDocument runs the prebuilt document analyzer with the
// default poll policy.
func (c *Client) AnalyzePrebuiltDocument(ctx context.Context, location string) (*domain.OperationResult, error) {
	return c.Analyze(ctx, domain.PrebuiltDocumentAnalyzerID, location, domain.DefaultPollPolicy())
}

func displayLocation(t domain.SubmissionTarget) string {
	if t.Kind == domain.TargetRemoteURL {
		return redactURL(t.Location)
	}
	return t.Location
}

// String identifies the client in logs without leaking credentials.
func (c *Client) String() string {
	return fmt.Sprintf("contentunderstanding.Client{endpoint=%s, api-version=%s}", c.endpoint, c.apiVersion)
}
