package nlp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CloudModelName selects CloudModel in configuration.
const CloudModelName = "gcp-language"

// CloudModel tags tokens locally with prose and asks the Cloud Natural
// Language API for entities. When the API call fails for any reason other
// than credentials, Annotate keeps the local entities and logs a warning.
type CloudModel struct {
	tagger  *ProseModel
	client  *language.Client
	timeout time.Duration
	logger  *slog.Logger
}

// CloudOption configures NewCloudModel.
type CloudOption func(*CloudModel)

// WithCloudLogger sets the logger used for degraded-call warnings.
func WithCloudLogger(l *slog.Logger) CloudOption {
	return func(m *CloudModel) { m.logger = l }
}

// WithCloudTimeout bounds each entity request. Default: 10s.
func WithCloudTimeout(d time.Duration) CloudOption {
	return func(m *CloudModel) { m.timeout = d }
}

// NewCloudModel dials the Natural Language API with a service-account JSON
// key. Every failure wraps ErrModelUnavailable.
func NewCloudModel(ctx context.Context, tagger *ProseModel, credentialsJSON []byte, opts ...CloudOption) (*CloudModel, error) {
	if tagger == nil {
		return nil, fmt.Errorf("%w: %s needs a local tagger", ErrModelUnavailable, CloudModelName)
	}
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("%w: %s: no credentials", ErrModelUnavailable, CloudModelName)
	}

	client, err := language.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, CloudModelName, err)
	}

	m := &CloudModel{
		tagger:  tagger,
		client:  client,
		timeout: 10 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name returns CloudModelName.
func (m *CloudModel) Name() string { return CloudModelName }

// Close releases the API connection.
func (m *CloudModel) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Close()
}

// Annotate returns prose tokens with Cloud entities. Rejected credentials
// surface as ErrModelUnavailable.
func (m *CloudModel) Annotate(text string) (Document, error) {
	if m == nil || m.client == nil {
		return Document{}, ErrModelUnavailable
	}

	doc, err := m.tagger.Annotate(text)
	if err != nil {
		return Document{}, err
	}
	if text == "" {
		return doc, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	resp, err := m.client.AnalyzeEntities(ctx, &languagepb.AnalyzeEntitiesRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{Content: text},
			Type:   languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	})
	if err != nil {
		switch status.Code(err) {
		case codes.Unauthenticated, codes.PermissionDenied:
			return Document{}, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, CloudModelName, err)
		}
		m.logger.Warn("nlp: cloud entities failed, using local entities", "error", err)
		return doc, nil
	}

	doc.Entities = cloudSpans(resp.GetEntities())
	return doc, nil
}

// cloudSpans flattens proper-noun mentions into spans ordered by offset.
// Common-noun mentions ("the river") are not named entities.
func cloudSpans(entities []*languagepb.Entity) []Span {
	type mention struct {
		offset int32
		span   Span
	}
	var ms []mention
	for _, e := range entities {
		for _, mt := range e.GetMentions() {
			if mt.GetType() != languagepb.EntityMention_PROPER {
				continue
			}
			ms = append(ms, mention{
				offset: mt.GetText().GetBeginOffset(),
				span:   Span{Text: mt.GetText().GetContent(), Label: e.GetType().String()},
			})
		}
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].offset < ms[j].offset })

	out := make([]Span, len(ms))
	for i, mt := range ms {
		out[i] = mt.span
	}
	return out
}
