package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semxref/curie"
	"github.com/c360studio/semxref/vocabulary/xref"
)

// IngestSubject is the subject entity messages are published on.
const IngestSubject = "graph.ingest.entity"

// StreamName is the JetStream stream holding IngestSubject.
const StreamName = "GRAPH"

// Publisher publishes to a JetStream subject. *natsclient.Client satisfies it.
type Publisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// NATSOptions configures a NATSSink.
type NATSOptions struct {
	// Source is recorded on every triple, e.g. "semxref.genereviews".
	Source    string
	BatchSize int
	Logger    *slog.Logger
}

// NATSSink publishes triples as semstreams entity messages, one message per
// subject per flushed batch.
type NATSSink struct {
	pub      Publisher
	registry *curie.Registry
	source   string
	logger   *slog.Logger
	batch    *Batcher
	preds    map[string]string
	now      func() time.Time
	closed   bool
}

// NewNATSSink creates a sink. registry resolves predicate IRIs for
// predicates outside the xref vocabulary; it may be nil.
func NewNATSSink(pub Publisher, registry *curie.Registry, opts NATSOptions) *NATSSink {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	source := opts.Source
	if source == "" {
		source = "semxref"
	}
	s := &NATSSink{
		pub:      pub,
		registry: registry,
		source:   source,
		logger:   logger,
		preds:    make(map[string]string),
		now:      time.Now,
	}
	s.batch = NewBatcher(opts.BatchSize, s.publish)
	return s
}

func (s *NATSSink) Write(ctx context.Context, triples ...Triple) error {
	if s.closed {
		return ErrSinkClosed
	}
	return s.batch.Add(ctx, triples...)
}

// Close flushes buffered triples. The publisher is owned by the caller.
func (s *NATSSink) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.batch.Flush(ctx)
}

func (s *NATSSink) publish(ctx context.Context, batch []Triple) error {
	now := s.now()

	var order []string
	bySubject := make(map[string]*EntityPayload)
	for _, t := range batch {
		p, ok := bySubject[t.Subject]
		if !ok {
			p = newEntityPayload(xref.EntityID(t.Subject), t.Subject, s.source, now)
			bySubject[t.Subject] = p
			order = append(order, t.Subject)
		}
		p.TripleData = append(p.TripleData, s.toMessage(t, now))
	}

	for _, subject := range order {
		p := bySubject[subject]
		if err := p.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal entity %s: %w", subject, err)
		}
		if err := s.pub.PublishToStream(ctx, IngestSubject, data); err != nil {
			return fmt.Errorf("publish entity %s: %w", subject, err)
		}
	}
	s.logger.Debug("Published entities", "entities", len(order), "triples", len(batch))
	return nil
}

func (s *NATSSink) toMessage(t Triple, now time.Time) message.Triple {
	var object any = t.Object
	if !t.Literal {
		object = xref.EntityID(t.Object)
	}
	return message.Triple{
		Subject:    xref.EntityID(t.Subject),
		Predicate:  s.predicate(t.Predicate),
		Object:     object,
		Source:     s.source,
		Timestamp:  now,
		Confidence: 1.0,
	}
}

func (s *NATSSink) predicate(p string) string {
	if name, ok := s.preds[p]; ok {
		return name
	}
	var iri string
	if s.registry != nil && strings.Contains(p, ":") {
		iri, _ = s.registry.ToURI(p)
	}
	name := xref.Predicate(p, iri)
	s.preds[p] = name
	return name
}

// DialNATS connects a semstreams NATS client and waits for the connection.
func DialNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName("semxref"),
		natsclient.WithMaxReconnects(5),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}

// EnsureStream creates or updates the stream that captures IngestSubject.
func EnsureStream(ctx context.Context, client *natsclient.Client) error {
	js, err := client.JetStream()
	if err != nil {
		return fmt.Errorf("get JetStream context: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"graph.ingest.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", StreamName, err)
	}
	return nil
}
