package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/viant/docstore/store"
	"github.com/viant/docstore/vector"
)

const (
	// DefaultCollection is used when Config.Collection is empty.
	DefaultCollection = "docstore"

	defaultPort = 6334
	scrollPage  = 256

	fieldID       = "id"
	fieldContent  = "content"
	fieldMetadata = "metadata"
	fieldSeq      = "seq"
)

// namespace seeds point IDs so the same document ID always maps to the same
// point.
var namespace = uuid.MustParse("6f1c7a52-5d0e-4a8e-9a55-3f0d2a1b8c10")

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the gRPC endpoint, e.g. "http://localhost:6334". An https
	// scheme enables TLS.
	URL string

	// Collection holds the documents; defaults to DefaultCollection.
	Collection string

	// APIKey is optional.
	APIKey string
}

// Repository persists documents as Qdrant points.
type Repository struct {
	client     *qdrant.Client
	collection string

	mu      sync.Mutex
	exists  bool
	seqInit bool
	nextSeq int64
}

// New creates a client for cfg. The collection is created on first save,
// once the embedding dimension is known.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant: url is required")
	}
	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("qdrant: parse url: %w", err)
	}
	port := defaultPort
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("qdrant: invalid port: %w", err)
		}
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: create client: %w", err)
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	r := &Repository{client: client, collection: collection}
	if r.exists, err = client.CollectionExists(ctx, collection); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant: check collection: %w", err)
	}
	return r, nil
}

// LoadAll scrolls the whole collection and returns documents ordered by seq.
func (r *Repository) LoadAll(ctx context.Context) ([]vector.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs, maxSeq, err := r.scrollAll(ctx)
	if err != nil {
		return nil, err
	}
	r.seqInit = true
	r.nextSeq = maxSeq
	out := make([]vector.Document, len(docs))
	for i, d := range docs {
		out[i] = d.doc
	}
	return out, nil
}

// Save upserts the document. An existing point keeps its seq.
func (r *Repository) Save(ctx context.Context, doc vector.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureCollection(ctx, len(doc.Embedding)); err != nil {
		return err
	}
	if err := r.ensureSeq(ctx); err != nil {
		return err
	}

	pid := PointID(doc.ID)
	existing, err := r.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: r.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(pid)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant: read point: %w", err)
	}
	var seq int64
	if len(existing) > 0 {
		seq = existing[0].GetPayload()[fieldSeq].GetIntegerValue()
	} else {
		r.nextSeq++
		seq = r.nextSeq
	}

	payload, err := qdrant.TryValueMap(encodePayload(doc, seq))
	if err != nil {
		return fmt.Errorf("qdrant: encode payload: %w", err)
	}
	wait := true
	_, err = r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(pid),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert point: %w", err)
	}
	return nil
}

// Delete removes the point for id. Missing points are not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.exists {
		return nil
	}
	wait := true
	_, err := r.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(PointID(id))),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete point: %w", err)
	}
	return nil
}

// Close closes the client connection.
func (r *Repository) Close() error {
	return r.client.Close()
}

// PointID maps a document ID to its Qdrant point UUID.
func PointID(id string) string {
	return uuid.NewSHA1(namespace, []byte(id)).String()
}

// ensureCollection creates the collection on first use. Dot distance keeps
// stored vectors unnormalized so they load back exactly as saved; scoring
// happens in the store, not here.
func (r *Repository) ensureCollection(ctx context.Context, dim int) error {
	if r.exists {
		return nil
	}
	err := r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Dot,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %q: %w", r.collection, err)
	}
	r.exists = true
	return nil
}

func (r *Repository) ensureSeq(ctx context.Context) error {
	if r.seqInit {
		return nil
	}
	_, maxSeq, err := r.scrollAll(ctx)
	if err != nil {
		return err
	}
	r.seqInit = true
	r.nextSeq = maxSeq
	return nil
}

type seqDoc struct {
	doc vector.Document
	seq int64
}

func (r *Repository) scrollAll(ctx context.Context) ([]seqDoc, int64, error) {
	if !r.exists {
		return nil, 0, nil
	}
	var (
		out    []seqDoc
		maxSeq int64
		offset *qdrant.PointId
	)
	limit := uint32(scrollPage + 1)
	for {
		points, err := r.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: r.collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, 0, fmt.Errorf("qdrant: scroll points: %w", err)
		}
		page := points
		if len(points) > scrollPage {
			page = points[:scrollPage]
		}
		for _, p := range page {
			doc, seq, err := decodePayload(p.GetPayload())
			if err != nil {
				return nil, 0, err
			}
			doc.Embedding = append([]float32(nil), p.GetVectors().GetVector().GetData()...)
			out = append(out, seqDoc{doc: doc, seq: seq})
			maxSeq = max(maxSeq, seq)
		}
		if len(points) <= scrollPage {
			break
		}
		offset = points[scrollPage].GetId()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out, maxSeq, nil
}

func encodePayload(doc vector.Document, seq int64) map[string]any {
	meta := make(map[string]any, len(doc.Metadata))
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	return map[string]any{
		fieldID:       doc.ID,
		fieldContent:  doc.Content,
		fieldMetadata: meta,
		fieldSeq:      seq,
	}
}

func decodePayload(payload map[string]*qdrant.Value) (vector.Document, int64, error) {
	id := payload[fieldID].GetStringValue()
	if id == "" {
		return vector.Document{}, 0, fmt.Errorf("qdrant: point payload has no %q", fieldID)
	}
	doc := vector.Document{ID: id, Content: payload[fieldContent].GetStringValue()}
	if fields := payload[fieldMetadata].GetStructValue().GetFields(); len(fields) > 0 {
		doc.Metadata = make(map[string]string, len(fields))
		for k, v := range fields {
			doc.Metadata[k] = v.GetStringValue()
		}
	}
	return doc, payload[fieldSeq].GetIntegerValue(), nil
}

var _ store.Repository = (*Repository)(nil)
