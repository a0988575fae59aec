package vector

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

// DefaultDimensions is the embedding size used when none is configured.
const DefaultDimensions = 256

// pointNamespace derives stable document IDs from declaration locations.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("j2ts/declarations"))

// Feature weights.
const (
	weightKind      = 0.5
	weightNameToken = 1.0
	weightField     = 1.5
	weightType      = 1.0
	weightFieldType = 2.0
	weightSuper     = 1.5
)

// Embedder turns declarations into feature-hashed vectors and stores them.
type Embedder struct {
	dims int
	repo Repository
}

// NewEmbedder creates an Embedder. A non-positive dims uses
// DefaultDimensions.
func NewEmbedder(dims int, repo Repository) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims, repo: repo}
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dims }

// Embed returns the L2 normalised feature vector of d. Equal declarations
// always produce equal vectors.
func (e *Embedder) Embed(d *ir.Declaration) []float32 {
	vec := make([]float32, e.dims)
	add := func(feature string, weight float32) {
		h := xxhash.Sum64String(feature)
		idx := h % uint64(e.dims)
		if h>>63 == 1 {
			weight = -weight
		}
		vec[idx] += weight
	}

	add("kind:"+string(d.Kind), weightKind)
	for _, tok := range splitIdentifier(d.Name) {
		add("name:"+tok, weightNameToken)
	}
	if d.Super != "" {
		add("super:"+d.Super, weightSuper)
	}
	for _, f := range d.Fields {
		name := strings.ToLower(f.OriginalName)
		if name == "" {
			name = strings.ToLower(strings.Trim(f.Name, `"`))
		}
		add("field:"+name, weightField)
		add("type:"+f.Type, weightType)
		add("field+type:"+name+":"+f.Type, weightFieldType)
	}
	for _, c := range d.Constants {
		add("const:"+strings.ToLower(c.Name), weightField)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// PointID is the stable document ID of a declaration within project.
func PointID(project string, d *ir.Declaration) string {
	key := d.Location
	if key == "" {
		key = d.Name
	}
	return uuid.NewSHA1(pointNamespace, []byte(project+"/"+key)).String()
}

// Index embeds decls and upserts them into the repository.
func (e *Embedder) Index(ctx context.Context, project string, decls []*ir.Declaration) error {
	ctx, span := observability.StartGraphSpan(ctx, "vector.index", len(decls))
	defer span.End()

	docs := make([]Document, len(decls))
	for i, d := range decls {
		docs[i] = Document{
			ID:       PointID(project, d),
			Content:  d.Location,
			Vector:   e.Embed(d),
			Metadata: metadata(project, d),
		}
	}
	if err := e.repo.Upsert(ctx, docs); err != nil {
		observability.RecordError(span, err)
		return errors.Wrap(err, "upserting declarations")
	}
	return nil
}

// Similar returns up to topK declarations most similar to d, excluding d
// itself.
func (e *Embedder) Similar(ctx context.Context, project string, d *ir.Declaration, topK int) ([]SearchResult, error) {
	ctx, span := observability.StartGraphSpan(ctx, "vector.search", topK)
	defer span.End()

	results, err := e.repo.Search(ctx, e.Embed(d), topK+1)
	if err != nil {
		observability.RecordError(span, err)
		return nil, errors.Wrap(err, "searching declarations")
	}
	self := PointID(project, d)
	out := results[:0]
	for _, r := range results {
		if r.ID != self {
			out = append(out, r)
		}
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func metadata(project string, d *ir.Declaration) map[string]string {
	return map[string]string{
		"project":  project,
		"name":     d.Name,
		"kind":     string(d.Kind),
		"location": d.Location,
		"fields":   strconv.Itoa(len(d.Fields)),
	}
}

// splitIdentifier splits a camel case identifier into lower case tokens:
// "OrderLineItem" becomes order, line, item.
func splitIdentifier(name string) []string {
	var tokens []string
	var cur []rune
	runes := []rune(name)
	for i, r := range runes {
		if r == '_' {
			if len(cur) > 0 {
				tokens = append(tokens, strings.ToLower(string(cur)))
				cur = cur[:0]
			}
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				tokens = append(tokens, strings.ToLower(string(cur)))
				cur = cur[:0]
			}
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		tokens = append(tokens, strings.ToLower(string(cur)))
	}
	return tokens
}
