// Package qdrant implements vector.Repository on a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/honghai9112k/tool-java2ts/internal/vector"
)

// contentKey is the payload key holding the document content.
const contentKey = "content"

// QdrantRepository implements vector.Repository using Qdrant.
type QdrantRepository struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewQdrant creates a Qdrant-backed repository. The connection is lazy; call
// EnsureCollection to verify the server is reachable.
func NewQdrant(host string, port int, collection string) (*QdrantRepository, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrap(err, "qdrant connect")
	}
	return &QdrantRepository{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// EnsureCollection creates the collection with cosine distance unless it
// already exists.
func (r *QdrantRepository) EnsureCollection(ctx context.Context, dims int) error {
	list, err := r.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return errors.Wrap(err, "listing qdrant collections")
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == r.collection {
			return nil
		}
	}
	_, err = r.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{
			Params: &pb.VectorParams{Size: uint64(dims), Distance: pb.Distance_Cosine},
		}},
	})
	if err != nil {
		return errors.Wrapf(err, "creating qdrant collection %s", r.collection)
	}
	return nil
}

// Ping checks that the server answers. It matches the health checker
// signature.
func (r *QdrantRepository) Ping(ctx context.Context) error {
	_, err := r.collections.List(ctx, &pb.ListCollectionsRequest{})
	return err
}

func (r *QdrantRepository) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         toPoints(docs),
	})
	return err
}

func (r *QdrantRepository) Search(ctx context.Context, vec []float32, topK int) ([]vector.SearchResult, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         vec,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}
	return fromScored(resp.GetResult()), nil
}

func (r *QdrantRepository) Close() error {
	return r.conn.Close()
}

func toPoints(docs []vector.Document) []*pb.PointStruct {
	points := make([]*pb.PointStruct, len(docs))
	for i, d := range docs {
		payload := map[string]*pb.Value{
			contentKey: {Kind: &pb.Value_StringValue{StringValue: d.Content}},
		}
		for k, v := range d.Metadata {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
		}
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: d.ID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: d.Vector}}},
			Payload: payload,
		}
	}
	return points
}

func fromScored(points []*pb.ScoredPoint) []vector.SearchResult {
	results := make([]vector.SearchResult, len(points))
	for i, pt := range points {
		content := ""
		meta := make(map[string]string)
		for k, v := range pt.GetPayload() {
			if k == contentKey {
				content = v.GetStringValue()
			} else {
				meta[k] = v.GetStringValue()
			}
		}
		results[i] = vector.SearchResult{
			ID:       pt.GetId().GetUuid(),
			Score:    pt.GetScore(),
			Content:  content,
			Metadata: meta,
		}
	}
	return results
}

var _ vector.Repository = (*QdrantRepository)(nil)
