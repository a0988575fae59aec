package qdrant

import (
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honghai9112k/tool-java2ts/internal/vector"
)

func TestToPoints(t *testing.T) {
	points := toPoints([]vector.Document{{
		ID:       "8f14e45f-ceea-467f-a0f6-3b5c2b1e0a11",
		Content:  "catalog/Product",
		Vector:   []float32{0.6, 0.8},
		Metadata: map[string]string{"name": "Product"},
	}})

	require.Len(t, points, 1)
	p := points[0]
	assert.Equal(t, "8f14e45f-ceea-467f-a0f6-3b5c2b1e0a11", p.GetId().GetUuid())
	assert.Equal(t, []float32{0.6, 0.8}, p.GetVectors().GetVector().GetData())
	assert.Equal(t, "catalog/Product", p.GetPayload()["content"].GetStringValue())
	assert.Equal(t, "Product", p.GetPayload()["name"].GetStringValue())
}

func TestFromScored(t *testing.T) {
	results := fromScored([]*pb.ScoredPoint{{
		Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "id-1"}},
		Score: 0.92,
		Payload: map[string]*pb.Value{
			"content":  {Kind: &pb.Value_StringValue{StringValue: "order/Order"}},
			"location": {Kind: &pb.Value_StringValue{StringValue: "order/Order"}},
		},
	}})

	require.Len(t, results, 1)
	assert.Equal(t, "id-1", results[0].ID)
	assert.InDelta(t, 0.92, results[0].Score, 1e-6)
	assert.Equal(t, "order/Order", results[0].Content)
	assert.Equal(t, map[string]string{"location": "order/Order"}, results[0].Metadata)
}
