package qdrant

import (
	"context"
	"fmt"
	"strconv"

	pb "github.com/qdrant/go-client/qdrant"

	"github.com/homegrid-io/comps/internal/store"
)

// Upsert replaces-or-inserts a point by id. Wait=true so a following retrieve
// observes the write.
func (s *Store) Upsert(ctx context.Context, collection string, p store.Point) error {
	payload, err := payloadToValues(p.Payload)
	if err != nil {
		return fmt.Errorf("qdrant: encode payload for point %d: %w", p.ID, err)
	}

	wait := true
	_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points: []*pb.PointStruct{{
			Id: numID(p.ID),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: p.Vector},
				},
			},
			Payload: payload,
		}},
	})
	if err != nil {
		return classify(fmt.Sprintf("upsert point %d into %s", p.ID, collection), err)
	}
	return nil
}

// Retrieve fetches points by id; absent ids simply do not appear in the result.
func (s *Store) Retrieve(
	ctx context.Context, collection string, ids []uint64, withVector, withPayload bool,
) ([]store.Point, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = numID(id)
	}

	resp, err := s.points.Get(ctx, &pb.GetPoints{
		CollectionName: collection,
		Ids:            pointIDs,
		WithPayload:    payloadSelector(withPayload),
		WithVectors:    vectorSelector(withVector),
	})
	if err != nil {
		return nil, classify(fmt.Sprintf("retrieve from %s", collection), err)
	}

	points := make([]store.Point, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		point, err := fromRetrieved(r)
		if err != nil {
			return nil, fmt.Errorf("qdrant: decode point from %s: %w", collection, err)
		}
		points = append(points, point)
	}
	return points, nil
}

// Search runs a nearest-neighbor query, best-first.
func (s *Store) Search(
	ctx context.Context, collection string, vector []float32, limit int,
) ([]store.Scored, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(limit),
	})
	if err != nil {
		return nil, classify(fmt.Sprintf("search %s", collection), err)
	}

	hits := make([]store.Scored, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		hits = append(hits, store.Scored{
			ID:    r.GetId().GetNum(),
			Score: float64(r.GetScore()),
		})
	}
	return hits, nil
}

// Scroll pages through a collection with payloads. The cursor is the numeric
// next-page offset Qdrant hands back.
func (s *Store) Scroll(
	ctx context.Context, collection string, cursor string, limit int,
) ([]store.Point, string, error) {
	req := &pb.ScrollPoints{
		CollectionName: collection,
		WithPayload:    payloadSelector(true),
	}
	if limit > 0 {
		l := uint32(limit)
		req.Limit = &l
	}
	if cursor != "" {
		offset, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("qdrant: invalid scroll cursor %q: %w", cursor, err)
		}
		req.Offset = numID(offset)
	}

	resp, err := s.points.Scroll(ctx, req)
	if err != nil {
		return nil, "", classify(fmt.Sprintf("scroll %s", collection), err)
	}

	points := make([]store.Point, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		point, err := fromRetrieved(r)
		if err != nil {
			return nil, "", fmt.Errorf("qdrant: decode point from %s: %w", collection, err)
		}
		points = append(points, point)
	}

	var next string
	if offset := resp.GetNextPageOffset(); offset != nil {
		next = strconv.FormatUint(offset.GetNum(), 10)
	}
	return points, next, nil
}

func numID(id uint64) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: id}}
}

func payloadSelector(enable bool) *pb.WithPayloadSelector {
	return &pb.WithPayloadSelector{
		SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: enable},
	}
}

func vectorSelector(enable bool) *pb.WithVectorsSelector {
	return &pb.WithVectorsSelector{
		SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: enable},
	}
}

func fromRetrieved(r *pb.RetrievedPoint) (store.Point, error) {
	payload, err := payloadFromValues(r.GetPayload())
	if err != nil {
		return store.Point{}, err
	}
	return store.Point{
		ID:      r.GetId().GetNum(),
		Vector:  r.GetVectors().GetVector().GetData(),
		Payload: payload,
	}, nil
}
