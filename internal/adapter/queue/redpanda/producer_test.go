package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func (f *fakeProducer) Close() { f.closed = true }

func TestPublishPrediction_RecordShape(t *testing.T) {
	fp := &fakeProducer{}
	p := newPublisherWithClient(fp, "events")

	err := p.PublishPrediction(context.Background(), domain.PredictionEvent{
		UserID: "u1", Status: domain.StatusCompleted, Path: "model", ConfidenceScore: 0.85, RequestID: "req-1",
	})
	require.NoError(t, err)
	require.Len(t, fp.records, 1)
	rec := fp.records[0]
	assert.Equal(t, "events", rec.Topic)
	assert.Equal(t, []byte("u1"), rec.Key)

	var ev domain.PredictionEvent
	require.NoError(t, json.Unmarshal(rec.Value, &ev))
	assert.Equal(t, domain.StatusCompleted, ev.Status)
	assert.False(t, ev.OccurredAt.IsZero())

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{"user_id": "u1", "processing_status": "completed", "path": "model", "request_id": "req-1"}, headers)

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}

func TestPublishPrediction_Errors(t *testing.T) {
	p := newPublisherWithClient(&fakeProducer{}, "events")
	assert.ErrorIs(t, p.PublishPrediction(context.Background(), domain.PredictionEvent{}), domain.ErrInvalidArgument)

	p = newPublisherWithClient(&fakeProducer{err: errors.New("broker down")}, "events")
	err := p.PublishPrediction(context.Background(), domain.PredictionEvent{UserID: "u1", Status: domain.StatusFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	p = newPublisherWithClient(&fakeProducer{err: context.DeadlineExceeded}, "events")
	err = p.PublishPrediction(context.Background(), domain.PredictionEvent{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestNewPublisher_NoBrokers(t *testing.T) {
	_, err := NewPublisher(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.PublishPrediction(context.Background(), domain.PredictionEvent{}))
}

type fakeRequester struct {
	resp kmsg.Response
	err  error
	req  *kmsg.CreateTopicsRequest
}

func (f *fakeRequester) Request(_ context.Context, req kmsg.Request) (kmsg.Response, error) {
	f.req, _ = req.(*kmsg.CreateTopicsRequest)
	return f.resp, f.err
}

func topicsResponse(code int16) *kmsg.CreateTopicsResponse {
	resp := kmsg.NewCreateTopicsResponse()
	tr := kmsg.NewCreateTopicsResponseTopic()
	tr.Topic = "events"
	tr.ErrorCode = code
	resp.Topics = append(resp.Topics, tr)
	return &resp
}

func TestCreateTopicIfNotExists(t *testing.T) {
	ctx := context.Background()

	fr := &fakeRequester{resp: topicsResponse(0)}
	require.NoError(t, createTopicIfNotExists(ctx, fr, "events", 3, 1))
	require.NotNil(t, fr.req)
	assert.Equal(t, int32(3), fr.req.Topics[0].NumPartitions)

	require.NoError(t, createTopicIfNotExists(ctx, &fakeRequester{resp: topicsResponse(kerr.TopicAlreadyExists.Code)}, "events", 1, 1))

	err := createTopicIfNotExists(ctx, &fakeRequester{resp: topicsResponse(kerr.InvalidReplicationFactor.Code)}, "events", 1, 1)
	assert.ErrorIs(t, err, kerr.InvalidReplicationFactor)

	assert.Error(t, createTopicIfNotExists(ctx, &fakeRequester{err: errors.New("dial")}, "events", 1, 1))
	assert.Error(t, createTopicIfNotExists(ctx, &fakeRequester{}, "", 1, 1))
	assert.Error(t, createTopicIfNotExists(ctx, &fakeRequester{}, "events", 0, 1))
	assert.Error(t, createTopicIfNotExists(ctx, &fakeRequester{}, "events", 1, 0))
}
