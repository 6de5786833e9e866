package mykafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)
}

func TestPublishRejectsUnencodableEvent(t *testing.T) {
	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	defer p.Close()

	err = p.PublishEvent(context.Background(), TopicCart, "k", map[string]any{"bad": make(chan int)})
	require.ErrorContains(t, err, "json.Marshal")
}

func TestMemoryKeepsOrder(t *testing.T) {
	var m Memory
	ctx := context.Background()
	require.NoError(t, m.PublishEvent(ctx, TopicCart, "s1", map[string]any{"type": "a"}))
	require.NoError(t, m.PublishEvent(ctx, TopicOrder, "s1", map[string]any{"type": "b"}))
	require.NoError(t, m.PublishEvent(ctx, TopicCart, "s2", map[string]any{"type": "c"}))

	cart := m.ByTopic(TopicCart)
	require.Len(t, cart, 2)
	require.Equal(t, "s1", cart[0].Key)
	require.Equal(t, "s2", cart[1].Key)
	require.Len(t, m.Messages(), 3)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = Noop{}
	require.NoError(t, p.PublishEvent(context.Background(), TopicOrder, "", nil))
	require.NoError(t, p.Close())
}
