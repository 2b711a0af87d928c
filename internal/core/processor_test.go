package core_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer_insight_chatbot/internal/core"
	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/internal/nodes"
	"customer_insight_chatbot/internal/storage"
	"customer_insight_chatbot/pkg"
)

// echoNode remembers the last message as the "product" and echoes it back
type echoNode struct {
	seen []core.NodeInput
	err  error
}

func (n *echoNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	n.seen = append(n.seen, input)
	if n.err != nil {
		return core.NodeOutput{}, n.err
	}
	return core.NodeOutput{
		Response: "echo: " + input.UserMessage,
		Intent:   pkg.Intent{Kind: pkg.IntentUnrecognized},
		Memory:   input.Memory.WithProduct(input.UserMessage),
	}, nil
}

func (n *echoNode) GetName() string        { return "echo" }
func (n *echoNode) GetType() core.NodeType { return core.NodeTypeResponse }

// counterNode counts turns in memory.LastCluster
type counterNode struct{}

func (counterNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	n, _ := input.Memory.Cluster()
	time.Sleep(time.Millisecond)
	return core.NodeOutput{Response: "ok", Memory: input.Memory.WithCluster(n + 1)}, nil
}

func (counterNode) GetName() string        { return "counter" }
func (counterNode) GetType() core.NodeType { return core.NodeTypeResponse }

func newProcessor(t *testing.T, maxHistory int, node core.Node) *core.ChainProcessor {
	t.Helper()
	p, err := core.NewProcessor(context.Background(), core.Config{MaxHistory: maxHistory},
		storage.NewMemorySessionManager(time.Minute), node)
	require.NoError(t, err)
	return p
}

func TestNewProcessorValidation(t *testing.T) {
	ctx := context.Background()

	_, err := core.NewProcessor(ctx, core.Config{}, nil, &echoNode{})
	assert.Error(t, err)

	_, err = core.NewProcessor(ctx, core.Config{}, storage.NewMemorySessionManager(0), nil)
	assert.Error(t, err)
}

func TestExecuteThreadsMemory(t *testing.T) {
	ctx := context.Background()
	node := &echoNode{}
	p := newProcessor(t, 10, node)

	out, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "first"})
	require.NoError(t, err)
	assert.Equal(t, "echo: first", out.Response)
	assert.Equal(t, "c1", out.ConversationID)
	assert.False(t, out.Timestamp.IsZero())

	_, err = p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "second"})
	require.NoError(t, err)

	require.Len(t, node.seen, 2)
	assert.True(t, node.seen[0].Memory.IsEmpty())
	assert.Equal(t, "first", node.seen[1].Memory.LastProduct)
	assert.Len(t, node.seen[1].ConversationContext, 2)

	// other conversations start clean
	_, err = p.Execute(ctx, core.ProcessorInput{ConversationID: "c2", UserMessage: "third"})
	require.NoError(t, err)
	assert.True(t, node.seen[2].Memory.IsEmpty())
}

func TestExecuteRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	p := newProcessor(t, 10, &echoNode{})

	_, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "  "})
	assert.ErrorIs(t, err, core.ErrEmptyMessage)

	_, err = p.Execute(ctx, core.ProcessorInput{UserMessage: "hello"})
	assert.Error(t, err)
}

func TestExecuteNodeFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	node := &echoNode{}
	p := newProcessor(t, 10, node)

	_, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "first"})
	require.NoError(t, err)

	node.err = errors.New("boom")
	_, err = p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	history, err := p.History(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	p := newProcessor(t, 4, &echoNode{})

	for _, msg := range []string{"a", "b", "c"} {
		_, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: msg})
		require.NoError(t, err)
	}

	history, err := p.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "b", history[0].Content)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "echo: c", history[3].Content)
	assert.Equal(t, "assistant", history[3].Role)
}

func TestResetClearsConversation(t *testing.T) {
	ctx := context.Background()
	node := &echoNode{}
	p := newProcessor(t, 10, node)

	_, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "first"})
	require.NoError(t, err)
	require.NoError(t, p.Reset(ctx, "c1"))

	history, err := p.History(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "again"})
	require.NoError(t, err)
	assert.True(t, node.seen[1].Memory.IsEmpty())
}

func TestProcessorWithResponseNode(t *testing.T) {
	ctx := context.Background()
	csv := "Cluster,Annual_Income,Spending_Score,Average_Order_Value,Number_of_Orders,Review_Score,Age,Device_Used,Preferred_Payment_Method,Product_Category,Customer_Region,Gender\n" +
		"0,50000,30,100,5,3.5,25,Mobile,Credit Card,Books,North,Male\n" +
		"1,75000,50,150,8,4.0,35,Desktop,PayPal,Electronics,South,Female\n" +
		"1,85000,60,250,10,4.5,45,Mobile,PayPal,Electronics,South,Female\n"
	table, err := dataset.Parse("inline", strings.NewReader(csv))
	require.NoError(t, err)

	node := nodes.NewResponseNode(nodes.NewResponder(nodes.DefaultConfig()), table)
	p := newProcessor(t, 10, node)

	out, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "Which cluster buys Electronics?"})
	require.NoError(t, err)
	assert.Equal(t, pkg.IntentProductToCluster, out.Intent.Kind)
	require.NotNil(t, out.Memory.LastCluster)
	assert.Equal(t, 1, *out.Memory.LastCluster)
	assert.Equal(t, "Electronics", out.Memory.LastProduct)

	out, err = p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "What's their income?"})
	require.NoError(t, err)
	assert.Equal(t, pkg.IntentFollowUp, out.Intent.Kind)
	assert.Contains(t, out.Response, "$80,000.00")
}

func TestConcurrentTurnsOnOneConversation(t *testing.T) {
	ctx := context.Background()
	p := newProcessor(t, 100, counterNode{})

	const turns = 20
	var wg sync.WaitGroup
	errs := make(chan error, turns)
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "next"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	out, err := p.Execute(ctx, core.ProcessorInput{ConversationID: "c1", UserMessage: "last"})
	require.NoError(t, err)
	require.NotNil(t, out.Memory.LastCluster)
	assert.Equal(t, turns+1, *out.Memory.LastCluster)

	history, err := p.History(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, history, 2*(turns+1))
}
