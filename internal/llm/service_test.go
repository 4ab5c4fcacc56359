package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	prompt string
	tier   ModelTier
}

type fakeClient struct {
	responses []string
	errs      []error
	calls     []call
	closed    bool
}

func (f *fakeClient) Complete(_ context.Context, prompt string, tier ModelTier) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, call{prompt: prompt, tier: tier})
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func newTestService(client Client, attempts int) (*TextService, *[]time.Duration) {
	var waits []time.Duration
	svc := NewTextService(client, RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Second, MaxDelay: 4 * time.Second}, nil)
	svc.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return svc, &waits
}

func TestTextService_Tiers(t *testing.T) {
	client := &fakeClient{responses: []string{"fast", "slow"}}
	svc, _ := newTestService(client, 1)

	out, err := svc.Generate(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "fast", out)

	out, err = svc.Reason(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "slow", out)

	require.Len(t, client.calls, 2)
	assert.Equal(t, TierStandard, client.calls[0].tier)
	assert.Equal(t, TierAdvanced, client.calls[1].tier)
}

func TestTextService_RetriesThenSucceeds(t *testing.T) {
	boom := errors.New("503 unavailable")
	client := &fakeClient{
		errs:      []error{boom, boom, nil},
		responses: []string{"", "", "[0, 1]"},
	}
	svc, waits := newTestService(client, 3)

	out, err := svc.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "[0, 1]", out)
	assert.Len(t, client.calls, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestTextService_ExhaustsRetries(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := &fakeClient{errs: []error{boom, boom}}
	svc, _ := newTestService(client, 2)

	_, err := svc.Reason(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
}

func TestTextService_StopsOnCancelledContext(t *testing.T) {
	client := &fakeClient{errs: []error{context.Canceled}}
	svc, waits := newTestService(client, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, "p")
	require.Error(t, err)
	assert.Len(t, client.calls, 1)
	assert.Empty(t, *waits)
}

func TestTextService_Close(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(client, 1)

	require.NoError(t, svc.Close())
	assert.True(t, client.closed)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "openai"}, "key")
	assert.Error(t, err)
}
