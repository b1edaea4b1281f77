package resource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, s Stream[T]) []Resource[T] {
	t.Helper()

	var got []Resource[T]
	timeout := time.After(time.Second)
	for {
		select {
		case r, ok := <-s:
			if !ok {
				return got
			}
			got = append(got, r)
		case <-timeout:
			t.Fatalf("stream was not closed")
		}
	}
}

func TestRun_Success(t *testing.T) {
	s := Run(context.Background(), func(error) string { return "boom" }, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	got := collect(t, s)
	require.Len(t, got, 2)

	assert.IsType(t, Loading[int]{}, got[0])
	success, ok := got[1].(Success[int])
	require.True(t, ok, "second emission must be Success, got %T", got[1])
	assert.Equal(t, 42, success.Value)
	assert.True(t, IsTerminal(got[1]))
	assert.False(t, IsTerminal(got[0]))
}

func TestRun_Error(t *testing.T) {
	cause := errors.New("network down")
	s := Run(context.Background(), func(err error) string { return "cannot reach server" }, func(ctx context.Context) (string, error) {
		return "", cause
	})

	got := collect(t, s)
	require.Len(t, got, 2)

	e, ok := got[1].(Error[string])
	require.True(t, ok, "second emission must be Error, got %T", got[1])
	assert.Equal(t, "cannot reach server", e.Message)
	assert.ErrorIs(t, e.Err, cause)

	_, has := e.Data()
	assert.False(t, has)
}

func TestRun_CanceledContextClosesStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	s := Run(ctx, func(error) string { return "" }, func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})

	<-s // Loading
	<-started
	cancel()
	close(release)

	select {
	case r, ok := <-s:
		if ok {
			t.Fatalf("no emission expected after cancel, got %T", r)
		}
	case <-time.After(time.Second):
		t.Fatalf("stream was not closed after cancel")
	}
}

func TestLoadingAndErrorCarryStaleData(t *testing.T) {
	prev := []string{"a", "b"}

	v, ok := Loading[[]string]{Stale: &prev}.Data()
	require.True(t, ok)
	assert.Equal(t, prev, v)

	v, ok = Error[[]string]{Message: "x", Stale: &prev}.Data()
	require.True(t, ok)
	assert.Equal(t, prev, v)
}

func TestLast(t *testing.T) {
	r := Last(context.Background(), Just[int](Success[int]{Value: 7}))
	s, ok := r.(Success[int])
	require.True(t, ok)
	assert.Equal(t, 7, s.Value)
}

func TestRun_PartialKeepsData(t *testing.T) {
	cause := errors.New("item rejected")
	s := Run(context.Background(), func(err error) string { return err.Error() }, func(ctx context.Context) (string, error) {
		return "", &Partial[string]{Value: "ORD-1", Err: cause}
	})

	got := collect(t, s)
	require.Len(t, got, 2)

	e, ok := got[1].(Error[string])
	require.True(t, ok)
	assert.Equal(t, "item rejected", e.Message)
	assert.ErrorIs(t, e.Err, cause)

	v, has := e.Data()
	require.True(t, has)
	assert.Equal(t, "ORD-1", v)
}
