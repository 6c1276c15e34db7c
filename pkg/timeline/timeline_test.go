package timeline

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
	"github.com/Sternrassler/history-gogo-client/pkg/resource"
)

func newLoader(api resource.API) *Loader {
	return NewLoader(api).WithLogger(zerolog.Nop())
}

func TestLoader_Load(t *testing.T) {
	mock := resource.NewMock(resource.WithDelay(10*time.Millisecond), resource.WithTimelineDelay(20*time.Millisecond))
	l := newLoader(mock)

	require.NoError(t, l.Load(context.Background(), "ming"))
	assert.Equal(t, 1, mock.Calls(resource.OpGetDynasty))
	assert.Equal(t, 1, mock.Calls(resource.OpGetTimeline))

	view, ok := l.View()
	require.True(t, ok)
	assert.Equal(t, "明朝", view.Dynasty.Name)
	assert.Equal(t, "ming", view.Timeline.DynastyID)
	assert.Equal(t, []int{1368, 1399, 1403, 1405, 1421}, view.Timeline.YearsWithEvents())

	military := view.Items(model.EventTypeMilitary)
	require.Len(t, military, 1)
	assert.Equal(t, 1399, military[0].Year)
	assert.Len(t, view.Items(""), len(view.Timeline.Timeline))
	assert.False(t, l.Loading())
}

func TestLoader_FailureCancelsSibling(t *testing.T) {
	mock := resource.NewMock(resource.WithDelay(0), resource.WithTimelineDelay(time.Second))
	mock.Fail(resource.OpGetDynasty, apierr.Server(http.StatusInternalServerError, "boom"))
	l := newLoader(mock)

	start := time.Now()
	err := l.Load(context.Background(), "ming")
	assert.ErrorIs(t, err, apierr.ErrServer)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	_, ok := l.View()
	assert.False(t, ok)
	assert.Equal(t, err, l.Err())
}

func TestLoader_KeepsPreviousViewOnFailure(t *testing.T) {
	mock := resource.NewMock(resource.WithDelay(0), resource.WithTimelineDelay(0))
	l := newLoader(mock)
	ctx := context.Background()

	require.NoError(t, l.Load(ctx, "qing"))

	err := l.Load(ctx, "tang")
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	view, ok := l.View()
	require.True(t, ok)
	assert.Equal(t, "qing", view.Dynasty.ID)
}

func TestLoader_EmptyID(t *testing.T) {
	l := newLoader(resource.NewMock())
	assert.ErrorIs(t, l.Load(context.Background(), ""), ErrNoDynasty)
}
