package composer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/composer/mocks"
	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/notify"
)

func TestBuildRequestRoundTrip(t *testing.T) {
	d := Draft{
		SourceBranchID:      ptr(1),
		DestinationBranchID: ptr(2),
		Lines:               []Line{line("A", 3, 10)},
	}
	require.True(t, Validate(d).Valid())

	data, err := json.Marshal(BuildRequest(d))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.EqualValues(t, 1, payload["from_branch"])
	assert.EqualValues(t, 2, payload["to_branch"])
	assert.NotContains(t, payload, "notes", "blank notes are omitted")

	items := payload["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "A", first["product"])
	assert.EqualValues(t, 3, first["quantity"])
	assert.Contains(t, first, "unit_price")
}

func TestBuildRequestSkipsZeroLines(t *testing.T) {
	d := Draft{
		SourceBranchID:      ptr(1),
		DestinationBranchID: ptr(2),
		Notes:               "  weekly  ",
		Lines:               []Line{line("A", 0, 5), line("B", 2, 5)},
	}

	req := BuildRequest(d)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "B", req.Items[0].Product)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.True(t, req.Items[0].UnitPrice.IsZero())
	assert.Equal(t, "weekly", req.Notes)

	// With only the zero line left, validation blocks the submit.
	d.Lines = d.Lines[:1]
	assert.Equal(t, NoPositiveLines, Validate(d).Reason)
}

func TestSubmitterSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	sink := notify.NewSink()
	closed := make(chan struct{})

	d := Draft{
		SourceBranchID:      ptr(1),
		DestinationBranchID: ptr(2),
		Lines:               []Line{line("A", 3, 10), line("B", 1, 1)},
		Reference:           uuid.New(),
	}
	backend.EXPECT().
		CreateTransfer(gomock.Any(), BuildRequest(d), d.Reference.String()).
		Return(&model.Transfer{ID: 9}, nil)

	s := &Submitter{Backend: backend, Sink: sink, Log: zap.NewNop(), OnClose: func() { close(closed) }}
	tr, err := s.Submit(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(9), tr.ID)

	n, ok := sink.Current()
	require.True(t, ok)
	assert.Equal(t, notify.Success, n.Kind)
	assert.Equal(t, "Transferred 2 products, 4 units in total.", n.Message)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("OnClose was not called")
	}
}

func TestSubmitterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	sink := notify.NewSink()

	backend.EXPECT().CreateTransfer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fakeAPIError{`{"non_field_errors":["Source and destination must differ."]}`})

	s := &Submitter{Backend: backend, Sink: sink, Log: zap.NewNop(), OnClose: func() { t.Error("OnClose called after failure") }}
	_, err := s.Submit(context.Background(), Draft{SourceBranchID: ptr(1), DestinationBranchID: ptr(2), Lines: []Line{line("A", 1, 1)}})

	var submitErr *SubmitError
	require.True(t, errors.As(err, &submitErr))
	assert.Equal(t, "Source and destination must differ.", submitErr.Message)

	n, ok := sink.Current()
	require.True(t, ok)
	assert.Equal(t, notify.Error, n.Kind)
	assert.Equal(t, submitErr.Message, n.Message)
}
