package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/erazemk/prenos/internal/composer/mocks"
	"github.com/erazemk/prenos/internal/model"
)

func TestFilter(t *testing.T) {
	items := []model.InventoryItem{
		{ProductID: "1", Name: "Whole Wheat Flour", Barcode: "3830001", AvailableQuantity: 4},
		{ProductID: "2", Name: "Sugar", Barcode: "", AvailableQuantity: 2},
		{ProductID: "3", Name: "Flourless cake", Barcode: "999", AvailableQuantity: 1},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"   ", []string{"1", "2", "3"}},
		{"flour", []string{"1", "3"}},
		{"FLOUR", []string{"1", "3"}},
		{"3830", []string{"1"}},
		{"99", []string{"3"}},
		{"salt", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := Filter(items, tt.term)
			ids := []string{}
			for _, it := range got {
				ids = append(ids, it.ProductID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestLoadSnapshotDropsZeroStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().ListInventory(gomock.Any(), int64(1)).Return([]model.InventoryItem{
		{ProductID: "A", Name: "A", AvailableQuantity: 5},
		{ProductID: "B", Name: "B", AvailableQuantity: 0},
	}, nil)

	snapshot, err := loadSnapshot(context.Background(), backend, 1)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "A", snapshot[0].ProductID)
	assert.Empty(t, Filter(snapshot, "B"))
}

func TestLoadSnapshotError(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().ListInventory(gomock.Any(), int64(1)).Return(nil, errors.New("boom"))

	snapshot, err := loadSnapshot(context.Background(), backend, 1)
	assert.Error(t, err)
	assert.Empty(t, snapshot)
}
