package reference_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/reference"
	"github.com/slok/blendeval/internal/storage/storagemock"
)

func TestResolverNames(t *testing.T) {
	tests := map[string]struct {
		ids      []int64
		mock     func(m *storagemock.MockRepository)
		expNames map[int64]string
		expErr   bool
	}{
		"No IDs should not call the store.": {
			ids:      nil,
			mock:     func(m *storagemock.MockRepository) {},
			expNames: map[int64]string{},
		},
		"Duplicated IDs should be resolved once.": {
			ids: []int64{7, 3, 7},
			mock: func(m *storagemock.MockRepository) {
				m.On("GetReferenceItems", mock.Anything, []int64{3, 7}).Once().Return([]model.ReferenceItem{
					{ID: 7, Name: "PB Fines"},
				}, nil)
			},
			expNames: map[int64]string{7: "PB Fines"},
		},
		"Store errors should be returned.": {
			ids: []int64{1},
			mock: func(m *storagemock.MockRepository) {
				m.On("GetReferenceItems", mock.Anything, mock.Anything).Once().Return(nil, fmt.Errorf("whatever"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			mRepo := &storagemock.MockRepository{}
			test.mock(mRepo)

			r, err := reference.NewResolver(reference.ResolverConfig{Repository: mRepo, Logger: log.Noop})
			require.NoError(t, err)

			names, err := r.Names(context.Background(), test.ids)
			if test.expErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, test.expNames, names)
			}

			mRepo.AssertExpectations(t)
		})
	}
}

func TestResolverAttributesDefaultMissingToZero(t *testing.T) {
	mRepo := &storagemock.MockRepository{}
	mRepo.On("GetReferenceItems", mock.Anything, []int64{7}).Once().Return([]model.ReferenceItem{
		{ID: 7, Name: "PB Fines", Composition: map[string]float64{"fe": 61.5, "price": 98, "unknown": 1}},
	}, nil)

	r, err := reference.NewResolver(reference.ResolverConfig{Repository: mRepo})
	require.NoError(t, err)

	attrs, err := r.Attributes(context.Background(), []int64{7})
	require.NoError(t, err)
	require.Contains(t, attrs, int64(7))

	got, err := json.Marshal(attrs[7])
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"name":"PB Fines","fe":61.5,"sio2":0,"al2o3":0,"p":0,"s":0,"h2o":0,"loi":0,"price":98}`, string(got))
}

func TestNewResolverRequiresRepository(t *testing.T) {
	_, err := reference.NewResolver(reference.ResolverConfig{})
	assert.Error(t, err)
}
