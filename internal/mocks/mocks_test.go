package mocks_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/memris/memris/executor"
	"github.com/memris/memris/internal/mocks"
	"github.com/memris/memris/metadata"
	"github.com/memris/memris/repository"
	"github.com/memris/memris/rowid"
)

func TestMockMaterializerSatisfiesExecutorInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockMaterializer(ctrl)

	var _ executor.Materializer = m

	ref := rowid.Ref{}
	m.EXPECT().Hydrate("Order", ref).Return(int64(7), nil)

	v, err := m.Hydrate("Order", ref)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestMockSaverSatisfiesRepositoryInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mocks.NewMockSaver(ctrl)

	var _ repository.Saver = s

	s.EXPECT().Save("Order", "payload").Return(nil, errors.New("boom"))

	_, err := s.Save("Order", "payload")
	assert.Error(t, err)
}

func TestMockRegistrySatisfiesMetadataInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRegistry(ctrl)

	var _ metadata.Registry = r

	entity := &metadata.Entity{ClassID: "Order"}
	r.EXPECT().Entity("Order").Return(entity, true)

	got, ok := r.Entity("Order")
	require.True(t, ok)
	assert.Same(t, entity, got)
}
