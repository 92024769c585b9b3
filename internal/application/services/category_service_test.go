package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

func categoryForest() []entities.Category {
	return []entities.Category{
		{ID: "1", Name: "Gear", URLPath: "gear", Children: []string{"2", "3"}},
		{ID: "2", Name: "Bags", URLPath: "gear/bags", ParentID: "1", Children: []string{"4"}},
		{ID: "3", Name: "Watches", URLPath: "gear/watches", ParentID: "1", Children: []string{"99"}},
		{ID: "4", Name: "Backpacks", URLPath: "gear/bags/backpacks", ParentID: "2", Children: []string{"1"}},
		{ID: "5", Name: "Men", URLPath: "men"},
	}
}

func loadedCategoryService(t *testing.T) *services.CategoryService {
	t.Helper()
	svc := services.NewCategoryService(new(MockCategoryProvider), entities.CategoryQuery{})
	svc.Replace(categoryForest())
	return svc
}

func TestCategoryService_BuildCategoryListPreorder(t *testing.T) {
	svc := loadedCategoryService(t)

	list := svc.BuildCategoryList("1")

	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"1", "2", "4", "3"}, ids)
	assert.Nil(t, svc.BuildCategoryList("missing"))
}

func TestCategoryService_BuildCategoryListSkipsUnknownChildren(t *testing.T) {
	svc := loadedCategoryService(t)

	list := svc.BuildCategoryList("3")

	require.Len(t, list, 1)
	assert.Equal(t, "3", list[0].ID)
	assert.Equal(t, []string{"gear/watches"}, svc.ResolveURLPaths("gear/watches"))
}

func TestCategoryService_ResolveURLPaths(t *testing.T) {
	svc := loadedCategoryService(t)

	assert.Equal(t, []string{"gear/bags", "gear/bags/backpacks"}, svc.ResolveURLPaths("/gear/bags/"))
	assert.Equal(t, []string{"gear/bags", "gear/bags/backpacks"}, svc.ResolveURLPaths("gear.bags"))
	assert.Equal(t, []string{"men"}, svc.ResolveURLPaths("men"))
	assert.Equal(t, []string{"sale/outlet"}, svc.ResolveURLPaths("sale/outlet"))
	assert.Equal(t, []string{"sale/outlet"}, svc.ResolveURLPaths("sale.outlet"))
	assert.Equal(t, []string{"sale/outlet"}, svc.ResolveURLPaths("/sale/outlet/"))
	assert.Nil(t, svc.ResolveURLPaths("/"))
	assert.Nil(t, svc.ResolveURLPaths("  "))
}

func TestCategoryService_LoadOnce(t *testing.T) {
	provider := new(MockCategoryProvider)
	query := entities.CategoryQuery{IDs: []string{"1"}, Roles: []string{"active"}, Depth: 4}
	provider.On("FetchCategories", mock.Anything, query).Return(categoryForest(), nil).Once()

	svc := services.NewCategoryService(provider, query)
	require.NoError(t, svc.EnsureLoaded(context.Background()))
	require.NoError(t, svc.EnsureLoaded(context.Background()))

	assert.Len(t, svc.Categories(), 5)
	provider.AssertExpectations(t)
}

func TestCategoryService_LoadFailureIsExternal(t *testing.T) {
	provider := new(MockCategoryProvider)
	provider.On("FetchCategories", mock.Anything, mock.Anything).Return(nil, errors.New("unreachable"))

	svc := services.NewCategoryService(provider, entities.CategoryQuery{})
	err := svc.Load(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestCategoryService_Resolve(t *testing.T) {
	svc := loadedCategoryService(t)

	category, descendants, err := svc.Resolve(context.Background(), "gear/watches")
	require.NoError(t, err)
	assert.Equal(t, "Watches", category.Name)
	assert.Len(t, descendants, 1)

	_, _, err = svc.Resolve(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
