package resolvers

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/graphql/loaders"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// Resolver resolves the storefront GraphQL schema against one configured
// store.
type Resolver struct {
	mounter    *storefront.Mounter
	store      *entities.StoreDetails
	categories *services.CategoryService
	cart       *services.CartService
	analytics  *services.SearchAnalyticsService
}

// NewResolver creates a new resolver with dependencies. cart and analytics
// may be nil; their fields then report an error.
func NewResolver(
	mounter *storefront.Mounter,
	store *entities.StoreDetails,
	categories *services.CategoryService,
	cart *services.CartService,
	analytics *services.SearchAnalyticsService,
) *Resolver {
	return &Resolver{
		mounter:    mounter,
		store:      store,
		categories: categories,
		cart:       cart,
		analytics:  analytics,
	}
}

// Listing resolves Query.listing
func (r *Resolver) Listing(p graphql.ResolveParams) (interface{}, error) {
	session, err := r.mounter.MountCategory(p.Context, r.store, stringArg(p, "category"), stringArg(p, "categoryId"), nil)
	if err != nil {
		return nil, publicError(p, err)
	}

	actions, err := listingActions(p.Args)
	if err != nil {
		return nil, err
	}

	var view *services.ListingView
	if len(actions) == 0 {
		view, err = session.Search(p.Context)
	} else {
		view, err = session.Dispatch(p.Context, actions...)
	}
	if err != nil {
		return nil, publicError(p, err)
	}
	return listingMap(view), nil
}

// Categories resolves Query.categories
func (r *Resolver) Categories(p graphql.ResolveParams) (interface{}, error) {
	if err := r.categories.EnsureLoaded(p.Context); err != nil {
		return nil, publicError(p, err)
	}
	categories := r.categories.Categories()
	out := make([]map[string]interface{}, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryMap(c))
	}
	return out, nil
}

// Category resolves Query.category; an unknown path is null
func (r *Resolver) Category(p graphql.ResolveParams) (interface{}, error) {
	c, descendants, err := r.categories.Resolve(p.Context, stringArg(p, "path"))
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, publicError(p, err)
	}

	m := categoryMap(c)
	paths := make([]string, 0, len(descendants))
	for _, d := range descendants {
		paths = append(paths, d.URLPath)
	}
	m["urlPaths"] = paths
	return m, nil
}

// CategoryChildren resolves Category.children through the request's
// category loader.
func (r *Resolver) CategoryChildren(p graphql.ResolveParams) (interface{}, error) {
	source, _ := p.Source.(map[string]interface{})
	ids, _ := source["childIds"].([]string)
	if len(ids) == 0 {
		return []map[string]interface{}{}, nil
	}

	var children []entities.Category
	if l := loaders.For(p.Context); l != nil {
		var errs []error
		children, errs = l.CategoryLoader.LoadMany(p.Context, ids)()
		if err := errors.Join(errs...); err != nil {
			return nil, publicError(p, err)
		}
	} else {
		for _, id := range ids {
			if c, ok := r.categories.FindByID(id); ok {
				children = append(children, c)
			}
		}
	}

	out := make([]map[string]interface{}, 0, len(children))
	for _, c := range children {
		out = append(out, categoryMap(c))
	}
	return out, nil
}

// SortOptions resolves Query.sortOptions
func (r *Resolver) SortOptions(p graphql.ResolveParams) (interface{}, error) {
	session, err := r.mounter.MountCategory(p.Context, r.store, stringArg(p, "category"), "", nil)
	if err != nil {
		return nil, publicError(p, err)
	}
	return session.SortOptions(), nil
}

// AddToCart resolves Mutation.addToCart
func (r *Resolver) AddToCart(p graphql.ResolveParams) (interface{}, error) {
	if r.cart == nil {
		return nil, errors.New("cart is not configured")
	}
	outcome, err := r.cart.AddToCart(p.Context, services.AddToCartRequest{
		SKU:         stringArg(p, "sku"),
		Name:        stringArg(p, "name"),
		ProductType: stringArg(p, "productType"),
		URLKey:      stringArg(p, "urlKey"),
		CartID:      stringArg(p, "cartId"),
		Quantity:    intArg(p, "quantity"),
	})
	if err != nil {
		return nil, publicError(p, err)
	}
	return outcomeMap(outcome), nil
}

// ZeroResultQueries resolves Query.zeroResultQueries
func (r *Resolver) ZeroResultQueries(p graphql.ResolveParams) (interface{}, error) {
	if r.analytics == nil {
		return nil, errors.New("search analytics are not configured")
	}
	queries, err := r.analytics.GetZeroResultQueries(p.Context, intArg(p, "limit"))
	if err != nil {
		return nil, publicError(p, err)
	}
	return queries, nil
}

// publicError keeps validation and not-found messages and hides the rest
func publicError(p graphql.ResolveParams, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation, apperrors.ErrorTypeNotFound:
			return errors.New(appErr.Message)
		}
	}
	if errors.Is(err, services.ErrStaleResult) {
		return err
	}

	log.Ctx(p.Context).Error().Err(err).Str("field", p.Info.FieldName).Msg("graphql resolver failed")
	if apperrors.IsType(err, apperrors.ErrorTypeExternal) {
		return errors.New("commerce backend unavailable")
	}
	return fmt.Errorf("internal error resolving %s", p.Info.FieldName)
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func intArg(p graphql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}
