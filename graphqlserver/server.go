package graphqlserver

import (
	"context"
	"encoding/json"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"posbridge.GO/graphql"
	gqlmodels "posbridge.GO/graphql/models"
	gqlregistry "posbridge.GO/graphql/registry"
	catalogEntity "posbridge.GO/model/entity/catalog"
	catalogRepo "posbridge.GO/model/repository/catalog"
	"posbridge.GO/search"
	catalogService "posbridge.GO/service/catalog"
)

// RootResolver is the root for graphql-go.
type RootResolver struct {
	DB *gorm.DB
}

// NewSchema parses the schema against the root resolver.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler serving GraphQL in relay format.
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}

func (r *RootResolver) repo() *catalogRepo.CatalogRepository {
	return catalogRepo.NewCatalogRepository(r.DB)
}

type CategoriesArgs struct {
	MerchantID int32 `graphql:"merchantId"`
}

func (r *RootResolver) Categories(ctx context.Context, args CategoriesArgs) ([]*gqlmodels.Category, error) {
	repo := r.repo()
	cat, err := repo.ForMerchant(uint(args.MerchantID))
	if err != nil {
		return nil, err
	}
	rows, err := repo.Categories(cat.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Category, 0, len(rows))
	for _, c := range rows {
		out = append(out, &gqlmodels.Category{
			ID:         int32(c.ID),
			ExternalID: c.ExternalID,
			Name:       c.Name,
			Ordinal:    int32(c.Ordinal),
		})
	}
	return out, nil
}

type ItemsArgs struct {
	MerchantID int32 `graphql:"merchantId"`
	CategoryID int32 `graphql:"categoryId"`
	LocationID *int32
}

func (r *RootResolver) Items(ctx context.Context, args ItemsArgs) ([]*gqlmodels.Item, error) {
	repo := r.repo()
	cat, err := repo.ForMerchant(uint(args.MerchantID))
	if err != nil {
		return nil, err
	}
	rows, err := repo.ItemsForCategory(cat.ID, uint(args.CategoryID))
	if err != nil {
		return nil, err
	}
	return r.mapItems(repo, rows, locID(args.LocationID))
}

type ItemArgs struct {
	MerchantID int32 `graphql:"merchantId"`
	ExternalID string
	LocationID *int32
}

func (r *RootResolver) Item(ctx context.Context, args ItemArgs) (*gqlmodels.Item, error) {
	repo := r.repo()
	cat, err := repo.ForMerchant(uint(args.MerchantID))
	if err != nil {
		return nil, err
	}
	it, err := repo.ItemByExternalID(cat.ID, args.ExternalID)
	if err != nil {
		return nil, nil
	}
	items, err := r.mapItems(repo, []catalogEntity.Item{*it}, locID(args.LocationID))
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

type SearchItemsArgs struct {
	MerchantID  int32 `graphql:"merchantId"`
	Query       string
	PageSize    int32
	CurrentPage int32
}

func (r *RootResolver) SearchItems(ctx context.Context, args SearchItemsArgs) (*gqlmodels.ItemSearchResult, error) {
	repo := r.repo()
	cat, err := repo.ForMerchant(uint(args.MerchantID))
	if err != nil {
		return nil, err
	}
	ids, total, err := search.GetService().Search(ctx, cat.ID, args.Query, int(args.PageSize), int(args.CurrentPage))
	if err != nil {
		return nil, err
	}
	rows, err := repo.ItemsByIDs(ids)
	if err != nil {
		return nil, err
	}
	items, err := r.mapItems(repo, rows, 0)
	if err != nil {
		return nil, err
	}
	return &gqlmodels.ItemSearchResult{TotalCount: int32(total), Items: items}, nil
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *RootResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	out, err := gqlregistry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func locID(p *int32) uint {
	if p == nil {
		return 0
	}
	return uint(*p)
}

func (r *RootResolver) mapItems(repo *catalogRepo.CatalogRepository, rows []catalogEntity.Item, locationID uint) ([]*gqlmodels.Item, error) {
	out := make([]*gqlmodels.Item, 0, len(rows))
	for i := range rows {
		it := rows[i]
		model := &gqlmodels.Item{
			ID:          int32(it.ID),
			ExternalID:  it.ExternalID,
			Name:        it.Name,
			Description: it.Description,
			Ordinal:     int32(it.Ordinal),
		}

		for j := range it.Variations {
			v := it.Variations[j]
			amount, err := catalogService.VariationAmount(r.DB, &v, locationID)
			if err != nil {
				return nil, err
			}
			model.Variations = append(model.Variations, &gqlmodels.Variation{
				ID:              int32(v.ID),
				ExternalID:      v.ExternalID,
				Name:            v.Name,
				Ordinal:         int32(v.Ordinal),
				BaseAmount:      int32(v.BaseAmount),
				EffectiveAmount: int32(amount),
				Currency:        v.Currency,
			})
		}

		lists, err := repo.ModifierListsForItem(it.ID)
		if err != nil {
			return nil, err
		}
		for _, lv := range lists {
			listModel := &gqlmodels.ItemModifierList{
				ID:            int32(lv.List.ID),
				ExternalID:    lv.List.ExternalID,
				Name:          lv.List.Name,
				SelectionType: lv.List.SelectionType,
				MinSelected:   int32(lv.MinSelected),
				MaxSelected:   int32(lv.MaxSelected),
			}
			for k := range lv.Modifiers {
				mod := lv.Modifiers[k]
				amount, err := catalogService.ModifierAmount(r.DB, &mod, locationID)
				if err != nil {
					return nil, err
				}
				listModel.Modifiers = append(listModel.Modifiers, &gqlmodels.Modifier{
					ID:              int32(mod.ID),
					ExternalID:      mod.ExternalID,
					Name:            mod.Name,
					Ordinal:         int32(mod.Ordinal),
					BaseAmount:      int32(mod.BaseAmount),
					EffectiveAmount: int32(amount),
					Currency:        mod.Currency,
				})
			}
			model.ModifierLists = append(model.ModifierLists, listModel)
		}

		images, err := repo.ImagesFor(catalogEntity.OwnerItem, it.ID)
		if err != nil {
			return nil, err
		}
		for _, img := range images {
			model.Images = append(model.Images, &gqlmodels.Image{
				ID:         int32(img.ID),
				ExternalID: img.ExternalID,
				URL:        img.URL,
				Caption:    img.Caption,
			})
		}

		out = append(out, model)
	}
	return out, nil
}
