package commands

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/seafresh/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// catch lists the species offered per category in demo data
var catch = map[catalog.Category][]string{
	catalog.CategoryFish:        {"Pomfret", "Seer Fish", "Mackerel", "Sardine", "Red Snapper", "Tuna", "Salmon", "Barramundi"},
	catalog.CategoryPrawns:      {"Tiger Prawns", "White Prawns", "Brown Prawns", "Scampi"},
	catalog.CategoryCrabs:       {"Mud Crab", "Blue Swimmer Crab"},
	catalog.CategoryShellfish:   {"Green Mussels", "Clams", "Oysters", "Squid", "Cuttlefish"},
	catalog.CategoryDried:       {"Dried Bombay Duck", "Dried Anchovies", "Dried Prawns"},
	catalog.CategoryReadyToCook: {"Fish Fillet Tikka", "Prawn Masala Pack", "Crab Curry Cut"},
}

var (
	cuts  = []string{"Whole", "Steaks", "Curry Cut", "Cleaned", "Fillet"}
	units = []string{"kg", "500 g", "250 g", "pack"}
)

// productWriter is the part of the product repository seeding needs
type productWriter interface {
	Save(ctx context.Context, product *catalog.Product) error
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
	}

	var count int
	var seed uint64
	products := &cobra.Command{
		Use:   "products",
		Short: "Insert random products into the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			db, repos, err := e.openRepos(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			batch, err := fakeProducts(gofakeit.New(seed), count)
			if err != nil {
				return err
			}
			saved := saveProducts(cmd.Context(), repos.Products, batch, func(p *catalog.Product, err error) {
				warning(cmd, "skipped %q: %v", p.Name, err)
			})
			success(cmd, "inserted %d of %d products", saved, len(batch))
			return nil
		},
	}
	products.Flags().IntVar(&count, "count", 20, "Number of products")
	products.Flags().Uint64Var(&seed, "seed", 0, "Random seed; 0 picks one")

	cmd.AddCommand(products)
	return cmd
}

// fakeProducts builds n products with unique names
func fakeProducts(f *gofakeit.Faker, n int) ([]*catalog.Product, error) {
	categories := make([]catalog.Category, 0, len(catch))
	for _, c := range catalog.AllCategories() {
		if _, ok := catch[c]; ok {
			categories = append(categories, c)
		}
	}

	seen := make(map[string]bool, n)
	out := make([]*catalog.Product, 0, n)
	for attempt := 0; len(out) < n && attempt < n*20; attempt++ {
		category := categories[pick(f, len(categories))]
		species := catch[category][pick(f, len(catch[category]))]
		name := fmt.Sprintf("%s %s", species, cuts[pick(f, len(cuts))])
		if seen[name] {
			name = fmt.Sprintf("%s (%s)", name, f.City())
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		price := decimal.NewFromFloat(f.Price(120, 1800)).Round(0)
		p, err := catalog.NewProduct(name, category, price, units[pick(f, len(units))])
		if err != nil {
			return nil, err
		}

		freshness := catalog.FreshnessFresh
		switch {
		case category == catalog.CategoryDried:
			freshness = catalog.FreshnessDried
		case f.Bool():
			freshness = catalog.FreshnessFrozen
		}
		if err := p.Update(name, f.Sentence(12), category, f.City(), freshness); err != nil {
			return nil, err
		}
		if pick(f, 4) == 0 {
			discount := price.Mul(decimal.NewFromFloat(0.85)).Round(0)
			if err := p.SetPricing(price, &discount, p.Unit); err != nil {
				return nil, err
			}
		}
		if err := p.SetStock(f.Number(0, 60)); err != nil {
			return nil, err
		}
		p.SetFeatured(pick(f, 5) == 0)
		out = append(out, p)
	}
	return out, nil
}

// saveProducts stores each product and returns how many were saved
func saveProducts(ctx context.Context, repo productWriter, products []*catalog.Product, onError func(*catalog.Product, error)) int {
	saved := 0
	for _, p := range products {
		if err := repo.Save(ctx, p); err != nil {
			onError(p, err)
			continue
		}
		saved++
	}
	return saved
}

func pick(f *gofakeit.Faker, n int) int {
	return f.Number(0, n-1)
}
