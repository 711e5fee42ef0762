// Command seed-db applies the schema and loads a demo catalog, customers and
// credit accounts for local development.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nordmark-trading/settlement/internal/repository"
)

type seedProduct struct {
	id        string
	name      string
	basePrice string
	taxClass  string
	moq       int
	tiers     []seedTier
}

type seedTier struct {
	minQuantity int
	unitPrice   string
	label       string
}

type seedCustomer struct {
	id        string
	class     string
	country   string
	vatNumber string
	credit    *seedCredit
}

type seedCredit struct {
	limit     string
	used      string
	termsDays int
	status    string
}

var products = []seedProduct{
	{
		id: "oak-plank-120", name: "Oak plank 120cm", basePrice: "100.00",
		taxClass: "reduced", moq: 1,
		tiers: []seedTier{
			{minQuantity: 25, unitPrice: "88.00", label: "pallet"},
			{minQuantity: 200, unitPrice: "79.00", label: "container"},
		},
	},
	{
		id: "birch-panel-60", name: "Birch panel 60cm", basePrice: "249.50",
		taxClass: "standard", moq: 2,
	},
	{
		id: "pine-beam-240", name: "Pine beam 240cm", basePrice: "320.00",
		taxClass: "standard", moq: 4,
		tiers: []seedTier{
			{minQuantity: 40, unitPrice: "275.00", label: "bulk"},
		},
	},
}

var customers = []seedCustomer{
	{
		id: uuid.NewString(), class: "retail", country: "SE",
	},
	{
		id: uuid.NewString(), class: "wholesale-approved", country: "DE",
		vatNumber: "DE123456789",
		credit:    &seedCredit{limit: "10000.00", used: "0", termsDays: 30, status: "approved"},
	},
	{
		id: uuid.NewString(), class: "wholesale-pending", country: "NO",
		vatNumber: "NO923609016MVA",
		credit:    &seedCredit{limit: "5000.00", used: "0", termsDays: 30, status: "pending"},
	},
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedCustomers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	const upsertProduct = `INSERT INTO products (id, name, base_price, tax_class, moq)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, base_price = $3, tax_class = $4, moq = $5`
	const upsertTier = `INSERT INTO discount_tiers (product_id, min_quantity, unit_price, label)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, min_quantity) DO UPDATE
		SET unit_price = $3, label = $4`

	for _, p := range products {
		price, err := decimal.NewFromString(p.basePrice)
		if err != nil {
			return errors.Wrapf(err, "parse price for %s", p.id)
		}
		if _, err := pool.Exec(ctx, upsertProduct, p.id, p.name, price, p.taxClass, p.moq); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.id)
		}

		for _, t := range p.tiers {
			unit, err := decimal.NewFromString(t.unitPrice)
			if err != nil {
				return errors.Wrapf(err, "parse tier price for %s", p.id)
			}
			if _, err := pool.Exec(ctx, upsertTier, p.id, t.minQuantity, unit, t.label); err != nil {
				return errors.Wrapf(err, "upsert tier for %s", p.id)
			}
		}

		slog.Info("seeded product", slog.String("id", p.id), slog.Int("tiers", len(p.tiers)))
	}
	return nil
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool) error {
	const insertCustomer = `INSERT INTO customers (id, class, country, vat_number)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (id) DO NOTHING`
	const insertCredit = `INSERT INTO credit_accounts (customer_id, credit_limit, used, terms_days, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id) DO NOTHING`

	for _, c := range customers {
		if _, err := pool.Exec(ctx, insertCustomer, c.id, c.class, c.country, c.vatNumber); err != nil {
			return errors.Wrapf(err, "insert customer %s", c.id)
		}

		if c.credit != nil {
			limit, err := decimal.NewFromString(c.credit.limit)
			if err != nil {
				return errors.Wrapf(err, "parse credit limit for %s", c.id)
			}
			used, err := decimal.NewFromString(c.credit.used)
			if err != nil {
				return errors.Wrapf(err, "parse used credit for %s", c.id)
			}
			if _, err := pool.Exec(ctx, insertCredit,
				c.id, limit, used, c.credit.termsDays, c.credit.status,
			); err != nil {
				return errors.Wrapf(err, "insert credit account for %s", c.id)
			}
		}

		slog.Info("seeded customer",
			slog.String("id", c.id),
			slog.String("class", c.class),
			slog.String("country", c.country),
		)
	}
	return nil
}
