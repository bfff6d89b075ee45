package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"home-valuation/internal/model"
)

const districtPricesTable = "district_base_prices"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository reads district reference prices
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func selectDistrictPrices() sq.SelectBuilder {
	return psql.Select("code", "name", "base_price").
		From(districtPricesTable).
		Where(sq.Gt{"base_price": 0})
}

// listDistrictPricesQuery builds the query for every district ordered by code
func listDistrictPricesQuery() (string, []interface{}, error) {
	return selectDistrictPrices().OrderBy("code").ToSql()
}

// getDistrictPriceQuery builds the query for one district by code
func getDistrictPriceQuery(code string) (string, []interface{}, error) {
	return selectDistrictPrices().
		Where(sq.Eq{"code": strings.ToLower(strings.TrimSpace(code))}).
		Limit(1).
		ToSql()
}

// ListDistrictPrices returns all districts with a positive base price
func (r *PostgresRepository) ListDistrictPrices(ctx context.Context) ([]model.DistrictPrice, error) {
	query, args, err := listDistrictPricesQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var prices []model.DistrictPrice
	if err := r.db.SelectContext(ctx, &prices, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list district prices: %w", err)
	}
	return prices, nil
}

// GetDistrictPrice returns the price of one district, or nil when unknown
func (r *PostgresRepository) GetDistrictPrice(ctx context.Context, code string) (*model.DistrictPrice, error) {
	query, args, err := getDistrictPriceQuery(code)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var price model.DistrictPrice
	if err := r.db.GetContext(ctx, &price, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get district price: %w", err)
	}
	return &price, nil
}
