package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(" DESC "))
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder(""))
	assert.Equal(t, "ASC", ValidateSortOrder("desc; DROP TABLE products"))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "price", ValidateSortField("price", ProductSortFields, "sort_order"))
	assert.Equal(t, "sort_order", ValidateSortField("", ProductSortFields, "sort_order"))
	assert.Equal(t, "sort_order", ValidateSortField("warehouse", ProductSortFields, "sort_order"))
	assert.Equal(t, "sort_order",
		ValidateSortField("name; DROP TABLE products", ProductSortFields, "sort_order"))
}

func TestGormProductRepository_FindAllSortWhitelist(t *testing.T) {
	t.Run("orders by a whitelisted column", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "products" ORDER BY price DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindAll(context.Background(), shared.Filter{
			OrderBy:  "price",
			OrderDir: "desc",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to the default column for a hostile order_by", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "products" ORDER BY sort_order ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindAll(context.Background(), shared.Filter{
			OrderBy: "price; DROP TABLE products--",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
