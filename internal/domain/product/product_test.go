package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpatrascu/order-desk/pkg/validate"
)

func TestProductValidate(t *testing.T) {
	valid := Product{ProductName: "Espresso Beans", Price: decimal.RequireFromString("9.99"), CurrentStock: 5}

	cases := []struct {
		name      string
		mutate    func(*Product)
		wantField string
	}{
		{"valid", func(*Product) {}, ""},
		{"empty name", func(p *Product) { p.ProductName = "" }, "productName"},
		{"blank name", func(p *Product) { p.ProductName = "  " }, "productName"},
		{"zero price", func(p *Product) { p.Price = decimal.Zero }, "price"},
		{"negative price", func(p *Product) { p.Price = decimal.RequireFromString("-1.50") }, "price"},
		{"negative stock", func(p *Product) { p.CurrentStock = -1 }, "currentStock"},
		{"zero stock is fine", func(p *Product) { p.CurrentStock = 0 }, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)

			err := p.Validate()
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *validate.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "product", verr.Entity)
			assert.Equal(t, tc.wantField, verr.Field)
		})
	}
}

func TestUnderStockError_Message(t *testing.T) {
	err := &UnderStockError{ProductID: 3, Requested: 7}
	assert.Equal(t, "not enough stock for product 3 (requested 7)", err.Error())
}
