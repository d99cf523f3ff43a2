package dbmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"name", "name"},
		{"productName", "product_name"},
		{"currentStock", "current_stock"},
		{"clientId", "client_id"},
		{"orderDate", "order_date"},
		{"totalPrice", "total_price"},
		{"id", "id"},
		{"a", "a"},
		{"A", "a"},
		{"aB", "a_b"},
		{"alreadysnake", "alreadysnake"},
		{"HTTPServer", "httpserver"},
		{"myHTTPServer", "my_httpserver"},
		{"field2Name", "field2name"},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ToSnake(tc.in))
		})
	}
}
