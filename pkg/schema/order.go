package schema

const OrderPlacedSchemaTextV1 = `{
	"type": "record",
	"namespace": "orders",
	"name": "order_placed",
	"fields" : [
		{"name": "order_id", "type": "string"},
		{"name": "customer_id", "type": "string"},
		{"name": "email", "type": "string"},
		{"name": "city", "type": "string"},
		{"name": "state", "type": "string"},
		{"name": "total", "type": "string"},
		{"name": "placed_at", "type": "string"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_item",
				"fields": [
					{"name": "product_code", "type": "string"},
					{"name": "product_name", "type": "string"},
					{"name": "unit_price", "type": "string"},
					{"name": "quantity", "type": "int"}
				]
			}
		}}
	]
}`

// Monetary amounts travel as decimal strings to keep scale exact.
type (
	OrderPlacedV1 struct {
		OrderID    string        `avro:"order_id"`
		CustomerID string        `avro:"customer_id"`
		Email      string        `avro:"email"`
		City       string        `avro:"city"`
		State      string        `avro:"state"`
		Total      string        `avro:"total"`
		PlacedAt   string        `avro:"placed_at"`
		Items      []OrderItemV1 `avro:"items"`
	}

	OrderItemV1 struct {
		ProductCode string `avro:"product_code"`
		ProductName string `avro:"product_name"`
		UnitPrice   string `avro:"unit_price"`
		Quantity    int    `avro:"quantity"`
	}
)
