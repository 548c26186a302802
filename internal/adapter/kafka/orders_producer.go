package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
	"github.com/sampaiobrenner/bookstore/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.OrderEventsProducer = (*OrdersProducer)(nil)

type OrdersProducer struct {
	cl      ProducerClient
	encoder Encoder
}

func NewOrdersProducer(
	opts ...ProducerOpt,
) (OrdersProducer, error) {
	const op = "NewOrdersProducer"

	if len(opts) != 2 {
		panic(fmt.Errorf("%s: %w", op, ErrTooFewOpts)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return OrdersProducer{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return OrdersProducer{options.cl, options.encoder}, nil
}

func (p OrdersProducer) Close() {
	const op = "OrdersProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p OrdersProducer) ProduceOrderPlaced(
	ctx context.Context, order domain.Order,
) error {
	const op = "OrdersProducer.ProduceOrderPlaced"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r, err := p.createRecord(order)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.produce(ctx, r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p OrdersProducer) createRecord(
	order domain.Order,
) (*kgo.Record, error) {
	const op = "OrdersProducer.createRecord"

	s := p.toSchema(order)
	v, err := p.encoder.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &kgo.Record{Key: []byte(s.OrderID), Value: v}, nil
}

func (p OrdersProducer) produce(
	ctx context.Context, r *kgo.Record,
) error {
	const op = "OrdersProducer.produce"
	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p OrdersProducer) toSchema(
	order domain.Order,
) (s schema.OrderPlacedV1) {
	s.OrderID = order.OrderID
	s.CustomerID = order.CustomerID
	s.Email = order.Registration.Email
	s.City = order.Registration.City
	s.State = order.Registration.State
	s.Total = order.Total.String()
	s.PlacedAt = order.CreatedAt.Format(time.RFC3339)

	s.Items = make([]schema.OrderItemV1, len(order.Items))
	for i := range order.Items {
		s.Items[i].ProductCode = order.Items[i].ProductCode
		s.Items[i].ProductName = order.Items[i].ProductName
		s.Items[i].UnitPrice = order.Items[i].UnitPrice.String()
		s.Items[i].Quantity = order.Items[i].Quantity
	}
	return s
}
