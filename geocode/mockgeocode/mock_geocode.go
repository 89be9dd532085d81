package mockgeocode

import (
	"context"

	"github.com/ETTyler/football/model"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (c *Client) Search(ctx context.Context, query string) ([]model.Location, error) {
	args := c.Called(ctx, query)

	var res []model.Location
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Location)
	}
	return res, args.Error(1)
}

func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	args := c.Called(ctx, lat, lon)
	return args.String(0), args.Error(1)
}
