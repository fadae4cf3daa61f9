package iotcore

import (
	"context"
	"fmt"

	iot "cloud.google.com/go/iot/apiv1"
	"cloud.google.com/go/iot/apiv1/iotpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

// Sender forwards commands through the Cloud IoT device manager.
type Sender struct {
	send  func(ctx context.Context, rq *iotpb.SendCommandToDeviceRequest) error
	close func() error
}

func New(ctx context.Context, opts ...option.ClientOption) (*Sender, error) {
	c, err := iot.NewDeviceManagerClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("device manager client initialization error: %w", err)
	}
	return &Sender{
		send: func(ctx context.Context, rq *iotpb.SendCommandToDeviceRequest) error {
			_, err := c.SendCommandToDevice(ctx, rq)
			return err
		},
		close: c.Close,
	}, nil
}

func (s *Sender) SendCommand(ctx context.Context, cmd *hydroponics.Command) error {
	data, err := cmd.Data()
	if err != nil {
		return err
	}

	err = s.send(ctx, &iotpb.SendCommandToDeviceRequest{
		Name:       cmd.Name,
		BinaryData: data,
	})
	if err != nil {
		return fmt.Errorf("send command to %s failed (%s): %w", cmd.Name, status.Code(err), err)
	}
	return nil
}

func (s *Sender) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
