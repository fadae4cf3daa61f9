package iotcore

import (
	"context"
	"testing"

	"cloud.google.com/go/iot/apiv1/iotpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

func TestSendCommandRequest(t *testing.T) {
	var got *iotpb.SendCommandToDeviceRequest
	s := &Sender{send: func(_ context.Context, rq *iotpb.SendCommandToDeviceRequest) error {
		got = rq
		return nil
	}}

	cmd, err := hydroponics.EncodeCommand("projects/p/locations/r/registries/reg/devices/device-42", map[string]string{"action": "pump_on"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := s.SendCommand(context.Background(), cmd); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got == nil {
		t.Fatal("expected request")
	}
	if got.Name != cmd.Name {
		t.Errorf("expected name %q, got %q", cmd.Name, got.Name)
	}
	if exp := `{"action":"pump_on"}`; string(got.BinaryData) != exp {
		t.Errorf("expected binary data %s, got %s", exp, got.BinaryData)
	}
}

func TestSendCommandKeepsStatus(t *testing.T) {
	s := &Sender{send: func(context.Context, *iotpb.SendCommandToDeviceRequest) error {
		return status.Error(codes.FailedPrecondition, "device is not connected")
	}}
	cmd, _ := hydroponics.EncodeCommand("projects/p/locations/r/registries/reg/devices/device-42", "ping")

	err := s.SendCommand(context.Background(), cmd)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := status.Code(err); code != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %s", code)
	}
}
