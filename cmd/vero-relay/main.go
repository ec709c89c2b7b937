// SPDX-License-Identifier: ice License 1.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/ice-blockchain/vero/analytics/vero"
	messagebroker "github.com/ice-blockchain/vero/connectors/message_broker"
	"github.com/ice-blockchain/vero/log"
)

const (
	applicationYAMLKey = "vero-relay"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := vero.New(applicationYAMLKey)
	if client.Settings().AuthToken == "" {
		log.Fatal(errors.Wrap(vero.ErrMissingAuthToken, "set it in application.yaml or via VERO_RELAY_VERO_AUTH_TOKEN"))
	}
	mb := messagebroker.MustConnectAndStartConsuming(ctx, cancel, applicationYAMLKey, vero.NewProcessor(client))
	log.Info("vero-relay started", "channels", client.Channels())

	<-ctx.Done()
	log.Info("shutting down vero-relay")
	log.Error(errors.Wrap(mb.Close(), "failed to close message broker"))
}
