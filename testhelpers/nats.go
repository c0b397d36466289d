package testhelpers

import (
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
)

// RunNATS starts an embedded JetStream enabled NATS server on a random port storing its data in storeDir.
func RunNATS(storeDir string) *server.Server {
	opts := test.DefaultTestOptions
	opts.Port = server.RANDOM_PORT
	opts.JetStream = true
	opts.StoreDir = storeDir

	return test.RunServer(&opts)
}
