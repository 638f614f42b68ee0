package changefeed

import (
	"context"
	"docbook-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Watch opens a change stream on collection and turns every matching event
// into a signal. Signals are coalesced, a pending one is never duplicated.
// The channel closes when ctx is done or the stream fails.
func Watch(ctx context.Context, collection *mongo.Collection, pipeline mongo.Pipeline, log *zap.Logger) (<-chan struct{}, error) {
	streamOptions := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := collection.Watch(ctx, pipeline, streamOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBWatch(err)
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			select {
			case signals <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Warn("change stream stopped",
				zap.String("collection", collection.Name()),
				zap.Error(err),
			)
		}
	}()

	return signals, nil
}
