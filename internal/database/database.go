package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	maxRetry       = 3
	retryDelay     = 500 * time.Millisecond
)

// ConnectDB opens a client to uri, retrying a few times while the server is
// unreachable, and returns the named database. The caller owns the client and
// must call Disconnect on shutdown.
func ConnectDB(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().ApplyURI(uri)

	var (
		client *mongo.Client
		err    error
	)
	for attempt := 1; attempt <= maxRetry; attempt++ {
		client, err = connect(ctx, opts)
		if err == nil {
			break
		}
		if !shouldRetry(ctx, err) || attempt == maxRetry {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err,
		}).Warn("MongoDB not reachable, retrying")
		time.Sleep(retryDelay)
	}

	logrus.WithField("database", dbName).Info("Connected to MongoDB")
	return client, client.Database(dbName), nil
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// shouldRetry skips retries once the context is done or the server rejected
// our credentials.
func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if cmdErr, ok := err.(mongo.CommandError); ok {
		// 13 Unauthorized, 18 AuthenticationFailed
		return cmdErr.Code != 13 && cmdErr.Code != 18
	}
	return true
}
