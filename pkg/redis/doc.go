// Package redis opens go-redis clients with startup retries and exposes a
// ping healthcheck. It backs the server-side OAuth state store.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := oauth.NewRedisStateStore(client)
package redis
