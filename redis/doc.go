// Package redis provides a Redis client wrapper built on go-redis and a
// token storage backend on top of it.
//
// Importing the package registers the "redis" storage provider:
//
//	import _ "github.com/kbukum/authkit/redis"
//
//	st, err := storage.New(storage.Config{Provider: "redis", KeyPrefix: "app"},
//	    &redis.Config{Addr: "localhost:6379"}, log)
//
// Store keys are namespaced as "<prefix>:<key>" so several applications can
// share one database; Clear only removes keys under its own prefix.
package redis
