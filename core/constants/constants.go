package constants

import "time"

// Database pool defaults.
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Redis key prefixes.
const (
	RedisKeyTokenBlacklist = "auth:blacklist:"
	RedisKeyLoginAttempts  = "auth:login-attempts:"
	RedisKeyUserChannel    = "user:" // pub/sub channel per user, payload is JSON
)

// Login throttling.
const (
	MaxLoginAttempts = 5
	BlockDuration    = 15 * time.Minute
)

// Echo context keys.
const (
	ContextTokenData = "token_data"
)

// Notification types.
const (
	NotificationTypeSwapRequest  = "swap-request"
	NotificationTypeSwapResponse = "swap-response"
)

// Slot title length cap, matches the storage column.
const SlotTitleMaxLength = 100
