package config

import (
	"log"
	"os"
	"strconv"
)

func getInt32Env(key string, fallback int32) int32 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	i, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		log.Printf("Invalid int32 for %s, using fallback %d", key, fallback)
		return fallback
	}
	return int32(i)
}
