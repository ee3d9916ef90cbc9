package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"retail-chatbot/internal/model"
)

// MemoryCache is the default in-process response cache backed by an LRU.
type MemoryCache struct {
	lru *lru.Cache[string, *model.ChatbotResponse]
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = 1024
	}
	l, err := lru.New[string, *model.ChatbotResponse](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: l}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (*model.ChatbotResponse, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Put(_ context.Context, key string, resp *model.ChatbotResponse) {
	c.lru.Add(key, resp)
}

// Purge drops every entry.
func (c *MemoryCache) Purge() {
	c.lru.Purge()
}
