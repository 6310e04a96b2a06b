package app

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"aichat/internal/api"
)

const (
	chatListCacheKey     = "chat_list_cache"
	chatListCacheTimeKey = "chat_list_cache_time"

	chatListCacheMaxAge = 5 * time.Minute
)

// cachedChatList returns the cached history list if it is fresh enough.
func (a *Application) cachedChatList(ctx context.Context) []api.ChatListItem {
	rawTime, err := a.kv.Get(ctx, chatListCacheTimeKey)
	if err != nil {
		return nil
	}
	millis, err := strconv.ParseInt(rawTime, 10, 64)
	if err != nil {
		return nil
	}
	if time.Since(time.UnixMilli(millis)) >= chatListCacheMaxAge {
		return nil
	}
	raw, err := a.kv.Get(ctx, chatListCacheKey)
	if err != nil {
		return nil
	}
	var items []api.ChatListItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

func (a *Application) cacheChatList(ctx context.Context, items []api.ChatListItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := a.kv.Set(ctx, chatListCacheKey, string(raw)); err != nil {
		a.log.Warn("failed to cache chat list", map[string]interface{}{"error": err.Error()})
		return
	}
	_ = a.kv.Set(ctx, chatListCacheTimeKey, strconv.FormatInt(a.nowMillis(), 10))
}

func (a *Application) nowMillis() int64 {
	return time.Now().UnixMilli()
}

// ChatList returns the user's chat history, served from the device cache when
// it is younger than five minutes. force bypasses the cache (pull-to-refresh).
func (a *Application) ChatList(ctx context.Context, force bool) ([]api.ChatListItem, error) {
	if !force {
		if cached := a.cachedChatList(ctx); cached != nil {
			return cached, nil
		}
	}
	items, err := a.client.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []api.ChatListItem{}
	}
	a.cacheChatList(ctx, items)
	return items, nil
}
