package model

import "fmt"

const ItemsCollectionKey = "items:all"

func ItemCacheKey(id ItemID) string {
	return fmt.Sprintf("item:%d", id)
}
