package storage

import (
	"github.com/KruASe76/look/internal/core/storage/types"
)

type CatalogStore = types.CatalogStore
type CollectionStore = types.CollectionStore
