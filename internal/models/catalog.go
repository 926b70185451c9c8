package models

import (
	"sort"
	"strings"
)

// Ключи сортировки каталога
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortPointsLow  = "pointsLow"
	SortPointsHigh = "pointsHigh"
	SortTitleAZ    = "titleAZ"
)

// CatalogFilter описывает параметры фильтрации каталога
type CatalogFilter struct {
	Search    string
	Category  string
	Condition string
}

// FilterItems возвращает вещи, подходящие под фильтр.
// Поиск — по подстроке в названии, описании и тегах без учета регистра.
func FilterItems(items []Item, f CatalogFilter) []Item {
	filtered := make([]Item, 0, len(items))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	for _, item := range items {
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.Condition != "" && item.Condition != f.Condition {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		filtered = append(filtered, item)
	}

	return filtered
}

// matchesSearch проверяет вхождение поисковой строки в поля вещи
func matchesSearch(item Item, search string) bool {
	if strings.Contains(strings.ToLower(item.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Description), search) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

// SortItems сортирует вещи по указанному ключу.
// Неизвестный ключ трактуется как newest.
func SortItems(items []Item, sortBy string) {
	switch sortBy {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	case SortPointsLow:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Points < items[j].Points
		})
	case SortPointsHigh:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Points > items[j].Points
		})
	case SortTitleAZ:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
}

// PaginateItems возвращает страницу списка вещей
func PaginateItems(items []Item, limit, offset int) []Item {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []Item{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
