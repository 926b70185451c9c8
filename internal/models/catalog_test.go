package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() []Item {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return []Item{
		{
			Title:       "Зимняя куртка",
			Description: "Теплая пуховая куртка",
			Category:    "Outerwear",
			Condition:   "Good",
			Points:      120,
			Tags:        []string{"зима", "пуховик"},
			CreatedAt:   base,
		},
		{
			Title:       "Летнее платье",
			Description: "Легкое платье в цветочек",
			Category:    "Dresses",
			Condition:   "Like New",
			Points:      60,
			Tags:        []string{"лето"},
			CreatedAt:   base.Add(24 * time.Hour),
		},
		{
			Title:       "Кроссовки",
			Description: "Беговые кроссовки",
			Category:    "Shoes",
			Condition:   "Fair",
			Points:      40,
			Tags:        []string{"спорт", "бег"},
			CreatedAt:   base.Add(48 * time.Hour),
		},
	}
}

func TestFilterItemsBySearch(t *testing.T) {
	items := catalogFixture()

	// Поиск по названию без учета регистра
	found := FilterItems(items, CatalogFilter{Search: "КУРТКА"})
	require.Len(t, found, 1)
	assert.Equal(t, "Зимняя куртка", found[0].Title)

	// Поиск по описанию
	found = FilterItems(items, CatalogFilter{Search: "беговые"})
	require.Len(t, found, 1)
	assert.Equal(t, "Кроссовки", found[0].Title)

	// Поиск по тегам
	found = FilterItems(items, CatalogFilter{Search: "спорт"})
	require.Len(t, found, 1)
	assert.Equal(t, "Кроссовки", found[0].Title)

	// Пустой результат при отсутствии совпадений
	found = FilterItems(items, CatalogFilter{Search: "шуба"})
	assert.Empty(t, found)
}

func TestFilterItemsByCategoryAndCondition(t *testing.T) {
	items := catalogFixture()

	found := FilterItems(items, CatalogFilter{Category: "Dresses"})
	require.Len(t, found, 1)
	assert.Equal(t, "Летнее платье", found[0].Title)

	found = FilterItems(items, CatalogFilter{Condition: "Fair"})
	require.Len(t, found, 1)
	assert.Equal(t, "Кроссовки", found[0].Title)

	// Комбинация фильтров сужает выборку
	found = FilterItems(items, CatalogFilter{Category: "Shoes", Condition: "Like New"})
	assert.Empty(t, found)

	// Пустой фильтр возвращает все
	found = FilterItems(items, CatalogFilter{})
	assert.Len(t, found, len(items))
}

func TestSortItems(t *testing.T) {
	items := catalogFixture()

	SortItems(items, SortNewest)
	assert.Equal(t, "Кроссовки", items[0].Title)

	SortItems(items, SortOldest)
	assert.Equal(t, "Зимняя куртка", items[0].Title)

	SortItems(items, SortPointsLow)
	assert.Equal(t, 40, items[0].Points)

	SortItems(items, SortPointsHigh)
	assert.Equal(t, 120, items[0].Points)

	SortItems(items, SortTitleAZ)
	assert.Equal(t, "Зимняя куртка", items[0].Title)

	// Неизвестный ключ сортирует как newest
	SortItems(items, "weird")
	assert.Equal(t, "Кроссовки", items[0].Title)
}

func TestPaginateItems(t *testing.T) {
	items := catalogFixture()

	page := PaginateItems(items, 2, 0)
	assert.Len(t, page, 2)

	page = PaginateItems(items, 2, 2)
	assert.Len(t, page, 1)

	// Смещение за пределами списка дает пустую страницу
	page = PaginateItems(items, 2, 10)
	assert.Empty(t, page)

	// Нулевой лимит заменяется значением по умолчанию
	page = PaginateItems(items, 0, 0)
	assert.Len(t, page, len(items))

	// Отрицательное смещение трактуется как начало списка
	page = PaginateItems(items, 1, -5)
	require.Len(t, page, 1)
	assert.Equal(t, items[0].Title, page[0].Title)
}
