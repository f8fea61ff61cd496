package model

// NewsType classifies a news item.
type NewsType string

// NewsTypeGeneral is the only news type the backend currently emits.
const NewsTypeGeneral NewsType = "GENERAL"

// News is one procurement news item as served by the backend.
type News struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	PublicationDate *string  `json:"publicationDate"`
	Content         *string  `json:"content"`
	NewsType        NewsType `json:"newsType"`
	CreatedAt       *string  `json:"createdAt"`
	UpdatedAt       *string  `json:"updatedAt"`
	CreatedBy       *string  `json:"createdBy"`
	UpdatedBy       *string  `json:"updatedBy"`
	Comment         *string  `json:"comment"`
}

// NewsEnvelope is the stable response shape of the top-news proxy.
type NewsEnvelope struct {
	Data  []News `json:"data"`
	Total int    `json:"total"`
}

// NewNewsEnvelope wraps items, never encoding a null data array.
func NewNewsEnvelope(items []News) NewsEnvelope {
	if items == nil {
		items = []News{}
	}
	return NewsEnvelope{Data: items, Total: len(items)}
}

// FallbackNews returns the static news list served when the backend cannot be reached.
func FallbackNews() []News {
	published := "2025-01-15T10:00:00"
	return []News{
		{
			ID:              1,
			Title:           "Изменения в законодательстве о государственных закупках",
			URL:             "https://zakupki.gov.ru/epz/news/1",
			PublicationDate: strPtr(published),
			Content:         strPtr("Обзор последних изменений в 44-ФЗ и 223-ФЗ."),
			NewsType:        NewsTypeGeneral,
		},
		{
			ID:              2,
			Title:           "Новые возможности электронных торговых площадок",
			URL:             "https://zakupki.gov.ru/epz/news/2",
			PublicationDate: strPtr(published),
			Content:         strPtr("Площадки расширяют сервисы для участников закупок."),
			NewsType:        NewsTypeGeneral,
		},
		{
			ID:              3,
			Title:           "Рекомендации для участников закупок",
			URL:             "https://zakupki.gov.ru/epz/news/3",
			PublicationDate: strPtr(published),
			Content:         strPtr("Как подготовить заявку и избежать типичных ошибок."),
			NewsType:        NewsTypeGeneral,
		},
	}
}

func strPtr(s string) *string { return &s }
