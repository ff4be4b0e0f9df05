package service

import (
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/repository"
)

func pageMeta[T any](page repository.Page[T]) dto.PaginationMeta {
	return dto.PaginationMeta{
		Page:        page.Page,
		PageSize:    page.PageSize,
		TotalItems:  page.TotalCount,
		TotalPages:  page.TotalPages,
		HasNext:     page.HasNext,
		HasPrevious: page.HasPrevious,
	}
}
