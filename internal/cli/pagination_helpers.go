package cli

import "fmt"

type pageMeta struct {
	Total      int  `json:"total" yaml:"total"`
	Count      int  `json:"count" yaml:"count"`
	Offset     int  `json:"offset" yaml:"offset"`
	Limit      *int `json:"limit,omitempty" yaml:"limit,omitempty"`
	TotalPages *int `json:"total_pages,omitempty" yaml:"total_pages,omitempty"`
	NextOffset *int `json:"next_offset,omitempty" yaml:"next_offset,omitempty"`
}

func resolvePageOffset(limit int, limitSet bool, offset int, offsetSet bool, page int, pageSet bool) (int, error) {
	if pageSet && offsetSet {
		return 0, fmt.Errorf("use either --offset or --page, not both")
	}
	if pageSet {
		if !limitSet || limit <= 0 {
			return 0, fmt.Errorf("--page requires --limit > 0")
		}
		if page < 1 {
			return 0, fmt.Errorf("--page must be >= 1")
		}
		return (page - 1) * limit, nil
	}
	if offset < 0 {
		return 0, nil
	}
	return offset, nil
}

func paginateRows[T any](rows []T, limit *int, offset int) ([]T, pageMeta) {
	total := len(rows)
	if offset < 0 {
		offset = 0
	}
	start := offset
	if start > total {
		start = total
	}
	end := total
	if limit != nil {
		if *limit < 0 {
			end = start
		} else if *limit < end-start {
			end = start + *limit
		}
	}
	meta := pageMeta{
		Total:  total,
		Count:  end - start,
		Offset: offset,
		Limit:  limit,
	}
	if limit != nil && *limit > 0 {
		pages := total / *limit
		if total%*limit != 0 {
			pages++
		}
		meta.TotalPages = &pages
	}
	if end < total {
		next := end
		meta.NextOffset = &next
	}
	return rows[start:end], meta
}
