package dto

// PageRequest is the common pagination query shape. Pages are 1-based.
type PageRequest struct {
	Page int    `form:"page"`
	Size int    `form:"size"`
	Sort string `form:"sort"` // "field,asc" or "field,desc"
}

func (p *PageRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = 10
	}
	if p.Size > 50 {
		p.Size = 50
	}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// PageCount returns the number of pages needed to hold total items.
func PageCount(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return int(pages)
}
