package pagination

import (
	"strconv"

	"eloan-must/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Params are 0-based page parameters
type Params struct {
	Page   int `json:"page"`
	Size   int `json:"size"`
	Offset int `json:"-"`
}

// DefaultSize is the default number of items per page
const DefaultSize = 10

// MaxSize is the maximum number of items per page
const MaxSize = 100

// New normalizes page and size into Params
func New(page, size int) Params {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Params{Page: page, Size: size, Offset: page * size}
}

// GetParams extracts ?page=&size= from the request
func GetParams(c *fiber.Ctx) Params {
	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", strconv.Itoa(DefaultSize)))
	return New(page, size)
}

// TotalPages returns the number of pages for total items
func TotalPages(total int64, size int) int {
	if size < 1 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size > 0 {
		pages++
	}
	return pages
}

// NewPage wraps one page of content already fetched at params
func NewPage[T any](content []T, params Params, total int64) domain.Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := TotalPages(total, params.Size)
	return domain.Page[T]{
		Content:       content,
		Page:          params.Page,
		Size:          params.Size,
		TotalElements: total,
		TotalPages:    pages,
		First:         params.Page == 0,
		Last:          params.Page >= pages-1,
	}
}

// Slice cuts one page out of a fully fetched list
func Slice[T any](items []T, params Params) domain.Page[T] {
	total := int64(len(items))
	start := params.Offset
	if start > len(items) {
		start = len(items)
	}
	end := start + params.Size
	if end > len(items) {
		end = len(items)
	}
	return NewPage(items[start:end], params, total)
}
