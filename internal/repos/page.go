package repos

// Page selects one page of a filtered listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the inputs: page numbers start at 1 and size falls back to def.
func NewPage(number, size, def int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = def
	}
	if size > 100 {
		size = 100
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Paged is one page of rows plus what a pager needs to render.
type Paged[T any] struct {
	Items      []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

func newPaged[T any](items []T, total int, p Page) Paged[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Paged[T]{Items: items, Total: total, Page: p.Number, PageSize: p.Size, TotalPages: pages}
}

func (p Paged[T]) HasPrev() bool { return p.Page > 1 }
func (p Paged[T]) HasNext() bool { return p.Page < p.TotalPages }
func (p Paged[T]) PrevPage() int { return p.Page - 1 }
func (p Paged[T]) NextPage() int { return p.Page + 1 }
