package post

// PerPage is how many posts a listing page shows
const PerPage = 5

// Page is one page of a newest-first post listing
type Page struct {
	Items   []Post
	Number  int
	PerPage int
	Total   int
}

// Pages returns the total number of pages, at least 1
func (p *Page) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p *Page) HasPrev() bool { return p.Number > 1 }

func (p *Page) HasNext() bool { return p.Number < p.Pages() }

func (p *Page) PrevNum() int { return p.Number - 1 }

func (p *Page) NextNum() int { return p.Number + 1 }

// Exists reports whether the page number falls inside the listing. Page 1
// always exists, even when there are no posts.
func (p *Page) Exists() bool {
	return p.Number == 1 || p.Number <= p.Pages()
}

// IterPages lists the page numbers to link to: leftEdge pages at the start,
// the window around the current page, rightEdge pages at the end. A 0 marks a
// gap where pages were skipped.
func (p *Page) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	var out []int
	last := 0
	pages := p.Pages()
	for num := 1; num <= pages; num++ {
		inWindow := num > p.Number-leftCurrent-1 && num < p.Number+rightCurrent
		if num <= leftEdge || inWindow || num > pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}

// offset converts a 1-based page number to a row offset
func offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
